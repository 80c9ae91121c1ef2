// Package surface describes the capabilities the workflow needs from an
// interactive UI: element lookup, element state, actions, and nested frames.
package surface

import (
	"context"
	"regexp"
	"strings"
)

// Query locates elements by CSS selector, optionally filtered by a pattern
// over the element's rendered text.
type Query struct {
	CSS  string
	Text *regexp.Regexp
}

// Candidates are equivalent queries tried in priority order.
type Candidates []Query

func CSS(selector string) Query {
	return Query{CSS: selector}
}

// WithText matches text case-insensitively.
func WithText(selector, pattern string) Query {
	return Query{CSS: selector, Text: regexp.MustCompile("(?i)" + pattern)}
}

func (q Query) String() string {
	if q.Text == nil {
		return q.CSS
	}
	return q.CSS + " /" + q.Text.String() + "/"
}

func (q Query) IsZero() bool {
	return strings.TrimSpace(q.CSS) == ""
}

// First returns the first candidate, or the zero Query.
func (c Candidates) First() Query {
	if len(c) == 0 {
		return Query{}
	}
	return c[0]
}

type Finder interface {
	Find(ctx context.Context, q Query) ([]Element, error)
}

// Surface is a navigable document: the top-level page or an embedded frame.
type Surface interface {
	Finder
	Goto(ctx context.Context, url string) error
	Evaluate(ctx context.Context, script string, arg any) (any, error)
	Press(ctx context.Context, key string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

type Element interface {
	Finder
	Visible(ctx context.Context) bool
	Text(ctx context.Context) (string, error)
	// Attribute reports ok=false when the attribute is absent.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)

	Click(ctx context.Context) error
	Hover(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Check(ctx context.Context) error
	Focus(ctx context.Context) error
	Press(ctx context.Context, key string) error
	ScrollIntoView(ctx context.Context) error
	// Activate scrolls the element to the viewport centre and invokes its
	// click handler directly, bypassing pointer hit-testing.
	Activate(ctx context.Context) error
	// Dispatch fires synthetic DOM events (input, change, blur...) on the element.
	Dispatch(ctx context.Context, events ...string) error

	Frame(ctx context.Context) (Surface, error)
}

// Session is one isolated browsing context owned by a single credential.
type Session interface {
	Surface
	Close() error
}

type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}
