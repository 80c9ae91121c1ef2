// Package interact holds the element-level actions shared by every phase.
package interact

import (
	"context"
	"regexp"
	"time"

	"lineup-runner/internal/surface"
)

const clickTimeout = 4 * time.Second

var disabledClass = regexp.MustCompile(`(?i)\bdisabled\b`)

// IsEnabled reports whether el is visible and carries neither a disabled
// attribute nor a disabled class.
func IsEnabled(ctx context.Context, el surface.Element) bool {
	if el == nil || !el.Visible(ctx) {
		return false
	}
	if _, ok, err := el.Attribute(ctx, "disabled"); err != nil || ok {
		return false
	}
	class, _, err := el.Attribute(ctx, "class")
	if err != nil {
		return false
	}
	return !disabledClass.MatchString(class)
}

// First returns the first element matching q whether or not it is visible.
func First(ctx context.Context, f surface.Finder, q surface.Query) (surface.Element, bool) {
	if f == nil || q.IsZero() {
		return nil, false
	}
	els, err := f.Find(ctx, q)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

// FirstVisible returns the first visible element matching q.
func FirstVisible(ctx context.Context, f surface.Finder, q surface.Query) (surface.Element, bool) {
	return firstWhere(ctx, f, q, func(el surface.Element) bool { return el.Visible(ctx) })
}

// LastVisible is used for stacked overlays where the newest one is on top.
func LastVisible(ctx context.Context, f surface.Finder, q surface.Query) (surface.Element, bool) {
	if f == nil || q.IsZero() {
		return nil, false
	}
	els, err := f.Find(ctx, q)
	if err != nil {
		return nil, false
	}
	for i := len(els) - 1; i >= 0; i-- {
		if els[i].Visible(ctx) {
			return els[i], true
		}
	}
	return nil, false
}

func AllVisible(ctx context.Context, f surface.Finder, q surface.Query) []surface.Element {
	if f == nil || q.IsZero() {
		return nil
	}
	els, err := f.Find(ctx, q)
	if err != nil {
		return nil
	}
	out := make([]surface.Element, 0, len(els))
	for _, el := range els {
		if el.Visible(ctx) {
			out = append(out, el)
		}
	}
	return out
}

// ResolveFirstMatch walks the candidates in order and returns the first
// element that is visible and enabled. It never fails; callers decide what a
// miss means.
func ResolveFirstMatch(ctx context.Context, f surface.Finder, candidates surface.Candidates) (surface.Element, bool) {
	for _, q := range candidates {
		if el, ok := firstWhere(ctx, f, q, func(el surface.Element) bool { return IsEnabled(ctx, el) }); ok {
			return el, true
		}
	}
	return nil, false
}

// ResolveFirstVisible is ResolveFirstMatch without the enabled check.
func ResolveFirstVisible(ctx context.Context, f surface.Finder, candidates surface.Candidates) (surface.Element, bool) {
	for _, q := range candidates {
		if el, ok := FirstVisible(ctx, f, q); ok {
			return el, true
		}
	}
	return nil, false
}

func firstWhere(ctx context.Context, f surface.Finder, q surface.Query, keep func(surface.Element) bool) (surface.Element, bool) {
	if f == nil || q.IsZero() {
		return nil, false
	}
	els, err := f.Find(ctx, q)
	if err != nil {
		return nil, false
	}
	for _, el := range els {
		if keep(el) {
			return el, true
		}
	}
	return nil, false
}

// RobustClick tries a pointer click and falls back to programmatic
// activation when the click is intercepted or times out.
func RobustClick(ctx context.Context, el surface.Element) bool {
	if el == nil {
		return false
	}
	_ = el.ScrollIntoView(ctx)
	clickCtx, cancel := context.WithTimeout(ctx, clickTimeout)
	err := el.Click(clickCtx)
	cancel()
	if err == nil {
		return true
	}
	return el.Activate(ctx) == nil
}

// VisibleTexts collects the text of every visible match, for diagnostics.
func VisibleTexts(ctx context.Context, f surface.Finder, q surface.Query) []string {
	out := []string{}
	for _, el := range AllVisible(ctx, f, q) {
		if text, err := el.Text(ctx); err == nil {
			out = append(out, NormalizeText(text))
		}
	}
	return out
}
