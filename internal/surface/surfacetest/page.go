// Package surfacetest provides an in-memory surface backed by an HTML
// document. Hooks mutate the document on clicks, key presses and scripts so
// tests can model a UI that re-renders after each action.
package surfacetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"lineup-runner/internal/surface"
)

// Mutation edits the document. It runs with the page lock held and must not
// call back into the page.
type Mutation func(doc *goquery.Document, target *goquery.Selection)

type clickHook struct {
	css string
	fn  Mutation
}

type evalHook struct {
	contains string
	fn       func(doc *goquery.Document, arg any) any
}

type Page struct {
	mu  sync.Mutex
	doc *goquery.Document

	frames     map[string]*Page
	clickHooks []clickHook
	keyHooks   map[string][]Mutation
	evalHooks  []evalHook
	gotoHook   func(doc *goquery.Document, url string)
	events     []string
	closed     bool
	onClose    func()

	ScreenshotErr error
}

func New(markup string) *Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		panic(fmt.Sprintf("surfacetest: parse markup: %v", err))
	}
	return &Page{
		doc:      doc,
		frames:   map[string]*Page{},
		keyHooks: map[string][]Mutation{},
	}
}

// AddFrame binds an <iframe data-frame="name"> element to sub.
func (p *Page) AddFrame(name string, sub *Page) *Page {
	p.mu.Lock()
	p.frames[name] = sub
	p.mu.Unlock()
	return p
}

// OnClick runs fn whenever an element matching css is clicked or activated.
func (p *Page) OnClick(css string, fn Mutation) *Page {
	p.mu.Lock()
	p.clickHooks = append(p.clickHooks, clickHook{css: css, fn: fn})
	p.mu.Unlock()
	return p
}

// OnKey runs fn when key is pressed on the page or on any element.
func (p *Page) OnKey(key string, fn Mutation) *Page {
	p.mu.Lock()
	p.keyHooks[key] = append(p.keyHooks[key], fn)
	p.mu.Unlock()
	return p
}

// OnEvaluate answers scripts containing the given fragment.
func (p *Page) OnEvaluate(contains string, fn func(doc *goquery.Document, arg any) any) *Page {
	p.mu.Lock()
	p.evalHooks = append(p.evalHooks, evalHook{contains: contains, fn: fn})
	p.mu.Unlock()
	return p
}

func (p *Page) OnGoto(fn func(doc *goquery.Document, url string)) *Page {
	p.mu.Lock()
	p.gotoHook = fn
	p.mu.Unlock()
	return p
}

// Later applies fn after d, simulating asynchronous rendering.
func (p *Page) Later(d time.Duration, fn func(doc *goquery.Document)) {
	go func() {
		time.Sleep(d)
		p.mu.Lock()
		defer p.mu.Unlock()
		fn(p.doc)
	}()
}

// Mutate applies fn immediately under the page lock.
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// Events lists recorded actions such as "click:button.join" or "press:Escape".
func (p *Page) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *Page) CountEvents(prefix string) int {
	n := 0
	for _, e := range p.Events() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, _ := p.doc.Html()
	return out
}

func (p *Page) record(format string, args ...any) {
	p.events = append(p.events, fmt.Sprintf(format, args...))
}

func (p *Page) Find(ctx context.Context, q surface.Query) ([]surface.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collect(p.doc.Find(q.CSS), q), nil
}

func (p *Page) collect(sel *goquery.Selection, q surface.Query) []surface.Element {
	out := []surface.Element{}
	for _, n := range sel.Nodes {
		if q.Text != nil && !q.Text.MatchString(innerText(n)) {
			continue
		}
		out = append(out, &Element{page: p, node: n})
	}
	return out
}

func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("goto:%s", url)
	if p.gotoHook != nil {
		p.gotoHook(p.doc, url)
	}
	return nil
}

func (p *Page) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("eval")
	for _, h := range p.evalHooks {
		if strings.Contains(script, h.contains) {
			return h.fn(p.doc, arg), nil
		}
	}
	return nil, nil
}

func (p *Page) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("press:%s", key)
	for _, fn := range p.keyHooks[key] {
		fn(p.doc, nil)
	}
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return []byte("\x89PNG\r\n\x1a\nfake"), nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("page already closed")
	}
	p.closed = true
	onClose := p.onClose
	p.mu.Unlock()
	if onClose != nil {
		onClose()
	}
	return nil
}

func (p *Page) runClickHooks(n *html.Node) {
	target := p.doc.FindNodes(n)
	for _, h := range p.clickHooks {
		if target.Is(h.css) {
			h.fn(p.doc, target)
		}
	}
}

var _ surface.Session = (*Page)(nil)
