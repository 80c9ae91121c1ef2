package surfacetest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"lineup-runner/internal/surface"
)

var (
	ErrDetached    = errors.New("element is not attached to the document")
	ErrNotVisible  = errors.New("element is not visible")
	ErrIntercepted = errors.New("click intercepted by another element")
)

type Element struct {
	page *Page
	node *html.Node
}

func (e *Element) selection() *goquery.Selection {
	return e.page.doc.FindNodes(e.node)
}

func (e *Element) attached() bool {
	return e.selection().Length() > 0
}

func (e *Element) Find(ctx context.Context, q surface.Query) ([]surface.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return nil, ErrDetached
	}
	return e.page.collect(e.selection().Find(q.CSS), q), nil
}

func (e *Element) Visible(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.attached() && rendered(e.node)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return "", ErrDetached
	}
	return innerText(e.node), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return "", false, ErrDetached
	}
	v, ok := attr(e.node, name)
	return v, ok, nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.actionable(); err != nil {
		return err
	}
	if intercepted(e.node) {
		return ErrIntercepted
	}
	e.page.record("click:%s", describe(e.node))
	e.activate()
	return nil
}

func (e *Element) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return ErrDetached
	}
	reveal(e.node)
	e.page.record("activate:%s", describe(e.node))
	e.activate()
	return nil
}

func (e *Element) activate() {
	if e.node.Data == "input" {
		if t, _ := attr(e.node, "type"); t == "radio" || t == "checkbox" {
			setAttr(e.node, "checked", "")
		}
	}
	e.page.runClickHooks(e.node)
}

func (e *Element) Hover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.actionable(); err != nil {
		return err
	}
	e.page.record("hover:%s", describe(e.node))
	return nil
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.actionable(); err != nil {
		return err
	}
	setAttr(e.node, "value", value)
	e.page.record("fill:%s", describe(e.node))
	return nil
}

func (e *Element) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.actionable(); err != nil {
		return err
	}
	setAttr(e.node, "checked", "")
	e.page.record("check:%s", describe(e.node))
	return nil
}

func (e *Element) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return ErrDetached
	}
	e.page.record("focus:%s", describe(e.node))
	return nil
}

func (e *Element) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return ErrDetached
	}
	e.page.record("press:%s", key)
	for _, fn := range e.page.keyHooks[key] {
		fn(e.page.doc, e.selection())
	}
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return ErrDetached
	}
	reveal(e.node)
	e.page.record("scroll:%s", describe(e.node))
	return nil
}

func (e *Element) Dispatch(ctx context.Context, events ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.attached() {
		return ErrDetached
	}
	for _, ev := range events {
		e.page.record("dispatch:%s:%s", ev, describe(e.node))
	}
	return nil
}

func (e *Element) Frame(ctx context.Context) (surface.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.node.Data != "iframe" {
		return nil, fmt.Errorf("element %s is not a frame", describe(e.node))
	}
	name, _ := attr(e.node, "data-frame")
	sub, ok := e.page.frames[name]
	if !ok {
		return nil, fmt.Errorf("frame %q has no content", name)
	}
	return sub, nil
}

func (e *Element) actionable() error {
	if !e.attached() {
		return ErrDetached
	}
	if !rendered(e.node) {
		return ErrNotVisible
	}
	return nil
}

var _ surface.Element = (*Element)(nil)

// rendered walks up the tree looking for anything that hides the node.
func rendered(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := attr(cur, "hidden"); ok {
			return false
		}
		if _, ok := attr(cur, "data-offscreen"); ok {
			return false
		}
		if style, ok := attr(cur, "style"); ok {
			compact := strings.ReplaceAll(strings.ToLower(style), " ", "")
			if strings.Contains(compact, "display:none") {
				return false
			}
		}
		if class, ok := attr(cur, "class"); ok {
			for _, c := range strings.Fields(class) {
				if c == "d-none" {
					return false
				}
			}
		}
	}
	return true
}

func intercepted(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if _, ok := attr(cur, "data-intercept"); ok && cur.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func reveal(n *html.Node) {
	for cur := n; cur != nil; cur = cur.Parent {
		removeAttr(cur, "data-offscreen")
	}
}

var blockElements = map[string]bool{
	"div": true, "p": true, "li": true, "ul": true, "ol": true, "tr": true,
	"table": true, "section": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "form": true, "label": true,
}

// innerText approximates the browser's rendering: block boundaries and <br>
// become line breaks and whitespace inside a line collapses.
func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			return
		case html.ElementNode:
			if cur.Data == "br" {
				b.WriteString("\n")
				return
			}
			if cur.Data == "script" || cur.Data == "style" {
				return
			}
		}
		block := cur.Type == html.ElementNode && blockElements[cur.Data]
		if block {
			b.WriteString("\n")
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteString("\n")
		}
	}
	walk(n)

	lines := []string{}
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func describe(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	if id, ok := attr(n, "id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	if class, ok := attr(n, "class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString("." + c)
		}
	}
	return b.String()
}
