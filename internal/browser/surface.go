package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"lineup-runner/internal/surface"
)

func find(ctx context.Context, root func(css string) playwright.Locator, q surface.Query) ([]surface.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := root(q.CSS)
	if q.Text != nil {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: q.Text})
	}
	matches, err := loc.All()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q, err)
	}
	out := make([]surface.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, &element{loc: m})
	}
	return out, nil
}

type pageSurface struct {
	page playwright.Page
}

func (p *pageSurface) Find(ctx context.Context, q surface.Query) ([]surface.Element, error) {
	return find(ctx, func(css string) playwright.Locator { return p.page.Locator(css) }, q)
}

func (p *pageSurface) Goto(ctx context.Context, url string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   timeout,
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	// network idle is a hint only; long-polling pages never reach it
	_ = p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(3000),
	})
	return nil
}

func (p *pageSurface) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Evaluate(script, arg)
}

func (p *pageSurface) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press(key)
}

func (p *pageSurface) Screenshot(ctx context.Context) ([]byte, error) {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return nil, err
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Timeout:  timeout,
	})
}

// frameSurface is an embedded document. Keyboard and screenshots go through
// the owning page.
type frameSurface struct {
	frame playwright.Frame
}

func (f *frameSurface) Find(ctx context.Context, q surface.Query) ([]surface.Element, error) {
	return find(ctx, func(css string) playwright.Locator { return f.frame.Locator(css) }, q)
}

func (f *frameSurface) Goto(ctx context.Context, url string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	if _, err := f.frame.Goto(url, playwright.FrameGotoOptions{
		Timeout:   timeout,
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("frame goto %s: %w", url, err)
	}
	return nil
}

func (f *frameSurface) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.frame.Evaluate(script, arg)
}

func (f *frameSurface) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.frame.Page().Keyboard().Press(key)
}

func (f *frameSurface) Screenshot(ctx context.Context) ([]byte, error) {
	ps := pageSurface{page: f.frame.Page()}
	return ps.Screenshot(ctx)
}
