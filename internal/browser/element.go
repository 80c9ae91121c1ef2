package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"lineup-runner/internal/surface"
)

const (
	activateScript  = `el => { el.scrollIntoView({block: 'center', inline: 'center'}); el.click(); }`
	attributeScript = `(el, name) => el.getAttribute(name)`
)

type element struct {
	loc playwright.Locator
}

func (e *element) Find(ctx context.Context, q surface.Query) ([]surface.Element, error) {
	return find(ctx, func(css string) playwright.Locator { return e.loc.Locator(css) }, q)
}

func (e *element) Visible(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	ok, err := e.loc.IsVisible()
	return err == nil && ok
}

func (e *element) Text(ctx context.Context) (string, error) {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return "", err
	}
	return e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: timeout})
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return "", false, err
	}
	v, err := e.loc.Evaluate(attributeScript, name, playwright.LocatorEvaluateOptions{Timeout: timeout})
	if err != nil {
		return "", false, err
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (e *element) Click(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Click(playwright.LocatorClickOptions{Timeout: timeout})
}

func (e *element) Hover(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Hover(playwright.LocatorHoverOptions{Timeout: timeout})
}

func (e *element) Fill(ctx context.Context, value string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Fill(value, playwright.LocatorFillOptions{Timeout: timeout})
}

func (e *element) Check(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Check(playwright.LocatorCheckOptions{Timeout: timeout})
}

func (e *element) Focus(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Focus(playwright.LocatorFocusOptions{Timeout: timeout})
}

func (e *element) Press(ctx context.Context, key string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.Press(key, playwright.LocatorPressOptions{Timeout: timeout})
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	return e.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout})
}

func (e *element) Activate(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	_, err = e.loc.Evaluate(activateScript, nil, playwright.LocatorEvaluateOptions{Timeout: timeout})
	return err
}

func (e *element) Dispatch(ctx context.Context, events ...string) error {
	for _, ev := range events {
		timeout, err := timeoutMillis(ctx)
		if err != nil {
			return err
		}
		if err := e.loc.DispatchEvent(ev, nil, playwright.LocatorDispatchEventOptions{Timeout: timeout}); err != nil {
			return fmt.Errorf("dispatch %s: %w", ev, err)
		}
	}
	return nil
}

func (e *element) Frame(ctx context.Context) (surface.Surface, error) {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return nil, err
	}
	handle, err := e.loc.ElementHandle(playwright.LocatorElementHandleOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	frame, err := handle.ContentFrame()
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, errors.New("element is not a frame")
	}
	return &frameSurface{frame: frame}, nil
}
