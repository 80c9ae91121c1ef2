// Package browser drives a real Chromium instance through playwright-go and
// exposes it as surface sessions.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"lineup-runner/internal/surface"
)

const (
	viewportWidth  = 1300
	viewportHeight = 850

	// used when the caller's context carries no deadline
	defaultActionTimeout = 30 * time.Second
)

type Options struct {
	Headless bool
}

// Launcher owns one browser process; every session gets its own context so
// cookies and storage never leak between credentials.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser

	closeOnce sync.Once
	closeErr  error
}

func Launch(opts Options) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &Launcher{pw: pw, browser: browser}, nil
}

func (l *Launcher) NewSession(ctx context.Context) (surface.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	return &session{pageSurface: pageSurface{page: page}, bctx: bctx}, nil
}

func (l *Launcher) Close() error {
	l.closeOnce.Do(func() {
		var errs []error
		if err := l.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := l.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		l.closeErr = errors.Join(errs...)
	})
	return l.closeErr
}

type session struct {
	pageSurface
	bctx playwright.BrowserContext
}

func (s *session) Close() error {
	return s.bctx.Close()
}

// timeoutMillis converts what is left of ctx into a playwright timeout.
func timeoutMillis(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := defaultActionTimeout
	if deadline, ok := ctx.Deadline(); ok {
		d = time.Until(deadline)
		if d <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	return playwright.Float(float64(d.Milliseconds())), nil
}
