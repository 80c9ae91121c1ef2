// Package phase implements the four ordered steps of a session:
// Authenticate, Navigate, Configure and Confirm.
package phase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lineup-runner/internal/interact"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/wait"
)

// Landing is where the monetary-tier click led inside Configure.
type Landing string

const (
	LandingNew      Landing = "new"
	LandingExisting Landing = "existing"
	LandingUnknown  Landing = "unknown"
)

// Executor carries one session's view of the selector table, timing bounds
// and log sink. It is cheap to build and must not be shared across sessions.
type Executor struct {
	BaseURL   string
	Selectors *Selectors
	Timings   Timings
	Logf      func(format string, args ...any)
}

func (x *Executor) logf(format string, args ...any) {
	if x.Logf != nil {
		x.Logf(format, args...)
	}
}

func (x *Executor) opts(timeout time.Duration, label string) wait.Options {
	return wait.Options{Timeout: timeout, Interval: x.Timings.Poll, Label: label}
}

// visible polls until any candidate has a visible element.
func (x *Executor) visible(ctx context.Context, f surface.Finder, c surface.Candidates, timeout time.Duration, label string) (surface.Element, error) {
	return wait.Poll(ctx, x.opts(timeout, label), func(ctx context.Context) (surface.Element, bool, error) {
		el, ok := interact.ResolveFirstVisible(ctx, f, c)
		return el, ok, nil
	})
}

func (x *Executor) isVisible(ctx context.Context, f surface.Finder, c surface.Candidates) bool {
	_, ok := interact.ResolveFirstVisible(ctx, f, c)
	return ok
}

func (x *Executor) sleep(ctx context.Context, d time.Duration) error {
	return wait.Sleep(ctx, d)
}

// clickWithin bounds a pointer click by timeout.
func clickWithin(ctx context.Context, el surface.Element, timeout time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return el.Click(cctx)
}

// diagnose logs the visible texts of q so a failed lookup can be debugged
// from the session log.
func (x *Executor) diagnose(ctx context.Context, f surface.Finder, label string, c surface.Candidates) {
	texts := []string{}
	for _, q := range c {
		texts = append(texts, interact.VisibleTexts(ctx, f, q)...)
	}
	x.logf("%s: visible controls [%s]", label, strings.Join(texts, " | "))
}

func (x *Executor) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(x.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func formatAmount(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
