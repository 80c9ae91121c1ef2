package surfacetest

import (
	"context"
	"sync"

	"lineup-runner/internal/surface"
)

// Launcher hands out a fresh Page per session and tracks how many are open.
type Launcher struct {
	NewPage func(n int) *Page
	Err     error

	mu        sync.Mutex
	opened    int
	active    int
	maxActive int
	pages     []*Page
}

func (l *Launcher) NewSession(ctx context.Context) (surface.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	if l.Err != nil {
		l.mu.Unlock()
		return nil, l.Err
	}
	l.opened++
	n := l.opened
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
	l.mu.Unlock()

	p := l.NewPage(n)
	p.mu.Lock()
	p.onClose = func() {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	}
	p.mu.Unlock()

	l.mu.Lock()
	l.pages = append(l.pages, p)
	l.mu.Unlock()
	return p, nil
}

func (l *Launcher) Opened() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened
}

func (l *Launcher) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *Launcher) MaxActive() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxActive
}

func (l *Launcher) Pages() []*Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Page(nil), l.pages...)
}

var _ surface.Launcher = (*Launcher)(nil)
