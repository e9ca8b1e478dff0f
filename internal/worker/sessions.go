package worker

import (
	"context"
	"fmt"
)

// SessionPool hands out a fixed set of long-lived sessions. Acquire blocks
// until a session is free, so the pool size bounds how many sessions are in
// use at once.
type SessionPool[S any] struct {
	all  []S
	idle chan S
}

// NewSessionPool opens size sessions with open. If any open fails, the
// sessions already opened are closed with closeFn.
func NewSessionPool[S any](size int, open func(slot int) (S, error), closeFn func(S)) (*SessionPool[S], error) {
	if size <= 0 {
		size = 1
	}

	p := &SessionPool[S]{
		all:  make([]S, 0, size),
		idle: make(chan S, size),
	}
	for i := 0; i < size; i++ {
		s, err := open(i)
		if err != nil {
			p.Close(closeFn)
			return nil, fmt.Errorf("open session %d: %w", i, err)
		}
		p.all = append(p.all, s)
		p.idle <- s
	}
	return p, nil
}

// Acquire checks out a session, waiting until one is free
func (p *SessionPool[S]) Acquire(ctx context.Context) (S, error) {
	select {
	case s := <-p.idle:
		return s, nil
	case <-ctx.Done():
		var zero S
		return zero, ctx.Err()
	}
}

// Release returns a session to the pool
func (p *SessionPool[S]) Release(s S) {
	p.idle <- s
}

// With runs fn with a checked-out session and returns it on every path
func (p *SessionPool[S]) With(ctx context.Context, fn func(S) error) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(s)
	return fn(s)
}

// Size returns the number of sessions
func (p *SessionPool[S]) Size() int {
	return cap(p.idle)
}

// Close releases every session with closeFn. The pool must not be used
// afterwards.
func (p *SessionPool[S]) Close(closeFn func(S)) {
	if closeFn == nil {
		return
	}
	for _, s := range p.all {
		closeFn(s)
	}
}
