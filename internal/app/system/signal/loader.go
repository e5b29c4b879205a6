package signal

import (
	"context"
	"sync"
)

// Loader runs at most one logical load at a time. Starting a new load
// cancels the context of the previous one and bumps an internal
// generation counter; a commit from a superseded load is rejected.
//
// This is the mechanism behind the engine's last-trigger-wins rule: when
// the active workspace flips from A to B before A's load resolves, A's
// commit arrives with a stale generation and is discarded, so B's state
// can never be overwritten by A's late response.
type Loader struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Start cancels any in-flight load and runs fn on a new goroutine with a
// fresh context. The commit callback hands fn's result back: it applies
// the given mutation and returns true only while this load is still the
// current one. fn may call commit several times (snapshot then live
// updates); every call is generation-checked.
func (l *Loader) Start(fn func(ctx context.Context, commit func(apply func()) bool)) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	commit := func(apply func()) bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen != gen {
			return false
		}
		apply()
		return true
	}

	go func() {
		defer cancel()
		fn(ctx, commit)
	}()
}

// Cancel aborts any in-flight load without starting a new one. Used by
// the cascade resets: when the upstream scope empties, the cell cancels
// its load and swaps in its initial state directly.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
