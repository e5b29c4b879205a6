package signal

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSource_GetReturnsSeed(t *testing.T) {
	s := New(42)
	if got := s.Get(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestSource_SetNotifiesInSubscriptionOrder(t *testing.T) {
	s := New(0)

	var order []string
	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })

	s.Set(1)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected notification order: %v", order)
	}
}

func TestSource_SubscribeDoesNotReplayCurrent(t *testing.T) {
	s := New(7)

	called := false
	s.Subscribe(func(int) { called = true })

	if called {
		t.Error("subscriber must not be called with the seed value")
	}
}

func TestSource_Unsubscribe(t *testing.T) {
	s := New(0)

	calls := 0
	unsub := s.Subscribe(func(int) { calls++ })

	s.Set(1)
	unsub()
	s.Set(2)

	if calls != 1 {
		t.Errorf("expected 1 call after unsubscribe, got %d", calls)
	}
}

func TestSource_UpdateAppliesAndNotifies(t *testing.T) {
	s := New(10)

	var seen int
	s.Subscribe(func(v int) { seen = v })

	s.Update(func(v int) int { return v + 5 })

	if got := s.Get(); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
	if seen != 15 {
		t.Errorf("subscriber saw %d, want 15", seen)
	}
}

func TestSource_SubscriberMayReadOtherSources(t *testing.T) {
	a := New(0)
	b := New(0)

	// A subscriber that reads and writes another source must not
	// deadlock against the publishing source's lock.
	a.Subscribe(func(v int) { b.Set(b.Get() + v) })

	a.Set(3)
	a.Set(4)

	if got := b.Get(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestSource_ConcurrentSetAndGet(t *testing.T) {
	s := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set(n)
				_ = s.Get()
			}
		}(i)
	}
	wg.Wait()
}

func TestLoader_CommitAppliesWhileCurrent(t *testing.T) {
	var l Loader

	done := make(chan bool, 1)
	l.Start(func(ctx context.Context, commit func(func()) bool) {
		applied := false
		ok := commit(func() { applied = true })
		done <- ok && applied
	})

	select {
	case ok := <-done:
		if !ok {
			t.Error("expected commit from the current load to apply")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestLoader_SupersededCommitRejected(t *testing.T) {
	var l Loader

	release := make(chan struct{})
	firstResult := make(chan bool, 1)
	firstStarted := make(chan struct{})

	l.Start(func(ctx context.Context, commit func(func()) bool) {
		close(firstStarted)
		<-release
		firstResult <- commit(func() {})
	})
	<-firstStarted

	secondResult := make(chan bool, 1)
	l.Start(func(ctx context.Context, commit func(func()) bool) {
		secondResult <- commit(func() {})
	})

	close(release)

	if ok := <-firstResult; ok {
		t.Error("superseded load's commit must be rejected")
	}
	if ok := <-secondResult; !ok {
		t.Error("current load's commit must apply")
	}
}

func TestLoader_StartCancelsPreviousContext(t *testing.T) {
	var l Loader

	canceled := make(chan struct{})
	started := make(chan struct{})
	l.Start(func(ctx context.Context, commit func(func()) bool) {
		close(started)
		<-ctx.Done()
		close(canceled)
	})
	<-started

	l.Start(func(ctx context.Context, commit func(func()) bool) {})

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("previous load's context was not canceled")
	}
}

func TestLoader_CancelRejectsLaterCommit(t *testing.T) {
	var l Loader

	release := make(chan struct{})
	result := make(chan bool, 1)
	started := make(chan struct{})

	l.Start(func(ctx context.Context, commit func(func()) bool) {
		close(started)
		<-release
		result <- commit(func() {})
	})
	<-started

	l.Cancel()
	close(release)

	if ok := <-result; ok {
		t.Error("commit after Cancel must be rejected")
	}
}

func TestLoader_MultipleCommitsFromOneLoad(t *testing.T) {
	var l Loader

	results := make(chan bool, 2)
	l.Start(func(ctx context.Context, commit func(func()) bool) {
		results <- commit(func() {})
		results <- commit(func() {})
	})

	for i := 0; i < 2; i++ {
		select {
		case ok := <-results:
			if !ok {
				t.Errorf("commit %d from the current load must apply", i+1)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("load did not finish")
		}
	}
}
