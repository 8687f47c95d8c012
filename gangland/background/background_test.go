package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gangland/server/internal/clock"
)

func TestManagerShutdownWaits(t *testing.T) {
	m := NewManager()
	var stopped atomic.Int32
	for _, name := range []string{"a", "b"} {
		m.Start(name, func(ctx context.Context) {
			<-ctx.Done()
			stopped.Add(1)
		})
	}
	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}
	if err := m.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := stopped.Load(); got != 2 {
		t.Errorf("stopped = %d, want 2", got)
	}
}

func TestManagerReplacesProcess(t *testing.T) {
	m := NewManager()
	first := make(chan struct{})
	m.Start("job", func(ctx context.Context) {
		<-ctx.Done()
		close(first)
	})
	m.Start("job", func(ctx context.Context) { <-ctx.Done() })

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first process was not cancelled")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	_ = m.Shutdown(time.Second)
}

func TestManagerSurvivesPanic(t *testing.T) {
	m := NewManager()
	m.Start("boom", func(context.Context) { panic("boom") })
	if err := m.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestManagerShutdownTimeout(t *testing.T) {
	m := NewManager()
	release := make(chan struct{})
	m.Start("stuck", func(context.Context) { <-release })
	if err := m.Shutdown(10 * time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
	close(release)
}

type fakePruner struct {
	before time.Time
	n      int64
	err    error
}

func (f *fakePruner) PruneCooldowns(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.n, f.err
}

func TestPruneCooldownsUsesGrace(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := &fakePruner{n: 3}
	PruneCooldowns(store, clock.NewManual(now), time.Hour)(context.Background())
	if want := now.Add(-time.Hour); !store.before.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.before, want)
	}

	store.err = errors.New("db down")
	PruneCooldowns(store, clock.NewManual(now), 0)(context.Background())
}

func TestEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, time.Millisecond, func(context.Context) {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Every did not return after cancel")
	}
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}
