package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager owns the server's long running goroutines so shutdown can cancel
// and wait for all of them.
type Manager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processes map[string]context.CancelFunc
	mu        sync.Mutex
}

func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]context.CancelFunc),
	}
}

// Start runs fn under name. A process already running under the same name is
// stopped first. A panic in fn is logged and ends only that process.
func (m *Manager) Start(name string, fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stop, ok := m.processes[name]; ok {
		slog.Warn("Process already running, replacing it", slog.String("type", "sys"), slog.String("process", name))
		stop()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.processes[name] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("type", "sys"),
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()
		slog.Debug("Background process started", slog.String("type", "sys"), slog.String("process", name))
		fn(ctx)
		slog.Debug("Background process ended", slog.String("type", "sys"), slog.String("process", name))
	}()
}

func (m *Manager) Stop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stop, ok := m.processes[name]; ok {
		stop()
		delete(m.processes, name)
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processes)
}

// Shutdown cancels every process and waits up to timeout for them to return.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background processes",
			slog.String("type", "sys"),
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}

// Every calls fn on each tick until ctx is done.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
