package sender

import (
	"context"
)

// TaskHandle allows waiting for and cancelling a spawned task. Cancelling
// stops the task from reporting anything; a cancelled task never delivers a
// completion message.
type TaskHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel aborts the task. It is safe to call multiple times.
func (h *TaskHandle) Cancel() { h.cancel() }

// Done returns a channel that is closed once the task has returned.
func (h *TaskHandle) Done() <-chan struct{} { return h.done }

// Spawner runs units of work concurrently with their owner. The name is
// used for diagnostics only.
type Spawner interface {
	Spawn(name string, run func(ctx context.Context)) (*TaskHandle, error)
}

type goSpawner struct{}

// NewSpawner returns a Spawner backed by plain goroutines. Spawning never
// fails; the error return exists for alternative implementations.
func NewSpawner() Spawner {
	return goSpawner{}
}

func (goSpawner) Spawn(name string, run func(ctx context.Context)) (*TaskHandle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &TaskHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		defer cancel()
		run(ctx)
	}()
	return h, nil
}
