package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

func newTestPool(t *testing.T, workers, queue int) *Pool {
	t.Helper()
	pool, err := NewPool(PoolParams{Workers: workers, QueueSize: queue, TaskTimeout: time.Second, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := newTestPool(t, 3, 16)
	pool.Start()

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := pool.Submit(Task{Name: "email", Category: CategoryEmail, Run: func(context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&ran, 1)
			return nil
		}})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	wg.Wait()
	if ran != 10 {
		t.Fatalf("expected 10 tasks, ran %d", ran)
	}
	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestPoolSubmitDoesNotBlockWhenFull(t *testing.T) {
	pool := newTestPool(t, 1, 1)

	noop := func(context.Context) error { return nil }
	if err := pool.Submit(Task{Name: "first", Run: noop}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- pool.Submit(Task{Name: "second", Run: noop}) }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("submit blocked on a full queue")
	}
}

func TestPoolSurvivesFailingAndPanickingTasks(t *testing.T) {
	pool := newTestPool(t, 1, 8)
	pool.Start()

	_ = pool.Submit(Task{Name: "fails", Run: func(context.Context) error { return errors.New("smtp down") }})
	_ = pool.Submit(Task{Name: "panics", Run: func(context.Context) error { panic("template nil") }})

	after := make(chan struct{})
	_ = pool.Submit(Task{Name: "after", Run: func(context.Context) error { close(after); return nil }})

	select {
	case <-after:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker died after a failing task")
	}
	_ = pool.Shutdown(context.Background())
}

func TestPoolShutdownDrainsAndRejects(t *testing.T) {
	pool := newTestPool(t, 2, 16)

	var ran int32
	for i := 0; i < 5; i++ {
		_ = pool.Submit(Task{Name: "queued", Run: func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}})
	}
	pool.Start()
	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if ran != 5 {
		t.Fatalf("expected queued tasks to drain, ran %d", ran)
	}
	if err := pool.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPoolTaskContextIsDetached(t *testing.T) {
	pool := newTestPool(t, 1, 1)
	pool.Start()
	defer pool.Shutdown(context.Background())

	got := make(chan error, 1)
	_ = pool.Submit(Task{Name: "detached", Run: func(ctx context.Context) error {
		got <- ctx.Err()
		return nil
	}})
	select {
	case err := <-got:
		if err != nil {
			t.Fatalf("task context should be live, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("task did not run")
	}
}

func TestNewPoolRequiresLogger(t *testing.T) {
	if _, err := NewPool(PoolParams{}); err == nil {
		t.Fatalf("expected logger required error")
	}
}
