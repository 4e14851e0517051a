// Package dispatch runs fire-and-forget side effects (emails, notifications)
// on a fixed worker pool so request goroutines never wait on them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/metrics"
)

var (
	ErrQueueFull  = errors.New("dispatch queue full")
	ErrPoolClosed = errors.New("dispatch pool closed")
)

const (
	defaultWorkers     = 8
	defaultQueueSize   = 256
	defaultTaskTimeout = 30 * time.Second
)

// Task is a unit of async work. Category selects the admission gate bucket.
type Task struct {
	Name     string
	Category string
	Run      func(ctx context.Context) error
	// Fields are attached to log lines emitted for this task.
	Fields map[string]any
}

// Submitter is the narrow surface services depend on.
type Submitter interface {
	Submit(task Task) error
}

type PoolParams struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
	Gate        *Gate
	Logger      *logger.Logger
	Metrics     *metrics.DispatchMetrics
}

// Pool is a bounded worker pool. Tasks run detached from the submitting
// request and cannot be cancelled by it.
type Pool struct {
	queue   chan Task
	workers int
	timeout time.Duration
	gate    *Gate
	logg    *logger.Logger
	metrics *metrics.DispatchMetrics

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewPool(params PoolParams) (*Pool, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	size := params.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := params.TaskTimeout
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Pool{
		queue:   make(chan Task, size),
		workers: workers,
		timeout: timeout,
		gate:    params.Gate,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

// Submit enqueues a task without blocking.
func (p *Pool) Submit(task Task) error {
	if task.Run == nil {
		return fmt.Errorf("task %q has no body", task.Name)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- task:
		p.metrics.IncTask(task.Name, metrics.TaskSubmitted)
		p.metrics.SetQueueDepth(len(p.queue))
		return nil
	default:
		p.metrics.IncTask(task.Name, metrics.TaskDropped)
		return ErrQueueFull
	}
}

// Shutdown stops intake and waits for queued tasks to finish or ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.queue {
		p.metrics.SetQueueDepth(len(p.queue))
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	fields := map[string]any{"task": task.Name, "category": task.Category}
	for k, v := range task.Fields {
		fields[k] = v
	}
	ctx = p.logg.WithFields(ctx, fields)

	defer func() {
		if r := recover(); r != nil {
			p.metrics.IncTask(task.Name, metrics.TaskFailed)
			p.logg.Error(ctx, "dispatch task panicked", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := p.gate.Do(ctx, task.Category, task.Run); err != nil {
		p.metrics.IncTask(task.Name, metrics.TaskFailed)
		p.logg.Error(ctx, "dispatch task failed", err)
		return
	}
	p.metrics.IncTask(task.Name, metrics.TaskCompleted)
}
