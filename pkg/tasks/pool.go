// Package tasks offloads long-running work from the model thread to a
// bounded worker pool. Results come back through a completion queue that
// the model thread drains at points of its own choosing, so workers never
// touch graph state. Cancellation is cooperative via context, and a new
// submission for a slot supersedes the previous in-flight task: its result,
// if it ever arrives, is discarded.
package tasks

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Func is the unit of work. It must poll ctx and return promptly once the
// task is canceled; whatever it returns after cancellation is discarded.
type Func func(ctx context.Context) (any, error)

// CompletionFunc receives a task result. It runs on the goroutine calling
// Drain, which by convention is the model thread.
type CompletionFunc func(value any, err error)

// Task identifies one submitted unit of work.
type Task struct {
	id     string
	slot   string
	cancel context.CancelFunc
	ctx    context.Context
	onDone CompletionFunc
}

// ID returns the task's unique id.
func (t *Task) ID() string { return t.id }

// Cancel requests cooperative cancellation. The task's result will not be
// delivered.
func (t *Task) Cancel() { t.cancel() }

type completion struct {
	task  *Task
	value any
	err   error
}

// Pool is a bounded worker pool with a single-consumer completion queue.
type Pool struct {
	logger *slog.Logger
	sem    *semaphore.Weighted

	baseCtx context.Context
	stop    context.CancelFunc

	completions chan completion
	ready       chan struct{}

	mu       sync.Mutex
	inflight map[string]*Task
}

// NewPool creates a pool running at most workers tasks concurrently.
// workers <= 0 uses the number of CPUs.
func NewPool(logger *slog.Logger, workers int) *Pool {
	if logger == nil {
		logger = slog.Default()
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger:      logger.With("module", "tasks"),
		sem:         semaphore.NewWeighted(int64(workers)),
		baseCtx:     ctx,
		stop:        cancel,
		completions: make(chan completion, 1024),
		ready:       make(chan struct{}, 1),
		inflight:    make(map[string]*Task),
	}
}

// Submit schedules fn for execution. slot names a logical submission
// position (for example one pipeline source); a previous in-flight task in
// the same slot is canceled and its result discarded. onDone is invoked
// from Drain once the task completes and is still current.
func (p *Pool) Submit(slot string, fn Func, onDone CompletionFunc) *Task {
	ctx, cancel := context.WithCancel(p.baseCtx)
	t := &Task{
		id:     uuid.NewString(),
		slot:   slot,
		cancel: cancel,
		ctx:    ctx,
		onDone: onDone,
	}

	p.mu.Lock()
	if prev := p.inflight[slot]; prev != nil {
		p.logger.Debug("Superseding in-flight task", "slot", slot, "task", prev.id)
		prev.cancel()
	}
	p.inflight[slot] = t
	p.mu.Unlock()

	go p.run(t, fn)

	return t
}

func (p *Pool) run(t *Task, fn Func) {
	if err := p.sem.Acquire(t.ctx, 1); err != nil {
		// Canceled while waiting for a worker.
		p.forget(t)
		return
	}
	defer p.sem.Release(1)

	value, err := fn(t.ctx)

	if t.ctx.Err() != nil {
		p.forget(t)
		return
	}

	p.completions <- completion{task: t, value: value, err: err}

	select {
	case p.ready <- struct{}{}:
	default:
	}
}

func (p *Pool) forget(t *Task) {
	p.mu.Lock()
	if p.inflight[t.slot] == t {
		delete(p.inflight, t.slot)
	}
	p.mu.Unlock()
}

// Ready signals when at least one completion is waiting. Useful in select
// loops; Drain must still be called to deliver.
func (p *Pool) Ready() <-chan struct{} { return p.ready }

// Drain delivers all queued completions on the calling goroutine and
// returns how many were delivered. Completions of superseded tasks are
// discarded. Never call this from within a change notification.
func (p *Pool) Drain() int {
	delivered := 0

	for {
		select {
		case c := <-p.completions:
			if p.deliver(c) {
				delivered++
			}
		default:
			return delivered
		}
	}
}

// DrainWait blocks until at least one completion arrives (or ctx is done),
// then drains the queue like Drain.
func (p *Pool) DrainWait(ctx context.Context) (int, error) {
	select {
	case c := <-p.completions:
		delivered := 0
		if p.deliver(c) {
			delivered++
		}

		return delivered + p.Drain(), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *Pool) deliver(c completion) bool {
	p.mu.Lock()
	current := p.inflight[c.task.slot] == c.task
	if current {
		delete(p.inflight, c.task.slot)
	}
	p.mu.Unlock()

	if !current {
		p.logger.Debug("Discarding superseded result", "slot", c.task.slot, "task", c.task.id)
		return false
	}

	if c.task.onDone != nil {
		c.task.onDone(c.value, c.err)
	}

	return true
}

// InFlight returns the number of tasks submitted but not yet delivered or
// discarded.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.inflight)
}

// Close cancels every in-flight task. Pending completions are dropped.
func (p *Pool) Close() {
	p.stop()
}
