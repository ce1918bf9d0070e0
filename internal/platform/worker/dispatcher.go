// Package worker provides the keyed single-writer executor behind every
// mutating entity operation. All commands addressed to one entity identity
// run one-at-a-time in submission order with no internal concurrency, which
// is what lets the balance and period-ordering invariants be implemented as
// plain sequential logic. Distinct entities proceed in parallel up to the
// pool capacity.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Dispatcher serializes closures per entity key over a shared worker pool.
type Dispatcher struct {
	pool   *ants.Pool
	logger *slog.Logger

	mu     sync.Mutex
	queues map[string]*entityQueue
}

type entityQueue struct {
	tasks   []func()
	running bool
}

// NewDispatcher creates a dispatcher backed by a pool of size workers.
// The pool is nonblocking: when it is saturated the dispatcher falls back
// to a fresh goroutine rather than waiting for a worker, because a drain
// may itself dispatch to another key (a journal post fans out to account
// keys) and blocking inside Submit would wedge the pool.
func NewDispatcher(size int, logger *slog.Logger) (*Dispatcher, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		pool:   pool,
		logger: logger,
		queues: make(map[string]*entityQueue),
	}, nil
}

// Do runs fn exclusively for the given entity key and returns its error.
// Calls for the same key are executed FIFO; calls for different keys run
// concurrently. If ctx expires while waiting, Do returns the context error
// but the queued fn still executes to keep the per-key order intact.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func() error) error {
	resultChan := make(chan error, 1)
	task := func() {
		resultChan <- fn()
	}

	d.mu.Lock()
	q, ok := d.queues[key]
	if !ok {
		q = &entityQueue{}
		d.queues[key] = q
	}
	q.tasks = append(q.tasks, task)
	startDrain := !q.running
	if startDrain {
		q.running = true
	}
	d.mu.Unlock()

	if startDrain {
		d.startDrain(key)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startDrain hands the key's queue to a pool worker, or to a fresh goroutine
// when the pool refuses the submission. The fallback keeps nested dispatches
// live: a drain occupying the last pool worker can still fan out to other
// entity keys without waiting on itself.
func (d *Dispatcher) startDrain(key string) {
	if err := d.pool.Submit(func() { d.drain(key) }); err != nil {
		if !errors.Is(err, ants.ErrPoolOverload) {
			d.logger.Warn("Worker pool refused entity queue, draining on goroutine",
				slog.String("entity_key", key), slog.String("error", err.Error()))
		}
		go d.drain(key)
	}
}

// drain runs the key's queue to exhaustion, then retires it.
func (d *Dispatcher) drain(key string) {
	for {
		d.mu.Lock()
		q := d.queues[key]
		if q == nil || len(q.tasks) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		d.mu.Unlock()

		task()
	}
}

// Running returns the number of busy workers in the pool.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Shutdown releases the worker pool.
func (d *Dispatcher) Shutdown() {
	d.logger.Info("Shutting down entity dispatcher", slog.Int("running_workers", d.pool.Running()))
	d.pool.Release()
}
