// Package workerpool provides a fixed-size goroutine pool. Exactly the
// configured number of workers drain a single unbuffered task queue, so
// work that has not been handed to a worker stays with the submitter and
// can be abandoned on cancellation.
package workerpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("workerpool: pool closed")

// Pool manages a fixed pool of worker goroutines.
type Pool struct {
	// Number of workers
	workers int

	// Task channel, unbuffered
	tasks chan func()

	// Guards closed against concurrent Submit
	mu     sync.RWMutex
	closed bool

	// WaitGroup for graceful shutdown
	wg sync.WaitGroup
}

// New creates a pool and starts exactly workers goroutines.
// A non-positive count falls back to GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func()),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit hands task to an idle worker, blocking until one is free.
// It returns ctx.Err() if ctx ends first and ErrClosed after Close.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker is the goroutine that processes tasks.
func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if task == nil {
			continue
		}
		task()
	}
}

// Cap returns the worker count.
func (p *Pool) Cap() int {
	return p.workers
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
