// Package workerpool runs fire-and-forget jobs on a fixed set of
// goroutines behind a bounded queue. The audit trail writes through it so
// a slow database never delays an admin response.
//
//	pool := workerpool.New(4)
//	if err := pool.Submit(job); err != nil {
//	    job() // full or closed: run inline
//	}
//	pool.Shutdown(ctx)
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/afandal/storeadmin/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: queue full")
	ErrPoolClosed = errors.New("workerpool: closed")
)

type Pool struct {
	queue   chan func()
	closing chan struct{}
	gate    sync.RWMutex // Submit holds it shared; Shutdown exclusively to close queue
	workers sync.WaitGroup
	once    sync.Once
	queued  atomic.Int64
}

// New starts size workers; the queue holds twice that many jobs.
func New(size int) *Pool {
	size = max(size, 1)
	p := &Pool{
		queue:   make(chan func(), size*2),
		closing: make(chan struct{}),
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

// Submit queues job without blocking.
func (p *Pool) Submit(job func()) error {
	p.gate.RLock()
	defer p.gate.RUnlock()
	select {
	case <-p.closing:
		return ErrPoolClosed
	default:
	}
	select {
	case p.queue <- job:
		p.queued.Add(1)
		return nil
	default:
		return ErrPoolFull
	}
}

// Queued is the number of jobs waiting for a worker.
func (p *Pool) Queued() int { return int(p.queued.Load()) }

// Shutdown refuses new jobs and waits for queued ones to finish or for ctx
// to end, whichever is first. Later calls only wait.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.once.Do(func() {
		close(p.closing)
		p.gate.Lock()
		close(p.queue)
		p.gate.Unlock()
	})
	done := make(chan struct{})
	go func() {
		p.workers.Wait()
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
	defer p.workers.Done()
	for job := range p.queue {
		p.queued.Add(-1)
		run(job)
	}
}

func run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: job panicked", "panic", r)
		}
	}()
	job()
}
