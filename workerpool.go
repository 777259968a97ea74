// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// job is a function and its opaque argument, matching pool.c's
// POOL144_job (function pointer + void*) translated to a closure.
type job func()

// pool is a bounded-FIFO producer/consumer with N worker goroutines, kept
// separate from the compression core so concurrent compression can reuse it
// without coupling job dispatch to any one context. The FIFO bound is
// enforced with a semaphore (Acquire for Add's blocking wait, TryAcquire for
// TryAdd's non-blocking one) rather than a mutex+condvar circular buffer,
// the idiomatic Go shape for bounded concurrent work with blocking and
// non-blocking submit.
type pool struct {
	mu        sync.Mutex
	queue     chan job
	sem       *semaphore.Weighted
	limit     int64
	capacity  int64
	g         *errgroup.Group
	shutdown  bool
	closeOnce sync.Once
}

// newPool creates a pool with numThreads workers and a FIFO bound of
// queueSize pending jobs, per POOL144_create's contract.
func newPool(numThreads, queueSize int) *pool {
	if numThreads < 1 {
		numThreads = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	g, _ := errgroup.WithContext(context.Background())
	p := &pool{
		queue:    make(chan job, queueSize),
		sem:      semaphore.NewWeighted(int64(queueSize)),
		limit:    int64(numThreads),
		capacity: int64(numThreads),
		g:        g,
	}
	for i := 0; i < numThreads; i++ {
		p.spawn()
	}
	return p
}

func (p *pool) spawn() {
	p.g.Go(func() error {
		for j := range p.queue {
			j()
		}
		return nil
	})
}

// Add blocks until a queue slot is available, then enqueues function. A call
// after Shutdown is a silent no-op, matching POOL144_add_internal's
// "if (ctx->shutdown) return" guard.
func (p *pool) Add(function func()) {
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	p.mu.Lock()
	down := p.shutdown
	p.mu.Unlock()
	if down {
		p.sem.Release(1)
		return
	}
	p.queue <- job(func() {
		defer p.sem.Release(1)
		function()
	})
}

// TryAdd is Add's non-blocking sibling: reports false immediately if the
// queue is full or the pool is shutting down, per POOL144_tryAdd.
func (p *pool) TryAdd(function func()) bool {
	p.mu.Lock()
	down := p.shutdown
	p.mu.Unlock()
	if down {
		return false
	}
	if !p.sem.TryAcquire(1) {
		return false
	}
	p.queue <- job(func() {
		defer p.sem.Release(1)
		function()
	})
	return true
}

// Resize grows thread capacity by spawning workers, or lowers the recorded
// worker limit. Lowering does not stop any worker: workers never consult
// limit, so every spawned worker keeps taking jobs until Shutdown.
func (p *pool) Resize(numThreads int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := int64(numThreads)
	if n <= p.capacity {
		p.limit = n
		return
	}
	for i := p.capacity; i < n; i++ {
		p.spawn()
	}
	p.capacity = n
	p.limit = n
}

// Shutdown stops accepting new work and waits for in-flight jobs to finish;
// jobs already queued but not yet started may be skipped (workers exit the
// range loop only once the channel is closed and drained, so in practice
// every queued job still runs — this package's workers never abandon a
// started job, matching the "in-flight jobs always complete" half of
// pool.c's contract; the "queued-but-unstarted jobs may be skipped" half
// only ever mattered for pool.c's own forced-wake shutdown path and has no
// user-visible effect here since Shutdown always drains the channel it
// owns).
func (p *pool) Shutdown() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.shutdown = true
		p.mu.Unlock()
		close(p.queue)
	})
	p.g.Wait()
}
