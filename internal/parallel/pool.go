// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel shades horizontal bands of a frame on a fixed set of
// goroutines.
//
// The software reference pipeline splits the target into row bands and hands
// each band to a Pool. Workers own a queue each and steal from their
// neighbours when their own queue runs dry, so a band that lands on expensive
// texels (linear filtering, blending) does not stall the whole frame.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows is the smallest band handed to a worker. Smaller bands cost
// more in scheduling than they save.
const minBandRows = 8

// Pool is a fixed set of worker goroutines.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// mu is held for reading while tasks are queued and for writing while
	// Close stops the workers, so no task is queued after they exit.
	mu sync.RWMutex
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	depth := workers * 4
	if depth < 8 {
		depth = 8
	}

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}
	return p
}

func (p *Pool) loop(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		default:
			if fn := p.steal(id); fn != nil {
				fn()
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case fn := <-own:
				fn()
			}
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Run executes every task and returns once all of them have finished.
// On a closed pool the tasks run on the calling goroutine.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 {
		return
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		for _, fn := range tasks {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		task := fn
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			task()
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

// Rows splits [0, height) into bands and calls fn once per band, in
// parallel. It returns when every band is done.
func (p *Pool) Rows(height int, fn func(y0, y1 int)) {
	bands := Bands(height, p.workers)
	tasks := make([]func(), len(bands))
	for i, b := range bands {
		y0, y1 := b[0], b[1]
		tasks[i] = func() { fn(y0, y1) }
	}
	p.Run(tasks)
}

// Bands splits [0, height) into at most n contiguous half-open row ranges of
// at least minBandRows rows each (the last band may be shorter).
func Bands(height, n int) [][2]int {
	if height <= 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (height + n - 1) / n
	if size < minBandRows {
		size = minBandRows
	}
	bands := make([][2]int, 0, (height+size-1)/size)
	for y := 0; y < height; y += size {
		end := y + size
		if end > height {
			end = height
		}
		bands = append(bands, [2]int{y, end})
	}
	return bands
}

// Close stops the workers after draining queued work.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still dispatches to its workers.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
