// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool_Workers(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"explicit", 4, 4},
		{"zero", 0, runtime.GOMAXPROCS(0)},
		{"negative", -3, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.in)
			defer p.Close()
			if p.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", p.Workers(), tt.want)
			}
			if !p.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestPool_Run(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var n atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		tasks[i] = func() { n.Add(1) }
	}
	p.Run(tasks)

	if n.Load() != 100 {
		t.Errorf("ran %d tasks, want 100", n.Load())
	}
}

func TestPool_RunEmpty(t *testing.T) {
	p := NewPool(2)
	defer p.Close()
	p.Run(nil)
}

func TestPool_RunAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()

	if p.IsRunning() {
		t.Fatal("pool should not be running after Close")
	}

	ran := 0
	p.Run([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("ran %d tasks on closed pool, want 2", ran)
	}
}

func TestPool_RunRacingClose(t *testing.T) {
	for range 200 {
		p := NewPool(2)
		var ran atomic.Int64
		tasks := make([]func(), 64)
		for i := range tasks {
			tasks[i] = func() { ran.Add(1) }
		}

		finished := make(chan struct{})
		go func() {
			p.Run(tasks)
			close(finished)
		}()
		p.Close()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after a concurrent Close")
		}
		if got := ran.Load(); got != int64(len(tasks)) {
			t.Fatalf("ran %d tasks, want %d", got, len(tasks))
		}
	}
}

func TestPool_CloseTwice(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
}

func TestPool_RowsCoversEveryRowOnce(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	const height = 101
	var mu sync.Mutex
	seen := make([]int, height)

	p.Rows(height, func(y0, y1 int) {
		mu.Lock()
		defer mu.Unlock()
		for y := y0; y < y1; y++ {
			seen[y]++
		}
	})

	for y, c := range seen {
		if c != 1 {
			t.Fatalf("row %d visited %d times, want 1", y, c)
		}
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name   string
		height int
		n      int
		want   [][2]int
	}{
		{"empty", 0, 4, nil},
		{"short", 5, 4, [][2]int{{0, 5}}},
		{"even", 32, 4, [][2]int{{0, 8}, {8, 16}, {16, 24}, {24, 32}}},
		{"remainder", 20, 2, [][2]int{{0, 10}, {10, 20}}},
		{"min band", 20, 8, [][2]int{{0, 8}, {8, 16}, {16, 20}}},
		{"zero workers", 10, 0, [][2]int{{0, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bands(tt.height, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Bands(%d, %d) = %v, want %v", tt.height, tt.n, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("band %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkPool_Rows(b *testing.B) {
	p := NewPool(0)
	defer p.Close()

	buf := make([]byte, 1024*768)
	for b.Loop() {
		p.Rows(768, func(y0, y1 int) {
			for i := y0 * 1024; i < y1*1024; i++ {
				buf[i]++
			}
		})
	}
}
