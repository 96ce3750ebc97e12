// Package pool provides typed object pooling for scan workers.
//
// The combination scan borrows the combined vector of each feature pair from
// a Pool instead of allocating one per pair.
//
// Example usage:
//
//	vectors := pool.NewVectors(rows)
//	buf := vectors.Get()
//	defer vectors.Put(buf)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool with an optional reset hook
// and usage counters. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. newFn builds an object when the pool is empty; reset,
// if non-nil, runs on every object passed to Put.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get returns a pooled object or a new one.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.gets, 1)
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put returns obj to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats reports how many objects were allocated, how many are checked out
// and how many Get calls were served from recycled objects.
func (p *Pool[T]) Stats() (allocated, inUse, reused int64) {
	allocated = atomic.LoadInt64(&p.stats.allocated)
	inUse = atomic.LoadInt64(&p.stats.inUse)
	reused = atomic.LoadInt64(&p.stats.gets) - allocated
	if reused < 0 {
		reused = 0
	}
	return allocated, inUse, reused
}

// NewVectors returns a pool of float64 slices of length n. Slices are held
// by pointer so Put does not allocate.
func NewVectors(n int) *Pool[*[]float64] {
	return New(func() *[]float64 {
		v := make([]float64, n)
		return &v
	}, nil)
}
