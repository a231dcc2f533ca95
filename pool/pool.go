// Package pool holds the reusable buffers of the quantizers. Large buffers
// (color lists, Wu histograms) are expensive to allocate for every image,
// so they are kept in sync.Pools between uses.
package pool

import (
	"sync"
)

// A Pool is a generic wrapper around a sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

// New creates a new pool which will use the fn to create new instances of T
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{New: func() interface{} { return fn() }},
	}
}

// Get a T
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put a T back in the pool
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

// Slices pools slices of E. Slices are stored by pointer to avoid an
// allocation on every Put
type Slices[E any] struct {
	pool *Pool[*[]E]
}

// NewSlices creates a pool of slices
func NewSlices[E any]() *Slices[E] {
	return &Slices[E]{
		pool: New(func() *[]E {
			var s []E
			return &s
		}),
	}
}

// Get returns a slice with length n. The contents are not cleared
func (s *Slices[E]) Get(n int) []E {
	sp := s.pool.Get()
	b := *sp
	if cap(b) < n {
		b = make([]E, n)
	}
	return b[:n]
}

// Put returns a slice obtained from Get to the pool. Empty slices are
// dropped
func (s *Slices[E]) Put(b []E) {
	if cap(b) == 0 {
		return
	}
	b = b[:cap(b)]
	s.pool.Put(&b)
}
