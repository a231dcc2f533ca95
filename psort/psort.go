// Package psort sorts slices in place, checking for cancellation between
// partitions and spreading large partitions over several goroutines.
package psort

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/exp/slices"
)

// ranges shorter than cutoff are sorted sequentially without further
// cancellation checks
const cutoff = 2048

// Sort sorts s by less, using up to GOMAXPROCS goroutines. If ctx is
// canceled the order of s is unspecified and ctx.Err() is returned
func Sort[E any](ctx context.Context, s []E, less func(a, b E) bool) error {
	return SortWorkers(ctx, s, less, runtime.GOMAXPROCS(0))
}

// SortWorkers is Sort with an explicit limit of goroutines. A workers value
// of 1 or less sorts on the calling goroutine only
func SortWorkers[E any](ctx context.Context, s []E, less func(a, b E) bool, workers int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(s) < cutoff {
		slices.SortFunc(s, less)
		return nil
	}
	st := &sorter[E]{
		ctx:  ctx,
		less: less,
	}
	if workers > 1 {
		st.sem = make(chan struct{}, workers-1)
	}
	st.sort(s)
	st.wg.Wait()
	return ctx.Err()
}

type sorter[E any] struct {
	ctx  context.Context
	less func(a, b E) bool
	sem  chan struct{}
	wg   sync.WaitGroup
}

func (st *sorter[E]) sort(s []E) {
	for len(s) >= cutoff {
		if st.ctx.Err() != nil {
			return
		}
		p := partition(s, st.less)
		small, large := s[:p+1], s[p+1:]
		if len(small) > len(large) {
			small, large = large, small
		}
		if !st.spawn(small) {
			st.sort(small)
		}
		s = large
	}
	if st.ctx.Err() != nil {
		return
	}
	slices.SortFunc(s, st.less)
}

// spawn sorts s on a new goroutine if a worker slot is free
func (st *sorter[E]) spawn(s []E) bool {
	if st.sem == nil {
		return false
	}
	select {
	case st.sem <- struct{}{}:
	default:
		return false
	}
	st.wg.Add(1)
	go func() {
		defer func() {
			<-st.sem
			st.wg.Done()
		}()
		st.sort(s)
	}()
	return true
}

// partition is a Hoare partition around the median of three. It returns p
// such that every element of s[:p+1] is not greater than any element of
// s[p+1:]. Both parts are non-empty for len(s) >= 2
func partition[E any](s []E, less func(a, b E) bool) int {
	n := len(s)
	mid := (n - 1) / 2
	if less(s[mid], s[0]) {
		s[mid], s[0] = s[0], s[mid]
	}
	if less(s[n-1], s[0]) {
		s[n-1], s[0] = s[0], s[n-1]
	}
	if less(s[n-1], s[mid]) {
		s[n-1], s[mid] = s[mid], s[n-1]
	}
	pivot := s[mid]
	i, j := 0, n-1
	for {
		for less(s[i], pivot) {
			i++
		}
		for less(pivot, s[j]) {
			j--
		}
		if i >= j {
			return j
		}
		s[i], s[j] = s[j], s[i]
		i++
		j--
	}
}
