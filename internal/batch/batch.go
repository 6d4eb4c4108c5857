// Package batch runs an ordered list of work items in fixed-size concurrent
// batches and reassembles the results in input order.
//
// Every batch is a synchronization unit: one goroutine per item, and the next
// batch does not start until all goroutines of the current one have returned.
// A failing item never aborts its siblings or the run; its index is simply
// absent from the results and reported as a Failure.
package batch

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the batch size used when callers have no preference.
const DefaultConcurrency = 6

// ParallelThreshold is the smallest list size worth running concurrently.
const ParallelThreshold = 3

// ShouldParallelize reports whether n items should go through Process rather
// than a plain sequential loop.
func ShouldParallelize(n, maxConcurrency int) bool {
	return n >= ParallelThreshold && maxConcurrency > 1
}

// Results maps a global item index to the value produced for it.
type Results[R any] map[int]R

// ProcessFunc handles a single item. index is the item's position in the
// full input list, not in its batch.
type ProcessFunc[T, R any] func(item T, index int) (R, error)

// BatchFunc is called after every batch barrier with the batch's starting
// index, its items and all results collected so far. The returned slice is
// appended to the output.
type BatchFunc[T, R any] func(start int, items []T, results Results[R]) []R

// Failure describes an item that produced no result.
type Failure struct {
	Index int
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("item %d: %v", f.Index, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Outcome is what Process hands back: the ordered output plus the items that
// were dropped along the way.
type Outcome[R any] struct {
	Items    []R
	Failures []Failure
}

type slot[R any] struct {
	val R
	err error
	ok  bool
}

// Process runs items in consecutive batches of maxConcurrency.
//
// Without done, the output holds results[i] for every index that produced a
// value, in input order; indices without a value are skipped.
func Process[T, R any](items []T, process ProcessFunc[T, R], done BatchFunc[T, R], maxConcurrency int) Outcome[R] {
	var out Outcome[R]
	if maxConcurrency <= 0 || len(items) == 0 {
		return out
	}

	results := make(Results[R], len(items))

	for start := 0; start < len(items); start += maxConcurrency {
		end := min(start+maxConcurrency, len(items))
		chunk := items[start:end]

		slots := runBatch(chunk, start, process)

		for i, s := range slots {
			if s.ok {
				results[start+i] = s.val
				continue
			}
			out.Failures = append(out.Failures, Failure{Index: start + i, Err: s.err})
		}

		if done != nil {
			out.Items = append(out.Items, done(start, chunk, results)...)
			continue
		}

		for i := start; i < end; i++ {
			if v, ok := results[i]; ok {
				out.Items = append(out.Items, v)
			}
		}
	}

	sort.Slice(out.Failures, func(i, j int) bool {
		return out.Failures[i].Index < out.Failures[j].Index
	})

	return out
}

// runBatch starts one goroutine per item and waits for all of them. Each
// goroutine owns exactly one slot, so the slice needs no lock.
func runBatch[T, R any](chunk []T, start int, process ProcessFunc[T, R]) []slot[R] {
	slots := make([]slot[R], len(chunk))

	var g errgroup.Group
	for i, item := range chunk {
		g.Go(func() error {
			slots[i] = guard(item, start+i, process)
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

func guard[T, R any](item T, index int, process ProcessFunc[T, R]) (s slot[R]) {
	defer func() {
		if r := recover(); r != nil {
			s = slot[R]{err: fmt.Errorf("panic: %v", r)}
		}
	}()

	v, err := process(item, index)
	if err != nil {
		return slot[R]{err: err}
	}

	return slot[R]{val: v, ok: true}
}
