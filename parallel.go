package parallel

import (
	"fmt"
	"iter"

	"github.com/tevino/abool"
)

// Parallel is a single-use builder of units of work that run in parallel.
//
// Units are appended with [Parallel.Add], [Parallel.AddFunc], [Each],
// [EachSeq] and [EachFunc]. A terminal operation ([Parallel.Run],
// [Parallel.TryRun], [Collect], [Finish], [TryFinish]) consumes the
// builder; using it afterwards panics.
//
// A Parallel is not safe for concurrent use.
type Parallel[T any] struct {
	units    []func() T
	consumed *abool.AtomicBool
	cfg      config
}

// New creates an empty builder for units producing T.
func New[T any](opts ...Option) *Parallel[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Parallel[T]{
		consumed: abool.New(),
		cfg:      cfg,
	}
}

// Add appends a unit of work. The unit is not invoked until a terminal
// operation runs. It panics if fn is nil.
func (p *Parallel[T]) Add(fn func() T) *Parallel[T] {
	if fn == nil {
		panic("parallel: Add called with nil function")
	}
	p.push(fn)
	return p
}

// AddFunc appends a unit of work that produces no value. Its slot in the
// results holds the zero T.
func (p *Parallel[T]) AddFunc(fn func()) *Parallel[T] {
	if fn == nil {
		panic("parallel: AddFunc called with nil function")
	}
	p.push(func() T {
		var zero T
		fn()
		return zero
	})
	return p
}

// Each appends one unit per item, in slice order. Every unit calls fn
// with its own item.
//
//	p := parallel.New[int]()
//	parallel.Each(p, []int{10, 20, 30}, func(n int) int { return n * n })
//	squares := p.Run() // [100 400 900]
func Each[T, I any](p *Parallel[T], items []I, fn func(I) T) *Parallel[T] {
	if fn == nil {
		panic("parallel: Each called with nil function")
	}
	for _, item := range items {
		p.push(func() T { return fn(item) })
	}
	return p
}

// EachSeq appends one unit per value yielded by seq, in iteration order.
// The sequence is consumed immediately; fn is only called once the
// builder runs.
func EachSeq[T, I any](p *Parallel[T], seq iter.Seq[I], fn func(I) T) *Parallel[T] {
	if fn == nil {
		panic("parallel: EachSeq called with nil function")
	}
	for item := range seq {
		p.push(func() T { return fn(item) })
	}
	return p
}

// EachFunc is [Each] for functions that produce no value.
func EachFunc[T, I any](p *Parallel[T], items []I, fn func(I)) *Parallel[T] {
	if fn == nil {
		panic("parallel: EachFunc called with nil function")
	}
	for _, item := range items {
		p.push(func() T {
			var zero T
			fn(item)
			return zero
		})
	}
	return p
}

// Len returns the number of units added so far.
func (p *Parallel[T]) Len() int {
	return len(p.units)
}

func (p *Parallel[T]) String() string {
	return fmt.Sprintf("Parallel[len=%d]", len(p.units))
}

func (p *Parallel[T]) push(fn func() T) {
	if p.consumed.IsSet() {
		panic("parallel: unit added after builder was consumed")
	}
	p.units = append(p.units, fn)
}

// take hands the units over to a terminal operation and marks the
// builder consumed.
func (p *Parallel[T]) take() []func() T {
	if !p.consumed.SetToIf(false, true) {
		panic("parallel: builder already consumed")
	}
	units := p.units
	p.units = nil
	return units
}
