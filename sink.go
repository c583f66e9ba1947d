package parallel

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToSet collects the results into a set.
func ToSet[T comparable](seq iter.Seq[T]) map[T]struct{} {
	set := make(map[T]struct{})
	for v := range seq {
		set[v] = struct{}{}
	}
	return set
}

// ToIndexed collects the results into an ordered map from submission
// index to result. Iterating the map visits units in submission order.
func ToIndexed[T any](seq iter.Seq[T]) *orderedmap.OrderedMap[int, T] {
	om := orderedmap.New[int, T]()
	i := 0
	for v := range seq {
		om.Set(i, v)
		i++
	}
	return om
}

// Fold returns a collector that folds the results, in submission order,
// into an accumulator starting at init.
//
//	total := parallel.Collect(p, parallel.Fold(0, func(acc, n int) int { return acc + n }))
func Fold[T, A any](init A, f func(A, T) A) func(iter.Seq[T]) A {
	return func(seq iter.Seq[T]) A {
		acc := init
		for v := range seq {
			acc = f(acc, v)
		}
		return acc
	}
}
