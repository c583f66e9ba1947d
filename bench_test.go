package parallel_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/baxromumarov/parallel"
)

// BenchmarkRunNoWork measures the overhead of running N units
// that do nothing, compared to raw goroutines + WaitGroup.
func BenchmarkRunNoWork(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(unitCountName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p := parallel.New[struct{}]()
				for j := 0; j < n; j++ {
					p.AddFunc(func() {})
				}
				p.Run()
			}
		})
	}
}

// BenchmarkRawGoroutineWaitGroup is the baseline: raw go + sync.WaitGroup.
func BenchmarkRawGoroutineWaitGroup(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(unitCountName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var wg sync.WaitGroup
				for j := 0; j < n; j++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
					}()
				}
				wg.Wait()
			}
		})
	}
}

// BenchmarkMap measures ordered result collection over a slice.
func BenchmarkMap(b *testing.B) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = parallel.Map(items, func(item int) int {
			return item * 2
		})
	}
}

// BenchmarkFinish measures the all-spawned variant with a side action.
func BenchmarkFinish(b *testing.B) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := parallel.New[int]()
		parallel.Each(p, items, func(item int) int { return item })
		_, _ = parallel.Finish(p, func() struct{} { return struct{}{} })
	}
}

func unitCountName(n int) string {
	return fmt.Sprintf("%d", n)
}
