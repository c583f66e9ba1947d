// Package parallel runs a batch of closures in parallel and waits for all
// of them to finish.
//
// Units of work are collected in a single-use [Parallel] builder and run
// by a terminal operation. The terminal operation returns only after every
// goroutine it started has been joined, so units may reference local
// variables of the caller without copying them:
//
//	var mu sync.Mutex
//	total := 0
//
//	parallel.New[struct{}]().
//	    AddFunc(func() { mu.Lock(); total += 1; mu.Unlock() }).
//	    AddFunc(func() { mu.Lock(); total += 1; mu.Unlock() }).
//	    Run()
//	// total == 2
//
// # Adding Units
//
//   - [Parallel.Add] appends a closure producing a T.
//   - [Parallel.AddFunc] appends a closure without a result.
//   - [Each], [EachSeq] and [EachFunc] append one unit per item of a
//     slice or iterator, in iteration order.
//
// # Running Units
//
//   - [Parallel.Run] returns the results in submission order. The last
//     unit runs on the calling goroutine; the others each get a fresh
//     goroutine.
//   - [Collect] runs like Run and streams the ordered results into any
//     collector with the shape of [slices.Collect], such as [ToSet],
//     [ToIndexed] or [Fold].
//   - [Finish] spawns every unit and runs a side action on the calling
//     goroutine meanwhile, returning the results and the side action's
//     value.
//   - [Map] is shorthand for running a function over a slice.
//
// Results are always ordered by submission, never by completion.
// An empty builder returns an empty slice without starting goroutines.
//
// # Panics
//
// A panic in a unit is captured so that the remaining goroutines are
// still joined. Once all of them have finished, exactly one panic is
// re-raised with its original value:
//
//   - if any spawned unit panicked, the one joined last (by submission
//     order) wins;
//   - otherwise the panic of the unit or side action that ran on the
//     calling goroutine is re-raised.
//
// Other panics are dropped, and no partial results are returned.
// [WithPanicStack] re-raises a [*PanicError] carrying the stack trace
// instead. [Parallel.TryRun] and [TryFinish] return the chosen panic as a
// [*UnitError]; inspect it with [IsUnitError], [UnitOf], [CauseOf] and
// [PanicOf].
//
// A unit that calls runtime.Goexit on a spawned goroutine counts as a
// failure and is re-raised by calling runtime.Goexit on the caller.
//
// # Observability
//
// [WithLogger] routes debug and warning records about spawning, joining
// and panics to a [log/slog] logger. [WithOnStart] and [WithOnDone]
// register per-unit hooks receiving a [UnitInfo].
//
// # Non-goals
//
// The package does not pool goroutines, bound concurrency, cancel
// in-flight work or steal work. Every terminal operation starts one fresh
// goroutine per spawned unit and waits for all of them.
package parallel
