package parallel

import (
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/baxromumarov/parallel/internal/scope"
)

// Run executes every unit and returns their results in submission order.
//
// The last unit runs on the calling goroutine; every other unit gets its
// own goroutine. Run returns only after all of them have finished, so
// units may freely reference the caller's local variables.
//
// If units panic, Run waits for every goroutine and then re-raises one of
// the panics: the one observed last while joining the spawned units in
// submission order, or, if no spawned unit panicked, the panic of the
// unit that ran on the calling goroutine. The other panics are dropped.
// No results are returned in that case.
//
// Run consumes the builder.
func (p *Parallel[T]) Run() []T {
	out, f := p.run()
	if f != nil {
		p.raise(f)
	}
	return out
}

// TryRun behaves like [Parallel.Run] but returns the chosen panic as a
// [*UnitError] wrapping a [*PanicError] instead of re-raising it.
// The results are nil when an error is returned.
func (p *Parallel[T]) TryRun() ([]T, error) {
	out, f := p.run()
	if f != nil {
		return nil, f.err()
	}
	return out, nil
}

// Collect runs the builder like [Parallel.Run] and feeds the ordered
// results into collect. Any function with the shape of [slices.Collect]
// or [maps.Collect] works as a sink, as do [ToSet], [ToIndexed] and [Fold].
//
//	set := parallel.Collect(p, parallel.ToSet[string])
func Collect[T, C any](p *Parallel[T], collect func(iter.Seq[T]) C) C {
	if collect == nil {
		panic("parallel: Collect called with nil collector")
	}
	return collect(slices.Values(p.Run()))
}

// Finish spawns every unit on its own goroutine, runs side on the calling
// goroutine while they execute, and returns the ordered results together
// with side's result.
//
// Panics are handled as in [Parallel.Run], with side taking the place of
// the unit that runs on the calling goroutine: a panic in side is only
// re-raised when no unit panicked. side runs even if the builder is empty.
//
// Finish consumes the builder.
func Finish[T, R any](p *Parallel[T], side func() R) ([]T, R) {
	out, r, f := finish(p, side)
	if f != nil {
		p.raise(f)
	}
	return out, r
}

// TryFinish is [Finish] with the chosen panic returned as a [*UnitError].
func TryFinish[T, R any](p *Parallel[T], side func() R) ([]T, R, error) {
	out, r, f := finish(p, side)
	if f != nil {
		return nil, r, f.err()
	}
	return out, r, nil
}

// Map runs fn over every item concurrently and returns the results in the
// order of items. It is shorthand for New, [Each] and [Parallel.Run].
func Map[I, T any](items []I, fn func(I) T, opts ...Option) []T {
	return Each(New[T](opts...), items, fn).Run()
}

func (p *Parallel[T]) run() ([]T, *failure) {
	units := p.take()
	if len(units) == 0 {
		return []T{}, nil
	}

	last := len(units) - 1
	var local T
	out, f := p.fanOut(
		units[:last],
		UnitInfo{Index: last, Placement: Inline},
		func() { local = units[last]() },
	)
	if f != nil {
		return nil, f
	}
	return append(out, local), nil
}

func finish[T, R any](p *Parallel[T], side func() R) ([]T, R, *failure) {
	if side == nil {
		panic("parallel: Finish called with nil side action")
	}
	units := p.take()

	var r R
	out, f := p.fanOut(
		units,
		UnitInfo{Index: -1, Placement: Side},
		func() { r = side() },
	)
	if f != nil {
		var zero R
		return nil, zero, f
	}
	return out, r, nil
}

// fanOut spawns units in submission order, runs local on the calling
// goroutine, joins every spawned unit in submission order and receives
// their results. It returns the spawned results, with room for one more,
// and the failure chosen by the priority rule.
func (p *Parallel[T]) fanOut(units []func() T, localInfo UnitInfo, local func()) ([]T, *failure) {
	var (
		results = make([]T, len(units), len(units)+1)
		elapsed = make([]time.Duration, len(units))
		spawned *failure
		caught  *failure
	)

	scope.Run(func(s *scope.Scope) {
		handles := make([]*scope.Handle[T], len(units))
		for i, u := range units {
			info := UnitInfo{Index: i, Placement: Spawned}
			handles[i] = scope.Spawn(s, p.instrument(info, u, &elapsed[i]))
		}
		if len(units) > 0 {
			p.cfg.logger.Debug("spawned units", slog.Int("count", len(units)))
		}

		caught = p.runLocal(localInfo, local)

		for i, h := range handles {
			info := UnitInfo{Index: i, Placement: Spawned}
			pe := newPanicError(h.Join())
			p.done(info, pe, elapsed[i])
			if pe == nil {
				continue
			}
			if spawned != nil {
				p.discard(spawned)
			}
			spawned = &failure{unit: info, pe: pe}
		}

		if spawned != nil {
			return
		}
		for i, h := range handles {
			results[i] = h.Recv()
		}
	}, p.scopeOptions()...)

	f := choose(spawned, caught)
	if caught != nil && f != caught {
		p.discard(caught)
	}
	return results, f
}

func (p *Parallel[T]) instrument(info UnitInfo, u func() T, elapsed *time.Duration) func() T {
	return func() T {
		start := time.Now()
		defer func() { *elapsed = time.Since(start) }()

		if p.cfg.onStart != nil {
			p.cfg.onStart(info)
		}
		return u()
	}
}

// runLocal runs fn on the calling goroutine with its panic captured.
// A runtime.Goexit in fn is not captured: it unwinds the caller, and the
// enclosing scope still joins every spawned unit on the way out.
func (p *Parallel[T]) runLocal(info UnitInfo, fn func()) *failure {
	start := time.Now()
	pe := newPanicError(scope.Catch(func() {
		if p.cfg.onStart != nil {
			p.cfg.onStart(info)
		}
		fn()
	}))
	p.done(info, pe, time.Since(start))

	if pe == nil {
		return nil
	}
	return &failure{unit: info, pe: pe}
}

func (p *Parallel[T]) done(info UnitInfo, pe *PanicError, d time.Duration) {
	if pe != nil {
		p.cfg.logger.Warn("unit failed",
			slog.String("unit", info.String()),
			slog.String("placement", info.Placement.String()),
			slog.Duration("elapsed", d),
			slog.String("panic", describe(pe)),
		)
	} else {
		p.cfg.logger.Debug("unit finished",
			slog.String("unit", info.String()),
			slog.String("placement", info.Placement.String()),
			slog.Duration("elapsed", d),
		)
	}

	if p.cfg.onDone != nil {
		p.cfg.onDone(info, pe, d)
	}
}

func (p *Parallel[T]) discard(f *failure) {
	p.cfg.logger.Debug("panic superseded",
		slog.String("unit", f.unit.String()),
		slog.String("panic", describe(f.pe)),
	)
}

func (p *Parallel[T]) raise(f *failure) {
	p.cfg.logger.Debug("re-raising panic", slog.String("unit", f.unit.String()))

	switch {
	case p.cfg.panicStack:
		panic(f.pe)
	case f.pe.Goexit:
		runtime.Goexit()
	default:
		panic(f.pe.Value)
	}
}

func (p *Parallel[T]) scopeOptions() []scope.Option {
	if p.cfg.lockOSThread {
		return []scope.Option{scope.WithLockOSThread()}
	}
	return nil
}

func (f *failure) err() error {
	return &UnitError{Unit: f.unit, Err: f.pe}
}

func describe(pe *PanicError) string {
	if pe.Goexit {
		return "runtime.Goexit"
	}
	return fmt.Sprint(pe.Value)
}
