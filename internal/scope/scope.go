// Package scope implements scoped goroutines: goroutines spawned inside
// [Run] are always joined before Run returns, on every exit path.
//
// Each spawned goroutine is represented by a [Handle] that can be joined
// individually and that carries the goroutine's result over a dedicated
// single-producer/single-consumer channel.
package scope

import (
	"runtime"
	"sync"

	"github.com/tevino/abool"
)

// Scope owns a set of spawned goroutines. It is valid only for the
// duration of the [Run] call that created it.
type Scope struct {
	wg   sync.WaitGroup
	open *abool.AtomicBool
	cfg  config
}

type config struct {
	lockOSThread bool
}

// Option configures a [Scope].
type Option func(*config)

// WithLockOSThread wires every spawned goroutine to its own OS thread.
// The goroutine never unlocks, so the thread is discarded when the
// goroutine exits and is not reused by the runtime.
func WithLockOSThread() Option {
	return func(c *config) {
		c.lockOSThread = true
	}
}

// Run creates a scope, invokes fn with it and waits for every goroutine
// spawned into the scope before returning. The wait happens even when fn
// panics or calls runtime.Goexit; the panic continues after the join.
func Run(fn func(s *Scope), opts ...Option) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Scope{
		open: abool.NewBool(true),
		cfg:  cfg,
	}

	defer func() {
		// Close before waiting so a goroutine that leaked the scope
		// cannot add to wg concurrently with Wait.
		s.open.UnSet()
		s.wg.Wait()
	}()

	fn(s)
}

// Spawn starts fn on a new goroutine owned by s and returns its handle.
// It panics if s has already been shut down.
func Spawn[T any](s *Scope, fn func() T) *Handle[T] {
	if !s.open.IsSet() {
		panic("scope: Spawn called after scope shutdown")
	}

	h := &Handle[T]{
		done: make(chan struct{}),
		res:  make(chan T, 1),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(h.done)

		if s.cfg.lockOSThread {
			runtime.LockOSThread()
		}

		returned := false
		defer recordFailure(&h.failure, &returned)

		h.res <- fn()
		returned = true
	}()

	return h
}
