package parallel

import (
	"fmt"

	"github.com/baxromumarov/parallel/internal/scope"
)

// PanicError wraps a recovered panic value together with the goroutine
// stack trace captured at the point of the panic.
//
// With [WithPanicStack], the failure chosen by the priority rule is
// re-raised as a *PanicError. The Try terminal operations return it
// wrapped in a [*UnitError].
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string

	// Goexit reports that the unit called runtime.Goexit instead of
	// returning. Value and Stack are empty in that case.
	Goexit bool
}

// Error returns a human-readable representation of the panic,
// including the value and the full stack trace.
func (e *PanicError) Error() string {
	if e.Goexit {
		return "runtime.Goexit called in unit of work"
	}
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it is an error, so that errors.Is
// and errors.As see through a re-raised error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(f *scope.Failure) *PanicError {
	if f == nil {
		return nil
	}
	return &PanicError{
		Value:  f.Value,
		Stack:  string(f.Stack),
		Goexit: f.Goexit,
	}
}

// failure is a captured panic attributed to the unit that raised it.
type failure struct {
	unit UnitInfo
	pe   *PanicError
}

// choose applies the priority rule: the last failure observed while
// joining spawned units wins; the calling goroutine's own failure is
// surfaced only when no spawned unit failed.
func choose(spawned, local *failure) *failure {
	if spawned != nil {
		return spawned
	}
	return local
}
