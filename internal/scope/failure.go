package scope

import "runtime"

// Failure describes an abnormal termination captured at a goroutine
// boundary.
type Failure struct {
	// Value is the value passed to panic. It is nil when Goexit is set.
	Value any

	// Stack is the goroutine stack trace at the point of the panic.
	Stack []byte

	// Goexit reports that the function called runtime.Goexit instead of
	// returning or panicking.
	Goexit bool
}

// Catch runs fn on the calling goroutine and returns the panic it raised,
// or nil if fn returned normally. A runtime.Goexit cannot be stopped: it
// keeps unwinding the calling goroutine and Catch never returns.
func Catch(fn func()) (f *Failure) {
	returned := false
	defer recordFailure(&f, &returned)

	fn()
	returned = true
	return nil
}

// recordFailure stores the panic or Goexit that is unwinding the current
// goroutine in *dst. It must be deferred directly so recover takes effect.
func recordFailure(dst **Failure, returned *bool) {
	r := recover()
	if r == nil && *returned {
		return
	}
	*dst = capture(r, r == nil)
}

func capture(v any, goexit bool) *Failure {
	if goexit {
		return &Failure{Goexit: true}
	}

	// 8 KiB is enough for most stack traces. runtime.Stack truncates
	// gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &Failure{
		Value: v,
		Stack: buf[:n],
	}
}
