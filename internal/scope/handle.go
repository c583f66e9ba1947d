package scope

// Handle is the join handle of a goroutine started by [Spawn].
type Handle[T any] struct {
	done    chan struct{}
	res     chan T
	failure *Failure
}

// Join blocks until the goroutine has terminated and returns the failure
// it captured, or nil if the function returned normally.
func (h *Handle[T]) Join() *Failure {
	<-h.done
	return h.failure
}

// Recv returns the goroutine's result. It must only be called after Join
// reported no failure; the value is then already buffered and Recv does
// not block.
func (h *Handle[T]) Recv() T {
	return <-h.res
}

// Done returns a channel that is closed when the goroutine terminates.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}
