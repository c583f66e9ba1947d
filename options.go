package parallel

import (
	"fmt"
	"log/slog"
	"time"
)

// Placement tells where a unit of work executed.
type Placement int

const (
	// Spawned units run on their own goroutine.
	Spawned Placement = iota

	// Inline is the unit that runs on the calling goroutine during
	// [Parallel.Run] and [Collect]: the last one submitted.
	Inline

	// Side is the side action passed to [Finish]. It also runs on the
	// calling goroutine but does not contribute to the results.
	Side
)

func (p Placement) String() string {
	switch p {
	case Spawned:
		return "spawned"
	case Inline:
		return "inline"
	case Side:
		return "side"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// UnitInfo identifies a unit of work.
// It is passed to hooks registered via [WithOnStart] and [WithOnDone].
type UnitInfo struct {
	// Index is the submission index of the unit, or -1 for a side action.
	Index int

	Placement Placement
}

func (u UnitInfo) String() string {
	if u.Placement == Side {
		return "side"
	}
	return fmt.Sprintf("unit[%d]", u.Index)
}

type config struct {
	logger       *slog.Logger
	panicStack   bool
	lockOSThread bool
	onStart      func(UnitInfo)
	onDone       func(UnitInfo, *PanicError, time.Duration)
}

// Option configures a [Parallel] builder.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used to report spawning, joining and
// captured panics. By default nothing is logged.
// It panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			panic("parallel: nil logger")
		}
		c.logger = l
	}
}

// WithPanicStack re-raises the chosen failure as a [*PanicError] that
// carries the stack trace of the original panic, instead of re-raising
// the bare panic value.
func WithPanicStack() Option {
	return func(c *config) {
		c.panicStack = true
	}
}

// WithLockOSThread runs every spawned unit on a dedicated OS thread that
// is discarded once the unit finishes. Units running on the calling
// goroutine are not affected.
func WithLockOSThread() Option {
	return func(c *config) {
		c.lockOSThread = true
	}
}

// WithOnStart registers a hook invoked when each unit begins executing.
// The hook runs on the unit's goroutine before the unit itself; a panic
// in the hook counts as a failure of that unit.
func WithOnStart(fn func(UnitInfo)) Option {
	return func(c *config) {
		c.onStart = fn
	}
}

// WithOnDone registers a hook invoked when each unit finishes.
// The hook receives the captured panic (nil on success) and the unit's
// wall-clock duration. It runs on the calling goroutine once per unit:
// first for the unit or side action that ran there, then for the spawned
// units in submission order as they are joined. A panic in the hook
// propagates from the terminal operation once every unit has finished.
func WithOnDone(fn func(UnitInfo, *PanicError, time.Duration)) Option {
	return func(c *config) {
		c.onDone = fn
	}
}
