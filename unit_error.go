package parallel

import (
	"errors"
	"fmt"
)

// UnitError wraps the failure chosen by [Parallel.TryRun] or [TryFinish]
// together with the [UnitInfo] of the unit that produced it.
type UnitError struct {
	Unit UnitInfo
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s (%s) failed: %v", e.Unit, e.Unit.Placement, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// IsUnitError reports whether err (or any error in its chain) is a [*UnitError].
func IsUnitError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UnitError
	return errors.As(err, &ue)
}

// UnitOf extracts the [UnitInfo] from the first [*UnitError] in err's chain.
// Returns false if no UnitError is found.
func UnitOf(err error) (UnitInfo, bool) {
	if err == nil {
		return UnitInfo{}, false
	}

	var ue *UnitError
	if errors.As(err, &ue) {
		return ue.Unit, true
	}
	return UnitInfo{}, false
}

// CauseOf unwraps the first [*UnitError] in err's chain and returns its
// underlying cause. If err is not a UnitError, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var ue *UnitError
	if errors.As(err, &ue) {
		return ue.Err
	}

	return err
}

// PanicOf extracts the first [*PanicError] in err's chain.
func PanicOf(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
