// Package clock provides an injectable time source so components that
// depend on the current time (price cache TTLs, session timestamps) can be
// tested deterministically.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now returns the function's result.
func (f Func) Now() time.Time {
	return f()
}
