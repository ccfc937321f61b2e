// Package scroll decides when a chat log may force its view to the bottom.
//
// A Sensor reads a Region's geometry, a State caches the last reading plus a
// one-shot manual override, and an Interceptor wraps the host's scroll
// function so the forced scroll only runs when the State allows it.
package scroll

import (
	"errors"
	"fmt"
)

// DefaultTolerance is how many rows short of the end still count as the bottom.
const DefaultTolerance Tolerance = 1

// ErrNegativeTolerance is returned when a Sensor is built with a tolerance below zero.
var ErrNegativeTolerance = errors.New("scroll: tolerance must not be negative")

// Tolerance is a distance in rows.
type Tolerance int

// Region is a scrollable viewport owned by the host.
// Implementations are looked up on demand and never cached across renders.
type Region interface {
	ScrollOffset() int  // first visible row
	ContentExtent() int // total rows of content
	VisibleExtent() int // rows shown at once
}

// Geometry is a fixed Region reading.
type Geometry struct {
	Offset  int
	Content int
	Visible int
}

func (g Geometry) ScrollOffset() int  { return g.Offset }
func (g Geometry) ContentExtent() int { return g.Content }
func (g Geometry) VisibleExtent() int { return g.Visible }

// IsAtBottom reports whether r is within tol rows of its last row.
// Content shorter than the viewport is always at bottom. A nil region has no
// opinion and reports false; callers choose their own default.
func IsAtBottom(r Region, tol Tolerance) bool {
	if r == nil {
		return false
	}
	remaining := r.ContentExtent() - (r.ScrollOffset() + r.VisibleExtent())
	return remaining <= int(tol)
}

// Sensor applies a fixed tolerance.
type Sensor struct {
	tol Tolerance
}

// NewSensor returns a Sensor using tol.
func NewSensor(tol Tolerance) (Sensor, error) {
	if tol < 0 {
		return Sensor{}, fmt.Errorf("%w: %d", ErrNegativeTolerance, tol)
	}
	return Sensor{tol: tol}, nil
}

// Tolerance returns the sensor's tolerance.
func (s Sensor) Tolerance() Tolerance {
	return s.tol
}

// Probe reads r when found is true. known is false when the region could not
// be resolved, in which case atBottom carries no information.
func (s Sensor) Probe(r Region, found bool) (atBottom, known bool) {
	if !found || r == nil {
		return false, false
	}
	return IsAtBottom(r, s.tol), true
}
