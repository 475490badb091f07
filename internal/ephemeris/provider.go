// Package ephemeris supplies sun positions for timestamps at a site, and the
// time series the exposure engine steps through.
package ephemeris

import (
	"fmt"
	"time"

	"chosenoffset.com/sunmap/internal/core/shadows"
)

// Provider computes the apparent sun position for an instant at a site
type Provider interface {
	Position(t time.Time, latitude, longitude float64) (shadows.SunPosition, error)
}

// ProviderFunc adapts a plain function to the Provider interface
type ProviderFunc func(t time.Time, latitude, longitude float64) (shadows.SunPosition, error)

// Position calls f
func (f ProviderFunc) Position(t time.Time, latitude, longitude float64) (shadows.SunPosition, error) {
	return f(t, latitude, longitude)
}

// EphemerisError reports that no position could be computed for a timestamp
type EphemerisError struct {
	Time time.Time
	Err  error
}

func (e *EphemerisError) Error() string {
	return fmt.Sprintf("ephemeris failed at %s: %v", e.Time.Format(time.RFC3339), e.Err)
}

func (e *EphemerisError) Unwrap() error {
	return e.Err
}
