package ephemeris

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrEmptySeries is returned when a time range yields no samples
var ErrEmptySeries = errors.New("time series is empty")

// Series is a finite, restartable sequence of timestamps.
// It always starts at Start; End is kept only when IncludeEnd is set and
// End falls exactly on a step.
type Series struct {
	Start      time.Time
	End        time.Time
	Step       time.Duration
	IncludeEnd bool
	count      int
}

// NewSeries validates the range and returns a series
func NewSeries(start, end time.Time, step time.Duration, includeEnd bool) (*Series, error) {
	if step <= 0 {
		return nil, fmt.Errorf("invalid step %s: must be positive", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	span := end.Sub(start)
	count := int(span/step) + 1
	if !includeEnd && span%step == 0 {
		count--
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: start %s, end %s, step %s", ErrEmptySeries, start.Format(time.RFC3339), end.Format(time.RFC3339), step)
	}

	return &Series{Start: start, End: end, Step: step, IncludeEnd: includeEnd, count: count}, nil
}

// Len returns the number of timestamps
func (s *Series) Len() int {
	return s.count
}

// At returns the i-th timestamp
func (s *Series) At(i int) time.Time {
	return s.Start.Add(time.Duration(i) * s.Step)
}

// All yields every timestamp in order. Each call starts again from Start.
func (s *Series) All() iter.Seq2[int, time.Time] {
	return func(yield func(int, time.Time) bool) {
		for i := 0; i < s.count; i++ {
			if !yield(i, s.At(i)) {
				return
			}
		}
	}
}
