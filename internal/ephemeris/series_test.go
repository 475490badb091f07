package ephemeris

import (
	"errors"
	"testing"
	"time"
)

func TestSeriesInclusiveEnd(t *testing.T) {
	start := time.Date(2024, 6, 21, 6, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	s, err := NewSeries(start, end, 15*time.Minute, true)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("Expected 5 samples, got %d", s.Len())
	}

	var got []time.Time
	for _, ts := range s.All() {
		got = append(got, ts)
	}
	if !got[0].Equal(start) || !got[4].Equal(end) {
		t.Errorf("Expected samples from %s to %s, got %s to %s", start, end, got[0], got[4])
	}

	// Restartable: a second pass yields the same sequence
	n := 0
	for i, ts := range s.All() {
		if !ts.Equal(got[i]) {
			t.Errorf("Second pass sample %d = %s, want %s", i, ts, got[i])
		}
		n++
	}
	if n != 5 {
		t.Errorf("Expected 5 samples on second pass, got %d", n)
	}
}

func TestSeriesExclusiveEnd(t *testing.T) {
	start := time.Date(2024, 6, 21, 6, 0, 0, 0, time.UTC)

	s, err := NewSeries(start, start.Add(time.Hour), 15*time.Minute, false)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 samples, got %d", s.Len())
	}

	// End off the step grid is never reached either way
	s, err = NewSeries(start, start.Add(50*time.Minute), 15*time.Minute, false)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 samples, got %d", s.Len())
	}
}

func TestSeriesSingleInstant(t *testing.T) {
	start := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	s, err := NewSeries(start, start, time.Minute, true)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 sample, got %d", s.Len())
	}

	_, err = NewSeries(start, start, time.Minute, false)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}
}

func TestSeriesInvalid(t *testing.T) {
	start := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	if _, err := NewSeries(start, start.Add(time.Hour), 0, true); err == nil {
		t.Error("Expected error for zero step")
	}
	if _, err := NewSeries(start, start.Add(-time.Hour), time.Minute, true); err == nil {
		t.Error("Expected error for end before start")
	}
}
