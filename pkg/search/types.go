package search

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyWindow is returned for a window whose end does not come after
	// its start.
	ErrEmptyWindow = errors.New("empty search window")

	// ErrInvalidResolution is returned when the resolution is not positive or
	// is longer than the window.
	ErrInvalidResolution = errors.New("invalid search resolution")

	// ErrSampleUndefined marks a sample that could not be evaluated. Sample
	// functions may return it (or any other error, or NaN) to leave a gap.
	ErrSampleUndefined = errors.New("sample undefined")
)

// SampleFunc evaluates a scalar at an instant, e.g. the altitude of a body.
type SampleFunc func(t time.Time) (float64, error)

// Window is a closed interval of time to search.
type Window struct {
	Start, End time.Time
}

// NewWindow validates and returns a window.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	return w, w.validate()
}

// WindowFrom returns the window starting at start and lasting d.
func WindowFrom(start time.Time, d time.Duration) (Window, error) {
	return NewWindow(start, start.Add(d))
}

// Duration is the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window, ends included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: %s to %s", ErrEmptyWindow,
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Kind classifies an Event.
type Kind int

const (
	RisingEdge Kind = iota
	FallingEdge
	LocalMinimum
	LocalMaximum
)

func (k Kind) String() string {
	switch k {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	case LocalMinimum:
		return "minimum"
	case LocalMaximum:
		return "maximum"
	default:
		return "invalid"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a threshold crossing or extremum of a SampleFunc.
type Event struct {
	Time  time.Time `json:"time"`
	Kind  Kind      `json:"kind"`
	Value float64   `json:"value"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %.4f", e.Time.Format(time.RFC3339), e.Kind, e.Value)
}

// Mode selects what Search looks for.
type Mode int

const (
	Crossing Mode = iota
	Extremum
)

// Seek selects the extremum FindExtremum looks for.
type Seek int

const (
	Maximum Seek = iota
	Minimum
)

func (s Seek) kind() Kind {
	if s == Minimum {
		return LocalMinimum
	}
	return LocalMaximum
}

// better reports whether a beats b for this seek. Equal values never win, so
// the earliest of a flat region is kept.
func (s Seek) better(a, b float64) bool {
	if s == Minimum {
		return a < b
	}
	return a > b
}
