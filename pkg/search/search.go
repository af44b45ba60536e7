// Package search finds the instants at which a slowly varying function of
// time crosses a threshold or reaches an extremum.
//
// The window is sampled at a fixed resolution and each bracketing pair of
// samples is refined by bisection. Two crossings closer together than one
// resolution step are seen as at most one; pass a smaller resolution when
// that matters. Samples that fail or return NaN are gaps: no event is inferred
// across them.
//
// Searches hold no state and are safe to run concurrently, provided each
// caller's SampleFunc is.
package search

import (
	"fmt"
	"math"
	"time"
)

// toleranceDivisor sets the default refinement tolerance as a fraction of the
// resolution.
const toleranceDivisor = 60

// Config describes one search.
type Config struct {
	// Resolution is the sampling step. Required.
	Resolution time.Duration
	// Threshold is the level crossings are measured against.
	Threshold float64
	// Tolerance is the bracket width at which refinement stops. Zero means
	// Resolution/60.
	Tolerance time.Duration
	// Mode is used by Search.
	Mode Mode
	// Refine enables golden-section refinement of extrema below the
	// sampling resolution.
	Refine bool
}

// FindCrossings returns every crossing of threshold by f within w, in time
// order.
func FindCrossings(f SampleFunc, w Window, threshold float64, resolution time.Duration) ([]Event, error) {
	return Config{Resolution: resolution, Threshold: threshold}.FindCrossings(f, w)
}

// FindExtremum returns the sampled global maximum or minimum of f within w.
func FindExtremum(f SampleFunc, w Window, resolution time.Duration, seek Seek) (Event, error) {
	return Config{Resolution: resolution}.FindExtremum(f, w, seek)
}

// Search runs FindCrossings or FindExtrema depending on c.Mode.
func (c Config) Search(f SampleFunc, w Window) ([]Event, error) {
	switch c.Mode {
	case Crossing:
		return c.FindCrossings(f, w)
	case Extremum:
		return c.FindExtrema(f, w)
	default:
		return nil, fmt.Errorf("unknown search mode %d", c.Mode)
	}
}

// FindCrossings returns every crossing of c.Threshold by f within w.
func (c Config) FindCrossings(f SampleFunc, w Window) ([]Event, error) {
	if err := c.validate(w); err != nil {
		return nil, err
	}
	samples := sampleGrid(f, w, c.Resolution)
	tol := c.tolerance()

	var (
		events []Event
		last   = -1 // last sample strictly off the threshold, -1 after a gap
	)
	for i, s := range samples {
		if !s.ok {
			last = -1
			continue
		}

		// A start that sits exactly on the threshold counts when the next
		// sample moves away from it.
		if i == 0 && s.v == c.Threshold {
			if len(samples) > 1 && samples[1].ok && samples[1].v != c.Threshold {
				kind := RisingEdge
				if samples[1].v < c.Threshold {
					kind = FallingEdge
				}
				events = append(events, Event{Time: s.t, Kind: kind, Value: s.v})
			}
			continue
		}

		// Samples on the threshold belong to neither side; the bracket spans
		// them.
		if s.v == c.Threshold {
			continue
		}
		if last >= 0 && (samples[last].v > c.Threshold) != (s.v > c.Threshold) {
			t, v := bisect(f, samples[last], s, c.Threshold, tol)
			kind := RisingEdge
			if samples[last].v > c.Threshold {
				kind = FallingEdge
			}
			events = append(events, Event{Time: t, Kind: kind, Value: v})
		}
		last = i
	}
	return events, nil
}

// FindExtremum returns the global extremum of f over the sampled grid. Flat
// regions report their earliest sample.
func (c Config) FindExtremum(f SampleFunc, w Window, seek Seek) (Event, error) {
	if err := c.validate(w); err != nil {
		return Event{}, err
	}
	samples := sampleGrid(f, w, c.Resolution)

	best := -1
	for i, s := range samples {
		if !s.ok {
			continue
		}
		if best < 0 || seek.better(s.v, samples[best].v) {
			best = i
		}
	}
	if best < 0 {
		return Event{}, fmt.Errorf("%w: no sample in window could be evaluated", ErrSampleUndefined)
	}

	t, v := samples[best].t, samples[best].v
	if c.Refine {
		t, v = c.refine(f, w, samples[best], seek)
	}
	return Event{Time: t, Kind: seek.kind(), Value: v}, nil
}

// FindExtrema returns every local maximum and minimum of f within w. Samples
// on either end of the window are never extrema since their other neighbour
// is unknown.
func (c Config) FindExtrema(f SampleFunc, w Window) ([]Event, error) {
	if err := c.validate(w); err != nil {
		return nil, err
	}
	samples := sampleGrid(f, w, c.Resolution)

	var (
		events    []Event
		lastDir   int // direction of the last non-flat step, 0 after a gap
		candidate int // first sample of the current plateau
	)
	for i := 0; i+1 < len(samples); i++ {
		a, b := samples[i], samples[i+1]
		if !a.ok || !b.ok {
			lastDir = 0
			continue
		}
		var dir int
		switch {
		case b.v > a.v:
			dir = 1
		case b.v < a.v:
			dir = -1
		default:
			continue
		}

		if lastDir != 0 && dir != lastDir {
			seek := Maximum
			if lastDir < 0 {
				seek = Minimum
			}
			t, v := samples[candidate].t, samples[candidate].v
			if c.Refine {
				t, v = c.refine(f, w, samples[candidate], seek)
			}
			events = append(events, Event{Time: t, Kind: seek.kind(), Value: v})
		}
		lastDir = dir
		candidate = i + 1
	}
	return events, nil
}

func (c Config) validate(w Window) error {
	if err := w.validate(); err != nil {
		return err
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: %s is not positive", ErrInvalidResolution, c.Resolution)
	}
	if c.Resolution > w.Duration() {
		return fmt.Errorf("%w: %s is longer than the %s window",
			ErrInvalidResolution, c.Resolution, w.Duration())
	}
	return nil
}

func (c Config) tolerance() time.Duration {
	tol := c.Tolerance
	if tol <= 0 {
		tol = c.Resolution / toleranceDivisor
	}
	if tol <= 0 {
		tol = time.Nanosecond
	}
	return tol
}

// sample is one evaluation of a SampleFunc.
type sample struct {
	t  time.Time
	v  float64
	ok bool
}

func evaluate(f SampleFunc, t time.Time) sample {
	v, err := f(t)
	return sample{t: t, v: v, ok: err == nil && !math.IsNaN(v)}
}

// sampleGrid evaluates f every step from w.Start, always including w.End.
func sampleGrid(f SampleFunc, w Window, step time.Duration) []sample {
	n := int(w.Duration() / step)
	samples := make([]sample, 0, n+2)
	for i := 0; i <= n; i++ {
		samples = append(samples, evaluate(f, w.Start.Add(time.Duration(i)*step)))
	}
	if last := samples[len(samples)-1].t; last.Before(w.End) {
		samples = append(samples, evaluate(f, w.End))
	}
	return samples
}

// bisect narrows the bracket [a, b], whose ends lie strictly on opposite
// sides of threshold, until it is shorter than tol. A failed sample inside the
// bracket stops refinement early.
func bisect(f SampleFunc, a, b sample, threshold float64, tol time.Duration) (time.Time, float64) {
	loAbove := a.v > threshold
	for b.t.Sub(a.t) > tol {
		mid := evaluate(f, a.t.Add(b.t.Sub(a.t)/2))
		if !mid.ok {
			break
		}
		if mid.v == threshold {
			return mid.t, mid.v
		}
		if (mid.v > threshold) == loAbove {
			a = mid
		} else {
			b = mid
		}
	}
	t := a.t.Add(b.t.Sub(a.t) / 2)
	if s := evaluate(f, t); s.ok {
		return t, s.v
	}
	// Report the bracket end nearest the threshold rather than a value that
	// was never sampled.
	if math.Abs(b.v-threshold) < math.Abs(a.v-threshold) {
		return b.t, b.v
	}
	return a.t, a.v
}

// invPhi is 1/φ, the golden-section step ratio.
var invPhi = (math.Sqrt(5) - 1) / 2

// refine runs a golden-section search within one resolution step either side
// of best. The refined point is only kept if it beats the sampled one.
func (c Config) refine(f SampleFunc, w Window, best sample, seek Seek) (time.Time, float64) {
	lo, hi := best.t.Add(-c.Resolution), best.t.Add(c.Resolution)
	if lo.Before(w.Start) {
		lo = w.Start
	}
	if hi.After(w.End) {
		hi = w.End
	}
	tol := c.tolerance()

	span := func() time.Duration { return hi.Sub(lo) }
	x1 := evaluate(f, hi.Add(-time.Duration(float64(span())*invPhi)))
	x2 := evaluate(f, lo.Add(time.Duration(float64(span())*invPhi)))
	for span() > tol {
		if !x1.ok || !x2.ok {
			return best.t, best.v
		}
		if seek.better(x1.v, x2.v) || x1.v == x2.v {
			hi = x2.t
			x2 = x1
			x1 = evaluate(f, hi.Add(-time.Duration(float64(span())*invPhi)))
		} else {
			lo = x1.t
			x1 = x2
			x2 = evaluate(f, lo.Add(time.Duration(float64(span())*invPhi)))
		}
	}

	got := evaluate(f, lo.Add(span()/2))
	if got.ok && seek.better(got.v, best.v) {
		return got.t, got.v
	}
	return best.t, best.v
}
