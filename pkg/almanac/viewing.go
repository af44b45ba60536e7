package almanac

import (
	"fmt"
	"math"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/viewing"
)

// Viewing returns the windows in w during which b is above the horizon and
// the sky is no lighter than sky. Windows shorter than minDuration are
// dropped.
func (a *Almanac) Viewing(b ephem.Body, w search.Window, sky Light, minDuration time.Duration) ([]viewing.Window, error) {
	if err := a.check(b); err != nil {
		return nil, err
	}

	events, startAbove, err := a.crossings(b, w, ephem.StandardAltitude(b))
	if err != nil {
		return nil, err
	}
	up := viewing.Above(events, w, startAbove)
	reasons := []string{fmt.Sprintf("%s is up", b.Title())}

	dark := []viewing.Interval{{Start: w.Start, End: w.End}}
	if sky < Daylight {
		threshold := (sky + 1).Threshold()
		sunEvents, sunAbove, err := a.crossings(ephem.Sun, w, threshold)
		if err != nil {
			return nil, err
		}
		dark = viewing.Below(sunEvents, w, sunAbove)
		reasons = append(reasons, fmt.Sprintf("the sun is below %g°", threshold))
	}
	return viewing.Windows(up, dark, minDuration, reasons...), nil
}

// crossings returns the crossings of altitude by b in w, and whether b starts
// at or above it.
func (a *Almanac) crossings(b ephem.Body, w search.Window, altitude float64) ([]search.Event, bool, error) {
	f := a.eph.Altitude(b)
	events, err := search.FindCrossings(f, w, altitude, a.resolution)
	if err != nil {
		return nil, false, fmt.Errorf("failed to search %s crossings of %g°: %w", b, altitude, err)
	}
	return events, a.startsAbove(f, w, altitude), nil
}

// startsAbove judges the state at w.Start by the first sample of f that can
// be evaluated. Crossings are only found after that sample, so the two agree.
func (a *Almanac) startsAbove(f search.SampleFunc, w search.Window, altitude float64) bool {
	for t := w.Start; t.Before(w.End); t = t.Add(a.resolution) {
		if v, err := f(t); err == nil && !math.IsNaN(v) {
			return v >= altitude
		}
	}
	v, err := f(w.End)
	return err == nil && v >= altitude
}
