// Package almanac answers rise, set, twilight, culmination and apsis
// questions by running searches over ephemeris sample functions.
package almanac

import (
	"fmt"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/search"
)

const (
	// DefaultResolution samples once a minute, as a day-long scan always has.
	DefaultResolution = time.Minute

	// riseSetHorizon is how far ahead NextRiseSet looks. The Moon can skip a
	// rise or set on a given calendar day.
	riseSetHorizon = 48 * time.Hour

	// apsisSteps is the number of samples taken over one orbit.
	apsisSteps = 720
	// apsisMargin is how many extra samples the apsis search takes past one
	// orbit.
	apsisMargin = 4
)

// Ephemeris locates bodies for one observer. *ephem.Provider implements it.
type Ephemeris interface {
	Observer() ephem.Observer
	Supports(b ephem.Body) bool
	Position(b ephem.Body, t time.Time) (ephem.Position, error)
	Altitude(b ephem.Body) search.SampleFunc
	HeliocentricDistance(b ephem.Body) search.SampleFunc
}

// Almanac runs event searches against one Ephemeris.
type Almanac struct {
	eph        Ephemeris
	resolution time.Duration
}

// New returns an Almanac sampling at resolution, or DefaultResolution when
// resolution is zero.
func New(eph Ephemeris, resolution time.Duration) *Almanac {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Almanac{eph: eph, resolution: resolution}
}

func (a *Almanac) Observer() ephem.Observer {
	return a.eph.Observer()
}

// Resolution is the sampling step used for rise, set and twilight searches.
func (a *Almanac) Resolution() time.Duration {
	return a.resolution
}

func (a *Almanac) check(b ephem.Body) error {
	if !a.eph.Supports(b) {
		return fmt.Errorf("%w: %s", ephem.ErrUnsupportedBody, b)
	}
	return nil
}

// RiseSet returns every rise (RisingEdge) and set (FallingEdge) of b in w.
func (a *Almanac) RiseSet(b ephem.Body, w search.Window) ([]search.Event, error) {
	if err := a.check(b); err != nil {
		return nil, err
	}
	events, err := search.FindCrossings(a.eph.Altitude(b), w, ephem.StandardAltitude(b), a.resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s rise and set: %w", b, err)
	}
	return events, nil
}

// NextRiseSet returns the first rise and the first set of b after t. Either
// is nil when it does not happen within two days.
func (a *Almanac) NextRiseSet(b ephem.Body, t time.Time) (rise, set *time.Time, err error) {
	w, err := search.WindowFrom(t, riseSetHorizon)
	if err != nil {
		return nil, nil, err
	}
	events, err := a.RiseSet(b, w)
	if err != nil {
		return nil, nil, err
	}
	for i := range events {
		e := events[i]
		if !e.Time.After(t) {
			continue
		}
		if e.Kind == search.RisingEdge && rise == nil {
			rise = &e.Time
		}
		if e.Kind == search.FallingEdge && set == nil {
			set = &e.Time
		}
	}
	return rise, set, nil
}

// Culminations returns the highest and lowest altitude of b in w.
func (a *Almanac) Culminations(b ephem.Body, w search.Window) (highest, lowest search.Event, err error) {
	if err := a.check(b); err != nil {
		return search.Event{}, search.Event{}, err
	}
	c := search.Config{Resolution: a.resolution, Refine: true}
	f := a.eph.Altitude(b)
	if highest, err = c.FindExtremum(f, w, search.Maximum); err != nil {
		return search.Event{}, search.Event{}, fmt.Errorf("failed to find %s maximum altitude: %w", b, err)
	}
	if lowest, err = c.FindExtremum(f, w, search.Minimum); err != nil {
		return search.Event{}, search.Event{}, fmt.Errorf("failed to find %s minimum altitude: %w", b, err)
	}
	return highest, lowest, nil
}

// Transits returns every upper (LocalMaximum) and lower (LocalMinimum)
// meridian passage of b in w.
func (a *Almanac) Transits(b ephem.Body, w search.Window) ([]search.Event, error) {
	if err := a.check(b); err != nil {
		return nil, err
	}
	c := search.Config{Resolution: a.resolution, Mode: search.Extremum, Refine: true}
	return c.Search(a.eph.Altitude(b), w)
}

// Apsides returns the next perihelion and aphelion of a planet after t.
func (a *Almanac) Apsides(b ephem.Body, t time.Time) (perihelion, aphelion search.Event, err error) {
	days, ok := b.OrbitalPeriodDays()
	if !ok {
		return search.Event{}, search.Event{}, fmt.Errorf("%w: %s has no heliocentric orbit", ephem.ErrUnsupportedBody, b)
	}
	if err := a.check(b); err != nil {
		return search.Event{}, search.Event{}, err
	}

	// Local extrema never sit on the window ends, so an apsis just before t
	// is not mistaken for the next one. The margin lets an apsis one period
	// away still have a sample on its far side.
	period := time.Duration(days * float64(24*time.Hour))
	step := period / apsisSteps
	w, err := search.WindowFrom(t, period+apsisMargin*step)
	if err != nil {
		return search.Event{}, search.Event{}, err
	}
	c := search.Config{Resolution: step, Refine: true}
	events, err := c.FindExtrema(a.eph.HeliocentricDistance(b), w)
	if err != nil {
		return search.Event{}, search.Event{}, fmt.Errorf("failed to find %s apsides: %w", b, err)
	}

	var foundPeri, foundAph bool
	for _, e := range events {
		switch {
		case e.Kind == search.LocalMinimum && !foundPeri:
			perihelion, foundPeri = e, true
		case e.Kind == search.LocalMaximum && !foundAph:
			aphelion, foundAph = e, true
		}
	}
	if !foundPeri || !foundAph {
		return search.Event{}, search.Event{}, fmt.Errorf("%w: no %s apsis within one orbit of %s",
			search.ErrSampleUndefined, b, t.Format(time.RFC3339))
	}
	return perihelion, aphelion, nil
}
