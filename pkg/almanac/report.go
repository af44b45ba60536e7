package almanac

import (
	"fmt"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/timetricks"
)

// State is ON while a body is above the horizon.
type State string

const (
	On  State = "ON"
	Off State = "OFF"
)

// Culmination is the highest or lowest point of a body on a day.
type Culmination struct {
	Time     time.Time `json:"time"`
	Altitude float64   `json:"altitude"`
}

// Transit is a meridian passage. The upper one is a local maximum of
// altitude.
type Transit struct {
	Time     time.Time `json:"time"`
	Altitude float64   `json:"altitude"`
	Upper    bool      `json:"upper"`
}

// Apsis is a perihelion or aphelion.
type Apsis struct {
	Time     time.Time `json:"time"`
	Distance float64   `json:"distance_au"`
}

// Report is everything known about one body for an observer at an instant.
type Report struct {
	Body     ephem.Body     `json:"body"`
	State    State          `json:"state"`
	Position ephem.Position `json:"position"`
	Rise     *time.Time     `json:"rise"`
	Set      *time.Time     `json:"set"`
	Highest  Culmination    `json:"highest"`
	Lowest   Culmination    `json:"lowest"`
	Transits []Transit      `json:"transits"`

	Light      *Light      `json:"light,omitempty"`
	Twilight   []Twilight  `json:"twilight,omitempty"`
	Moon       *MoonPhases `json:"moon,omitempty"`
	Perihelion *Apsis      `json:"perihelion,omitempty"`
	Aphelion   *Apsis      `json:"aphelion,omitempty"`
}

// Report builds the report of b at t. Culminations are for the observer's
// calendar day containing t; every time is rounded to the minute in the
// observer's location.
func (a *Almanac) Report(b ephem.Body, t time.Time) (*Report, error) {
	if err := a.check(b); err != nil {
		return nil, err
	}
	loc := a.Observer().Location

	pos, err := a.eph.Position(b, t)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", b, err)
	}
	pos.Time = pos.Time.In(loc)

	r := &Report{Body: b, State: Off, Position: pos}
	if pos.Altitude > 0 {
		r.State = On
	}

	rise, set, err := a.NextRiseSet(b, t)
	if err != nil {
		return nil, err
	}
	r.Rise, r.Set = localMinute(rise, loc), localMinute(set, loc)

	start, end := timetricks.DayBounds(t.In(loc))
	day, err := search.NewWindow(start, end)
	if err != nil {
		return nil, err
	}
	high, low, err := a.Culminations(b, day)
	if err != nil {
		return nil, err
	}
	r.Highest = Culmination{timetricks.NearestMinute(high.Time).In(loc), high.Value}
	r.Lowest = Culmination{timetricks.NearestMinute(low.Time).In(loc), low.Value}

	transits, err := a.Transits(b, day)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s transits: %w", b, err)
	}
	r.Transits = []Transit{}
	for _, e := range transits {
		r.Transits = append(r.Transits, Transit{
			Time:     timetricks.NearestMinute(e.Time).In(loc),
			Altitude: e.Value,
			Upper:    e.Kind == search.LocalMaximum,
		})
	}

	switch {
	case b == ephem.Sun:
		light := LightAt(pos.Altitude)
		r.Light = &light
		if r.Twilight, err = a.Twilights(t); err != nil {
			return nil, err
		}
		for i := range r.Twilight {
			r.Twilight[i].Dawn = localMinute(r.Twilight[i].Dawn, loc)
			r.Twilight[i].Dusk = localMinute(r.Twilight[i].Dusk, loc)
		}
	case b == ephem.Moon:
		phases, err := a.MoonPhases(t)
		if err != nil {
			return nil, err
		}
		r.Moon = &phases
	case b.IsPlanet():
		peri, aph, err := a.Apsides(b, t)
		if err != nil {
			return nil, err
		}
		r.Perihelion = &Apsis{timetricks.NearestMinute(peri.Time).In(loc), peri.Value}
		r.Aphelion = &Apsis{timetricks.NearestMinute(aph.Time).In(loc), aph.Value}
	}
	return r, nil
}

// Reports builds the report of every supported body at t, in display order.
func (a *Almanac) Reports(t time.Time) ([]*Report, error) {
	var ret []*Report
	for _, b := range ephem.AllBodies {
		if !a.eph.Supports(b) {
			continue
		}
		r, err := a.Report(b, t)
		if err != nil {
			return nil, err
		}
		ret = append(ret, r)
	}
	return ret, nil
}

func localMinute(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	rounded := timetricks.NearestMinute(*t).In(loc)
	return &rounded
}
