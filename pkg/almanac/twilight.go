package almanac

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/timetricks"
)

// Light is how dark the sky is, judged by the altitude of the Sun.
type Light int

const (
	Night Light = iota
	Astronomical
	Nautical
	Civil
	Daylight
)

var lightNames = map[Light]string{
	Night:        "night",
	Astronomical: "astronomical twilight",
	Nautical:     "nautical twilight",
	Civil:        "civil twilight",
	Daylight:     "daylight",
}

func (l Light) String() string {
	if s, ok := lightNames[l]; ok {
		return s
	}
	return "invalid"
}

var ErrUnknownLight = errors.New("unknown light level")

// ParseLight accepts a light level's name or its first word, e.g. "nautical".
func ParseLight(name string) (Light, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for l, s := range lightNames {
		if name == s || name == strings.Fields(s)[0] {
			return l, nil
		}
	}
	return Night, fmt.Errorf("%w: %q", ErrUnknownLight, name)
}

func (l Light) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Threshold is the solar altitude in degrees at which l begins. Night has
// no lower bound.
func (l Light) Threshold() float64 {
	switch l {
	case Astronomical:
		return -18
	case Nautical:
		return -12
	case Civil:
		return -6
	case Daylight:
		return ephem.StandardAltitude(ephem.Sun)
	default:
		return -90
	}
}

// LightAt classifies a solar altitude.
func LightAt(altitude float64) Light {
	for l := Daylight; l > Night; l-- {
		if altitude >= l.Threshold() {
			return l
		}
	}
	return Night
}

// Twilight is when the Sun crosses one light level's threshold on a day.
// Dawn or Dusk is nil when the crossing does not happen, as in a summer
// night that never gets astronomically dark.
type Twilight struct {
	Light Light      `json:"light"`
	Dawn  *time.Time `json:"dawn"`
	Dusk  *time.Time `json:"dusk"`
}

// Twilights returns the civil, nautical and astronomical twilights and the
// sunrise and sunset of the observer's calendar day containing t.
func (a *Almanac) Twilights(t time.Time) ([]Twilight, error) {
	start, end := timetricks.DayBounds(t.In(a.Observer().Location))
	w, err := search.NewWindow(start, end)
	if err != nil {
		return nil, err
	}

	f := a.eph.Altitude(ephem.Sun)
	var ret []Twilight
	for _, l := range []Light{Daylight, Civil, Nautical, Astronomical} {
		events, err := search.FindCrossings(f, w, l.Threshold(), a.resolution)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", l, err)
		}
		tw := Twilight{Light: l}
		for i := range events {
			e := events[i]
			if e.Kind == search.RisingEdge && tw.Dawn == nil {
				tw.Dawn = &e.Time
			}
			if e.Kind == search.FallingEdge && tw.Dusk == nil {
				tw.Dusk = &e.Time
			}
		}
		ret = append(ret, tw)
	}
	return ret, nil
}

// Light returns the state of the sky at t.
func (a *Almanac) Light(t time.Time) (Light, error) {
	alt, err := a.eph.Altitude(ephem.Sun)(t)
	if err != nil {
		return Night, fmt.Errorf("failed to get solar altitude: %w", err)
	}
	return LightAt(alt), nil
}
