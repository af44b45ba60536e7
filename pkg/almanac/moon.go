package almanac

import (
	"fmt"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
)

// waxingStep is how far ahead the illumination is compared to tell waxing
// from waning.
const waxingStep = time.Hour

// MoonPhaseName names the phase of the Moon from its illuminated fraction.
func MoonPhaseName(illumination float64, waxing bool) string {
	switch {
	case illumination < 0.01:
		return "New Moon"
	case illumination > 0.99:
		return "Full Moon"
	case illumination >= 0.49 && illumination <= 0.51:
		if waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case illumination < 0.5:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// MoonPhases is the state of the Moon at one instant and its next principal
// phases.
type MoonPhases struct {
	Name         string    `json:"phase"`
	Illumination float64   `json:"illumination"`
	Waxing       bool      `json:"waxing"`
	NewMoon      time.Time `json:"next_new_moon"`
	FirstQuarter time.Time `json:"next_first_quarter"`
	FullMoon     time.Time `json:"next_full_moon"`
	LastQuarter  time.Time `json:"next_last_quarter"`

	Eclipse *ephem.LunarEclipse `json:"next_lunar_eclipse,omitempty"`
}

// MoonPhases describes the Moon at t.
func (a *Almanac) MoonPhases(t time.Time) (MoonPhases, error) {
	now, err := a.eph.Position(ephem.Moon, t)
	if err != nil {
		return MoonPhases{}, fmt.Errorf("failed to locate the moon: %w", err)
	}
	later, err := a.eph.Position(ephem.Moon, t.Add(waxingStep))
	if err != nil {
		return MoonPhases{}, fmt.Errorf("failed to locate the moon: %w", err)
	}

	waxing := later.Illumination > now.Illumination
	loc := a.Observer().Location
	phases := MoonPhases{
		Name:         MoonPhaseName(now.Illumination, waxing),
		Illumination: now.Illumination,
		Waxing:       waxing,
		NewMoon:      ephem.NextLunarPhase(ephem.NewMoon, t).In(loc),
		FirstQuarter: ephem.NextLunarPhase(ephem.FirstQuarter, t).In(loc),
		FullMoon:     ephem.NextLunarPhase(ephem.FullMoon, t).In(loc),
		LastQuarter:  ephem.NextLunarPhase(ephem.LastQuarter, t).In(loc),
	}
	if e, ok := ephem.NextLunarEclipse(t); ok {
		e.Time = e.Time.In(loc)
		phases.Eclipse = &e
	}
	return phases, nil
}
