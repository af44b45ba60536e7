package ephem

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/eclipse"
	"github.com/soniakeys/meeus/v3/moonphase"
)

// SynodicMonthDays is the mean length of a lunation.
const SynodicMonthDays = 29.530588853

// LunarPhase is one of the four principal phases of the Moon.
type LunarPhase int

const (
	NewMoon LunarPhase = iota
	FirstQuarter
	FullMoon
	LastQuarter
)

var lunarPhaseFuncs = map[LunarPhase]func(year float64) float64{
	NewMoon:      moonphase.New,
	FirstQuarter: moonphase.First,
	FullMoon:     moonphase.Full,
	LastQuarter:  moonphase.Last,
}

func (l LunarPhase) String() string {
	switch l {
	case NewMoon:
		return "new moon"
	case FirstQuarter:
		return "first quarter"
	case FullMoon:
		return "full moon"
	case LastQuarter:
		return "last quarter"
	default:
		return fmt.Sprintf("phase(%d)", int(l))
	}
}

// NextLunarPhase returns the first instant after t at which the Moon reaches
// phase, in UTC.
func NextLunarPhase(phase LunarPhase, t time.Time) time.Time {
	fn, ok := lunarPhaseFuncs[phase]
	if !ok {
		fn = moonphase.New
	}

	year := decimalYear(t)
	for {
		// moonphase returns the phase nearest to the decimal year given.
		got := jdeToTime(fn(year))
		if got.After(t) {
			return got
		}
		year += SynodicMonthDays / 365.25
	}
}

// maxEclipseLunations bounds the eclipse search. Every year has at least two
// lunar eclipses counting penumbral ones.
const maxEclipseLunations = 24

// LunarEclipse is an eclipse of the Moon at its greatest phase.
type LunarEclipse struct {
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind"`
	Magnitude float64   `json:"magnitude"`
}

var eclipseKinds = map[int]string{
	eclipse.Penumbral: "penumbral",
	eclipse.Umbral:    "partial",
	eclipse.Total:     "total",
}

// NextLunarEclipse returns the first lunar eclipse whose greatest phase is
// after t, in UTC.
func NextLunarEclipse(t time.Time) (LunarEclipse, bool) {
	year := decimalYear(t)
	for i := 0; i < maxEclipseLunations; i++ {
		// eclipse.Lunar looks at the full moon nearest the decimal year.
		kind, jmax, _, _, _, mag, _, _, _ := eclipse.Lunar(year)
		year += SynodicMonthDays / 365.25
		if kind == eclipse.None {
			continue
		}
		if at := jdeToTime(jmax); at.After(t) {
			return LunarEclipse{Time: at, Kind: eclipseKinds[kind], Magnitude: mag}, true
		}
	}
	return LunarEclipse{}, false
}

func decimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}
