package ephem

import (
	"errors"
	"fmt"
	"strings"

	pp "github.com/soniakeys/meeus/v3/planetposition"
)

var (
	// ErrUnknownBody is returned when a name does not match any Body.
	ErrUnknownBody = errors.New("unknown body")

	// ErrUnsupportedBody is returned for a body whose ephemeris data was not
	// loaded.
	ErrUnsupportedBody = errors.New("unsupported body")
)

// Body is a solar system body the provider can locate.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
)

// AllBodies lists every Body in display order.
var AllBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune}

var bodyNames = map[Body]string{
	Sun:     "sun",
	Moon:    "moon",
	Mercury: "mercury",
	Venus:   "venus",
	Mars:    "mars",
	Jupiter: "jupiter",
	Saturn:  "saturn",
	Uranus:  "uranus",
	Neptune: "neptune",
}

// vsop87Index maps planets to their VSOP87 data file index.
var vsop87Index = map[Body]int{
	Mercury: pp.Mercury,
	Venus:   pp.Venus,
	Mars:    pp.Mars,
	Jupiter: pp.Jupiter,
	Saturn:  pp.Saturn,
	Uranus:  pp.Uranus,
	Neptune: pp.Neptune,
}

// orbitalPeriodDays is the sidereal period of each planet.
var orbitalPeriodDays = map[Body]float64{
	Mercury: 87.969,
	Venus:   224.701,
	Mars:    686.980,
	Jupiter: 4332.589,
	Saturn:  10759.22,
	Uranus:  30685.4,
	Neptune: 60189.0,
}

// ParseBody returns the Body with the given name, ignoring case.
func ParseBody(name string) (Body, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range bodyNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

func (b Body) String() string {
	if n, ok := bodyNames[b]; ok {
		return n
	}
	return fmt.Sprintf("body(%d)", int(b))
}

// Title is the display name, e.g. "Mars".
func (b Body) Title() string {
	s := b.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsPlanet reports whether b orbits the Sun and needs VSOP87 data.
func (b Body) IsPlanet() bool {
	_, ok := vsop87Index[b]
	return ok
}

// OrbitalPeriodDays returns the sidereal orbital period of a planet.
func (b Body) OrbitalPeriodDays() (float64, bool) {
	d, ok := orbitalPeriodDays[b]
	return d, ok
}

func (b Body) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Body) UnmarshalText(text []byte) error {
	parsed, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// StandardAltitude is the geometric altitude of the body's centre, in
// degrees, at apparent rise and set. It folds in refraction, the Sun's
// semidiameter and the Moon's mean parallax.
func StandardAltitude(b Body) float64 {
	switch b {
	case Sun:
		return -0.8333
	case Moon:
		return 0.125
	default:
		return -0.5667
	}
}
