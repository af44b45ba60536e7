// Package ephem locates the Sun, Moon and planets for an observer on Earth.
// Positions come from the Meeus algorithms: the solar and lunar theories for
// the Sun and Moon, and VSOP87 for the planets.
package ephem

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata"

	"github.com/soniakeys/meeus/v3/angle"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/elliptic"
	"github.com/soniakeys/meeus/v3/illum"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moon"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/saturnring"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/spencer-p/skydash/pkg/search"
)

const kmPerAU = 149597870.7

// Observer is a place on the Earth matched with its time zone. Longitude is
// positive east.
type Observer struct {
	Name     string
	Lat      float64
	Long     float64
	Height   float64 // metres
	Location *time.Location
}

// DefaultObserver is the site served when no other is configured.
var DefaultObserver = Observer{
	Name:     "Cherbourg",
	Lat:      49.6386,
	Long:     -1.6163,
	Location: locationOrPanic("Europe/Paris"),
}

// Position is where a body appears from an observer at one instant. Angles
// are in degrees, azimuth from north through east.
type Position struct {
	Body         Body      `json:"body"`
	Time         time.Time `json:"time"`
	RA           float64   `json:"right_ascension"`
	Dec          float64   `json:"declination"`
	Distance     float64   `json:"distance_au"`
	Altitude     float64   `json:"altitude"`
	Azimuth      float64   `json:"azimuth"`
	Elongation   float64   `json:"elongation"`
	PhaseAngle   float64   `json:"phase_angle"`
	Illumination float64   `json:"illumination"` // fraction of the disc lit, 0 to 1

	// Magnitude is the apparent visual magnitude of a planet.
	Magnitude *float64 `json:"magnitude,omitempty"`
	// Libration is only known for the Moon, and only with VSOP87 data.
	Libration *Libration `json:"libration,omitempty"`
}

// Libration is the Moon's combined optical and physical libration, in
// degrees.
type Libration struct {
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	PositionAngle float64 `json:"position_angle"` // of the rotation axis
}

// Provider computes positions for one observer. Planet data is loaded once at
// construction and shared read-only, so a Provider is safe for concurrent use.
type Provider struct {
	obs     Observer
	earth   *pp.V87Planet
	planets map[Body]*pp.V87Planet
}

// NewProvider loads VSOP87 files from vsop87Dir for every planet. An empty
// dir gives a provider for the Sun and Moon only.
func NewProvider(obs Observer, vsop87Dir string) (*Provider, error) {
	if obs.Location == nil {
		obs.Location = time.UTC
	}
	p := &Provider{obs: obs, planets: make(map[Body]*pp.V87Planet)}
	if vsop87Dir == "" {
		return p, nil
	}

	earth, err := pp.LoadPlanetPath(pp.Earth, vsop87Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load VSOP87 data for earth from %q: %w", vsop87Dir, err)
	}
	p.earth = earth
	for b, idx := range vsop87Index {
		planet, err := pp.LoadPlanetPath(idx, vsop87Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load VSOP87 data for %s from %q: %w", b, vsop87Dir, err)
		}
		p.planets[b] = planet
	}
	return p, nil
}

// At returns a provider for another observer sharing the loaded data.
func (p *Provider) At(obs Observer) *Provider {
	if obs.Location == nil {
		obs.Location = time.UTC
	}
	return &Provider{obs: obs, earth: p.earth, planets: p.planets}
}

func (p *Provider) Observer() Observer {
	return p.obs
}

// Supports reports whether positions of b can be computed.
func (p *Provider) Supports(b Body) bool {
	switch b {
	case Sun, Moon:
		return true
	default:
		_, ok := p.planets[b]
		return ok
	}
}

// Bodies lists the supported bodies in display order.
func (p *Provider) Bodies() []Body {
	var bodies []Body
	for _, b := range AllBodies {
		if p.Supports(b) {
			bodies = append(bodies, b)
		}
	}
	return bodies
}

// Position returns the full apparent position of b at t.
func (p *Provider) Position(b Body, t time.Time) (Position, error) {
	jd, jde := julianDays(t)
	ra, dec, dist, err := p.equatorial(b, jde)
	if err != nil {
		return Position{}, err
	}
	alt, az := p.horizontal(ra, dec, jd)

	pos := Position{
		Body:         b,
		Time:         t,
		RA:           unit.Angle(ra).Deg(),
		Dec:          dec.Deg(),
		Distance:     dist,
		Altitude:     alt,
		Azimuth:      az,
		Illumination: 1,
	}
	if b == Sun {
		return pos, nil
	}

	sunRA, sunDec, sunDist, err := p.equatorial(Sun, jde)
	if err != nil {
		return Position{}, err
	}
	elong := angle.Sep(unit.Angle(ra), dec, unit.Angle(sunRA), sunDec)
	r := p.solarDistance(b, jde, elong, dist, sunDist)
	i := illum.PhaseAngle(r, dist, sunDist)
	pos.Elongation = elong.Deg()
	pos.PhaseAngle = i.Deg()
	pos.Illumination = base.Illuminated(i)

	switch {
	case b == Moon && p.earth != nil:
		l, lat, axis, _, _ := moon.Physical(jde, p.earth)
		pos.Libration = &Libration{
			Longitude:     l.Deg(),
			Latitude:      lat.Deg(),
			PositionAngle: axis.Deg(),
		}
	case b.IsPlanet():
		mag := p.magnitude(b, jde, r, dist, i)
		pos.Magnitude = &mag
	}
	return pos, nil
}

// Altitude samples the altitude of b in degrees.
func (p *Provider) Altitude(b Body) search.SampleFunc {
	return func(t time.Time) (float64, error) {
		jd, jde := julianDays(t)
		ra, dec, _, err := p.equatorial(b, jde)
		if err != nil {
			return 0, err
		}
		alt, _ := p.horizontal(ra, dec, jd)
		return alt, nil
	}
}

// Illumination samples the illuminated fraction of b.
func (p *Provider) Illumination(b Body) search.SampleFunc {
	return func(t time.Time) (float64, error) {
		pos, err := p.Position(b, t)
		if err != nil {
			return 0, err
		}
		return pos.Illumination, nil
	}
}

// HeliocentricDistance samples the distance of a planet from the Sun in AU.
func (p *Provider) HeliocentricDistance(b Body) search.SampleFunc {
	return func(t time.Time) (float64, error) {
		planet, ok := p.planets[b]
		if !ok {
			return 0, fmt.Errorf("%w: no heliocentric orbit for %s", ErrUnsupportedBody, b)
		}
		_, jde := julianDays(t)
		_, _, r := planet.Position(jde)
		return r, nil
	}
}

// equatorial returns apparent geocentric right ascension, declination and
// distance in AU.
func (p *Provider) equatorial(b Body, jde float64) (unit.RA, unit.Angle, float64, error) {
	switch b {
	case Sun:
		ra, dec := solar.ApparentEquatorial(jde)
		return ra, dec, solar.Radius(base.J2000Century(jde)), nil
	case Moon:
		λ, β, Δ := moonposition.Position(jde)
		Δψ, Δε := nutation.Nutation(jde)
		ε := nutation.MeanObliquity(jde) + Δε
		ra, dec := coord.EclToEq(λ+Δψ, β, ε.Sin(), ε.Cos())
		return ra, dec, Δ / kmPerAU, nil
	}

	planet, ok := p.planets[b]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s (no VSOP87 data loaded)", ErrUnsupportedBody, b)
	}
	ra, dec := elliptic.Position(planet, p.earth, jde)
	return ra, dec, p.geocentricDistance(planet, jde), nil
}

// geocentricDistance is the geometric Earth-planet distance in AU.
func (p *Provider) geocentricDistance(planet *pp.V87Planet, jde float64) float64 {
	l, b, r := planet.Position(jde)
	l0, b0, r0 := p.earth.Position(jde)
	x := r*b.Cos()*l.Cos() - r0*b0.Cos()*l0.Cos()
	y := r*b.Cos()*l.Sin() - r0*b0.Cos()*l0.Sin()
	z := r*b.Sin() - r0*b0.Sin()
	return math.Sqrt(x*x + y*y + z*z)
}

// horizontal returns altitude and azimuth in degrees. The altitude is
// geometric; refraction is accounted for by StandardAltitude.
func (p *Provider) horizontal(ra unit.RA, dec unit.Angle, jd float64) (float64, float64) {
	φ := unit.AngleFromDeg(p.obs.Lat)
	ψ := unit.AngleFromDeg(-p.obs.Long) // meeus measures longitude westward
	A, h := coord.EqToHz(ra, dec, φ, ψ, sidereal.Apparent(jd))
	// meeus azimuth runs from the south
	return h.Deg(), normalizeDeg(A.Deg() + 180)
}

// solarDistance is the distance of b from the Sun in AU. The Moon's follows
// from its elongation and the Earth's distances to both.
func (p *Provider) solarDistance(b Body, jde float64, elong unit.Angle, dist, sunDist float64) float64 {
	if planet, ok := p.planets[b]; ok {
		_, _, r := planet.Position(jde)
		return r
	}
	return math.Sqrt(sunDist*sunDist + dist*dist - 2*sunDist*dist*elong.Cos())
}

// magnitude is the apparent visual magnitude of a planet, from Müller's
// formulas. Saturn's includes its rings.
func (p *Provider) magnitude(b Body, jde, r, dist float64, i unit.Angle) float64 {
	switch b {
	case Mercury:
		return illum.Mercury(r, dist, i)
	case Venus:
		return illum.Venus(r, dist, i)
	case Mars:
		return illum.Mars(r, dist, i)
	case Jupiter:
		return illum.Jupiter(r, dist)
	case Saturn:
		ringTilt, _, ringLong, _, _, _ := saturnring.Ring(jde, p.earth, p.planets[Saturn])
		return illum.Saturn(r, dist, ringTilt, ringLong)
	case Uranus:
		return illum.Uranus(r, dist)
	default:
		return illum.Neptune(r, dist)
	}
}

func julianDays(t time.Time) (jd, jde float64) {
	jd = julian.TimeToJD(t.UTC())
	return jd, jd + deltaT(jd)/86400
}

// jdeToTime converts a dynamical time Julian day to UTC.
func jdeToTime(jde float64) time.Time {
	return julian.JDToTime(jde - deltaT(jde)/86400)
}

// deltaT is TT-UT in seconds. The table covers 1620 to 2010 and the
// polynomials either side of it.
func deltaT(jd float64) float64 {
	year := base.JDEToJulianYear(jd)
	switch {
	case year >= 2005:
		return deltat.PolyAfter2000(year).Sec()
	case year >= 1620:
		return deltat.Interp10A(jd).Sec()
	default:
		return deltat.Poly948to1600(year).Sec()
	}
}

func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func locationOrPanic(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
