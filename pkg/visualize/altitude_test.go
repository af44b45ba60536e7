package visualize

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/search"
)

var start = time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)

func at(h float64) *time.Time {
	t := start.Add(time.Duration(h * float64(time.Hour)))
	return &t
}

func TestEncode(t *testing.T) {
	day, err := search.WindowFrom(start, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	f := func(t time.Time) (float64, error) {
		return 50 * math.Sin(2*math.Pi*(t.Sub(start).Hours()-6)/24), nil
	}
	points := SamplePoints(f, day, 10*time.Minute)
	if len(points) != 24*6+1 {
		t.Fatalf("got %d points, want %d", len(points), 24*6+1)
	}

	twilights := []almanac.Twilight{
		{Light: almanac.Daylight, Dawn: at(6), Dusk: at(18)},
		{Light: almanac.Civil, Dawn: at(5.5), Dusk: at(18.5)},
		{Light: almanac.Astronomical},
	}
	riseSet := []search.Event{
		{Time: *at(6), Kind: search.RisingEdge},
		{Time: *at(18), Kind: search.FallingEdge},
	}

	var buf bytes.Buffer
	n, err := NewAltitude("Sun", day, points, twilights, riseSet, -0.8333).Encode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	svg := buf.String()
	for _, want := range []string{
		`<svg viewBox="0 0 1200 300"`,
		`class="daylight"`,
		`class="civil_twilight"`,
		`class="altitude"`,
		`class="rise" fill="#f4a261" cx="300"`,
		`class="set" fill="#f4a261" cx="900"`,
		`</svg>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg is missing %q", want)
		}
	}
	if strings.Contains(svg, `class="astronomical_twilight"`) {
		t.Errorf("drew a band with no dawn or dusk")
	}
}

func TestEncodeNoSamples(t *testing.T) {
	day, _ := search.WindowFrom(start, 24*time.Hour)
	_, err := NewAltitude("Moon", day, nil, nil, nil, 0.125).Encode(&bytes.Buffer{})
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("got %v, want ErrNoSamples", err)
	}
}

func TestAltitudeToY(t *testing.T) {
	table := []struct {
		alt  float64
		want int
	}{{90, 0}, {0, 150}, {-90, 300}}
	for _, tc := range table {
		if got := altitudeToY(tc.alt); got != tc.want {
			t.Errorf("altitudeToY(%v) = %d, want %d", tc.alt, got, tc.want)
		}
	}
}
