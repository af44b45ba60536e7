package visualize

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/search"
)

const (
	width  = 1200
	height = 300
)

var ErrNoSamples = errors.New("no altitude samples to draw")

// bandFills colours the sky for each light level, darkest first.
var bandFills = []struct {
	light almanac.Light
	fill  string
}{
	{almanac.Astronomical, "#1d3557"},
	{almanac.Nautical, "#457b9d"},
	{almanac.Civil, "#a8dadc"},
	{almanac.Daylight, "lightyellow"},
}

// Point is the altitude of a body at one instant.
type Point struct {
	Time     time.Time
	Altitude float64
}

// SamplePoints evaluates f every step across w. Failed samples are left out.
func SamplePoints(f search.SampleFunc, w search.Window, step time.Duration) []Point {
	var ret []Point
	for t := w.Start; !t.After(w.End); t = t.Add(step) {
		if alt, err := f(t); err == nil {
			ret = append(ret, Point{t, alt})
		}
	}
	return ret
}

// Altitude draws a day of a body's altitude over the twilight bands.
type Altitude struct {
	body      string
	day       search.Window
	points    []Point
	twilights []almanac.Twilight
	riseSet   []search.Event
	horizon   float64
}

func NewAltitude(body string, day search.Window, points []Point, twilights []almanac.Twilight, riseSet []search.Event, horizon float64) *Altitude {
	return &Altitude{
		body:      body,
		day:       day,
		points:    points,
		twilights: twilights,
		riseSet:   riseSet,
		horizon:   horizon,
	}
}

func (img *Altitude) Encode(w io.Writer) (int, error) {
	if len(img.points) == 0 {
		return 0, ErrNoSamples
	}

	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil {
			err = nexterr
		}
	}

	io(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" onclick="" xmlns="http://www.w3.org/2000/svg">`, width, height))
	io(fmt.Fprintf(w, `<rect class="night" fill="#0b132b" x="0" y="0" width="%d" height="%d"/>`, width, height))

	// Lighter bands are drawn over darker ones.
	for _, band := range bandFills {
		tw, ok := img.twilight(band.light)
		if !ok || tw.Dawn == nil || tw.Dusk == nil {
			continue
		}
		x1, x2 := img.timeToX(*tw.Dawn), img.timeToX(*tw.Dusk)
		if x2 <= x1 {
			continue
		}
		io(fmt.Fprintf(w, `<rect class="%s" fill="%s" x="%d" y="0" width="%d" height="%d"/>`,
			className(band.light), band.fill, x1, x2-x1, height))
	}

	io(fmt.Fprintf(w, `<line class="horizon" stroke="black" x1="0" y1="%d" x2="%d" y2="%d"/>`,
		altitudeToY(0), width, altitudeToY(0)))

	var path strings.Builder
	for i, p := range img.points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s %d,%d ", cmd, img.timeToX(p.Time), altitudeToY(p.Altitude))
	}
	io(fmt.Fprintf(w, `<path class="altitude" fill="none" stroke="#e76f51" stroke-width="3" d="%s"/>`,
		strings.TrimSpace(path.String())))

	for _, e := range img.riseSet {
		class := "set"
		if e.Kind == search.RisingEdge {
			class = "rise"
		}
		io(fmt.Fprintf(w, `<circle class="%s" fill="#f4a261" cx="%d" cy="%d" r="6"><title>%s %s</title></circle>`,
			class, img.timeToX(e.Time), altitudeToY(img.horizon), img.body, e.Time.Format("15:04")))
	}

	// Insert date of this graph as unix.
	io(fmt.Fprintf(w, `<text class="unixtime" visibility="hidden">%d</text>`, img.day.Start.Unix()))

	io(fmt.Fprintf(w, `</svg>`))

	return n, err
}

func (img *Altitude) twilight(l almanac.Light) (almanac.Twilight, bool) {
	for _, tw := range img.twilights {
		if tw.Light == l {
			return tw, true
		}
	}
	return almanac.Twilight{}, false
}

func className(l almanac.Light) string {
	return strings.ReplaceAll(l.String(), " ", "_")
}

// altitudeToY maps -90° to the bottom edge and +90° to the top.
func altitudeToY(alt float64) int {
	return height/2 - int(alt*float64(height)/180)
}

// timeToX scales across the day, which may not be 24 hours long.
func (img *Altitude) timeToX(t time.Time) int {
	return int(int64(t.Sub(img.day.Start)) * width / int64(img.day.Duration()))
}
