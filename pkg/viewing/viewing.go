// Package viewing finds the windows in which a body can be observed: it is
// above the horizon while the sky is dark enough.
package viewing

import (
	"sort"
	"time"

	"github.com/spencer-p/skydash/pkg/search"
)

// Interval is a span of time during which some condition holds.
type Interval struct {
	Start, End time.Time
}

// Duration is the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Above turns the crossings of a search over w into the intervals spent at or
// above the threshold. startAbove is the state at w.Start.
func Above(crossings []search.Event, w search.Window, startAbove bool) []Interval {
	var (
		ret   []Interval
		open  = startAbove
		since = w.Start
	)
	for _, e := range crossings {
		switch e.Kind {
		case search.RisingEdge:
			if !open {
				open, since = true, e.Time
			}
		case search.FallingEdge:
			if open {
				ret = appendInterval(ret, since, e.Time)
				open = false
			}
		}
	}
	if open {
		ret = appendInterval(ret, since, w.End)
	}
	return ret
}

// Below is the complement of Above within w.
func Below(crossings []search.Event, w search.Window, startAbove bool) []Interval {
	return Complement(Above(crossings, w, startAbove), w)
}

// Complement returns the parts of w not covered by sorted, disjoint
// intervals.
func Complement(intervals []Interval, w search.Window) []Interval {
	var ret []Interval
	cursor := w.Start
	for _, iv := range intervals {
		ret = appendInterval(ret, cursor, iv.Start)
		cursor = iv.End
	}
	return appendInterval(ret, cursor, w.End)
}

// Intersect returns the spans covered by both a and b. Both must be sorted
// and disjoint.
func Intersect(a, b []Interval) []Interval {
	var ret []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start, end := latest(a[i].Start, b[j].Start), earliest(a[i].End, b[j].End)
		ret = appendInterval(ret, start, end)
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return ret
}

// Windows builds observing windows from the intervals in which a body is up
// and the sky is dark, dropping any shorter than minDuration.
func Windows(up, dark []Interval, minDuration time.Duration, reasons ...string) []Window {
	ret := []Window{}
	for _, iv := range Intersect(up, dark) {
		if iv.Duration() < minDuration {
			continue
		}
		ret = append(ret, Window{
			Time:     iv.Start,
			Duration: iv.Duration(),
			Reasons:  append([]string(nil), reasons...),
		})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Time.Before(ret[j].Time) })
	return ret
}

func appendInterval(ret []Interval, start, end time.Time) []Interval {
	if !start.Before(end) {
		return ret
	}
	return append(ret, Interval{Start: start, End: end})
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
