package viewing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/skydash/pkg/timetricks"
)

const timeFmt = "3:04 PM"

// Window is a good time to observe.
type Window struct {
	Time     time.Time     `json:"time"`
	Duration time.Duration `json:"duration"`
	Reasons  []string      `json:"reasons"`

	// PrettyTime is a human-readable version of the time, relative to the
	// current date. Optional.
	PrettyTime string `json:"pretty_time,omitempty"`
}

// End is when the window closes.
func (w *Window) End() time.Time {
	return w.Time.Add(w.Duration)
}

func (w *Window) String() string {
	return w.Describe(time.Now())
}

// Describe renders the window relative to now.
func (w *Window) Describe(now time.Time) string {
	return fmt.Sprintf("%s, %s", w.prettyTime(now), strings.Join(w.Reasons, " and "))
}

func (w *Window) prettyTime(now time.Time) string {
	return fmt.Sprintf("%s at %s", timetricks.Day(w.Time, now), w.TimeRange())
}

// TimeRange returns the clock times of the window without the date.
func (w *Window) TimeRange() string {
	until := ""
	if w.Duration != 0 {
		until = fmt.Sprintf(" until %s", w.End().Format(timeFmt))
	}
	return w.Time.Format(timeFmt) + until
}

// UpdatePrettyTime makes sure the window's pretty time is set.
func (w *Window) UpdatePrettyTime(now time.Time) {
	if w.PrettyTime == "" {
		w.PrettyTime = w.prettyTime(now)
	}
}

func (w *Window) MarshalJSON() ([]byte, error) {
	w.UpdatePrettyTime(time.Now())
	// The alias drops the methods so Marshal does not recurse.
	type window Window
	return json.Marshal((*window)(w))
}
