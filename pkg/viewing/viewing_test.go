package viewing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/skydash/pkg/search"
)

var base = time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)

func at(h float64) time.Time {
	return base.Add(time.Duration(h * float64(time.Hour)))
}

func iv(start, end float64) Interval {
	return Interval{at(start), at(end)}
}

func day(t *testing.T) search.Window {
	t.Helper()
	w, err := search.WindowFrom(base, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestAbove(t *testing.T) {
	rise := search.Event{Time: at(6), Kind: search.RisingEdge}
	set := search.Event{Time: at(20), Kind: search.FallingEdge}

	table := []struct {
		name       string
		crossings  []search.Event
		startAbove bool
		want       []Interval
	}{{
		name:      "rise then set",
		crossings: []search.Event{rise, set},
		want:      []Interval{iv(6, 20)},
	}, {
		name:       "set then rise",
		crossings:  []search.Event{{Time: at(3), Kind: search.FallingEdge}, {Time: at(22), Kind: search.RisingEdge}},
		startAbove: true,
		want:       []Interval{iv(0, 3), iv(22, 24)},
	}, {
		name:       "always up",
		startAbove: true,
		want:       []Interval{iv(0, 24)},
	}, {
		name: "never up",
	}, {
		name:       "rise at the start while already up",
		crossings:  []search.Event{{Time: at(0), Kind: search.RisingEdge}, set},
		startAbove: true,
		want:       []Interval{iv(0, 20)},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := Above(tc.crossings, day(t), tc.startAbove)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("unexpected intervals (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestBelow(t *testing.T) {
	crossings := []search.Event{
		{Time: at(6), Kind: search.RisingEdge},
		{Time: at(20), Kind: search.FallingEdge},
	}
	got := Below(crossings, day(t), false)
	if diff := cmp.Diff([]Interval{iv(0, 6), iv(20, 24)}, got); diff != "" {
		t.Errorf("unexpected intervals (-want,+got):\n%s", diff)
	}
}

func TestIntersect(t *testing.T) {
	table := []struct {
		name string
		a, b []Interval
		want []Interval
	}{{
		name: "overlap",
		a:    []Interval{iv(1, 5)},
		b:    []Interval{iv(3, 8)},
		want: []Interval{iv(3, 5)},
	}, {
		name: "touching",
		a:    []Interval{iv(1, 3)},
		b:    []Interval{iv(3, 8)},
	}, {
		name: "one spans several",
		a:    []Interval{iv(0, 24)},
		b:    []Interval{iv(0, 4), iv(21, 24)},
		want: []Interval{iv(0, 4), iv(21, 24)},
	}, {
		name: "empty",
		a:    []Interval{iv(0, 24)},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := Intersect(tc.a, tc.b)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("unexpected intersection (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestWindows(t *testing.T) {
	up := []Interval{iv(2, 9), iv(21, 24)}
	dark := []Interval{iv(0, 4), iv(21.5, 24)}

	got := Windows(up, dark, 2*time.Hour, "Mars is up")
	want := []Window{
		{Time: at(2), Duration: 2 * time.Hour, Reasons: []string{"Mars is up"}},
		{Time: at(21.5), Duration: 150 * time.Minute, Reasons: []string{"Mars is up"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected windows (-want,+got):\n%s", diff)
	}

	if got := Windows(up, dark, 3*time.Hour); len(got) != 0 {
		t.Errorf("got %v, want no windows of three hours", got)
	}
}

func TestWindowString(t *testing.T) {
	now := time.Date(2024, time.August, 15, 10, 0, 0, 0, time.UTC)
	table := []struct {
		w    Window
		want string
	}{{
		w: Window{
			Time:    time.Date(2024, time.August, 15, 22, 5, 0, 0, time.UTC),
			Reasons: []string{"Saturn is up"},
		},
		want: "today at 10:05 PM, Saturn is up",
	}, {
		w: Window{
			Time:     time.Date(2024, time.August, 16, 1, 0, 0, 0, time.UTC),
			Duration: 90 * time.Minute,
			Reasons:  []string{"Jupiter is up", "the sun is below -12°"},
		},
		want: "tomorrow at 1:00 AM until 2:30 AM, Jupiter is up and the sun is below -12°",
	}, {
		w: Window{
			Time:    time.Date(2024, time.September, 1, 23, 0, 0, 0, time.UTC),
			Reasons: []string{"the Moon is up"},
		},
		want: "09/01 at 11:00 PM, the Moon is up",
	}}

	for _, tc := range table {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.w.Describe(now); got != tc.want {
				t.Errorf("got %q, wanted %q", got, tc.want)
			}
		})
	}
}

func TestWindowJSON(t *testing.T) {
	w := &Window{Time: at(22), Duration: time.Hour, Reasons: []string{"Venus is up"}}
	blob, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(blob, &got); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got["pretty_time"] == "" || got["pretty_time"] == nil {
		t.Errorf("pretty time not filled in: %s", blob)
	}
	if got["time"] != "2024-08-15T22:00:00Z" {
		t.Errorf("got time %v", got["time"])
	}
}
