package sunset

import (
	"testing"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/search"
)

var cherbourg = PlaceOf(ephem.DefaultObserver)

func TestGetSunEvents(t *testing.T) {
	start := time.Date(2024, time.August, 15, 0, 0, 0, 0, cherbourg.Location)
	events := GetSunEvents(start, 3*24*time.Hour, cherbourg)
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}

	for i, e := range events {
		wantEvent := Event(i%2 == 0)
		if e.Event != wantEvent {
			t.Errorf("event %d is %s, want %s", i, e.Event, wantEvent)
		}
		if i > 0 && !e.Time.After(events[i-1].Time) {
			t.Errorf("event %d at %s is not after %s", i, e.Time, events[i-1].Time)
		}
		if day := start.AddDate(0, 0, i/2); e.Time.Day() != day.Day() {
			t.Errorf("event %d on day %d, want %d", i, e.Time.Day(), day.Day())
		}

		// Cherbourg in mid August: sunrise near 06:55, sunset near 21:10.
		h := e.Time.Hour()
		if e.Event == Sunrise && (h < 6 || h > 7) {
			t.Errorf("sunrise at %s", e.Time.Format(time.Kitchen))
		}
		if e.Event == Sunset && (h < 20 || h > 21) {
			t.Errorf("sunset at %s", e.Time.Format(time.Kitchen))
		}
	}
}

func TestDisagreement(t *testing.T) {
	rise := time.Date(2024, time.August, 15, 6, 55, 0, 0, cherbourg.Location)
	set := time.Date(2024, time.August, 15, 21, 10, 0, 0, cherbourg.Location)
	ref := SunEvents{{rise, Sunrise}, {set, Sunset}}

	crossings := []search.Event{
		{Time: rise.Add(-90 * time.Second), Kind: search.RisingEdge},
		{Time: set.Add(30 * time.Second), Kind: search.FallingEdge},
	}
	got, err := Disagreement(crossings, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90*time.Second {
		t.Errorf("got %s, want 1m30s", got)
	}

	if _, err := Disagreement(crossings[:1], ref); err == nil {
		t.Errorf("expected an error when the sunset has no match")
	}
}
