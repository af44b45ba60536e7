package ephem

import (
	"testing"
	"time"
)

func TestNextLunarPhase(t *testing.T) {
	from := time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)
	table := []struct {
		phase LunarPhase
		want  time.Time
	}{
		{FullMoon, time.Date(2024, time.August, 19, 18, 26, 0, 0, time.UTC)},
		{LastQuarter, time.Date(2024, time.August, 26, 9, 26, 0, 0, time.UTC)},
		{NewMoon, time.Date(2024, time.September, 3, 1, 55, 0, 0, time.UTC)},
		{FirstQuarter, time.Date(2024, time.September, 11, 6, 6, 0, 0, time.UTC)},
	}

	for _, tc := range table {
		t.Run(tc.phase.String(), func(t *testing.T) {
			got := NextLunarPhase(tc.phase, from)
			if d := got.Sub(tc.want); d > 30*time.Minute || d < -30*time.Minute {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNextLunarPhaseIsAfter(t *testing.T) {
	// Exactly at a full moon, the next one is a lunation later.
	full := NextLunarPhase(FullMoon, time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC))
	next := NextLunarPhase(FullMoon, full)
	if gap := next.Sub(full); gap < 29*24*time.Hour || gap > 30*24*time.Hour {
		t.Errorf("gap between full moons %s, want about one lunation", gap)
	}
}

func TestNextLunarEclipse(t *testing.T) {
	table := []struct {
		from time.Time
		want time.Time
		kind string
	}{{
		// The small partial eclipse of 18 September 2024.
		from: time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC),
		want: time.Date(2024, time.September, 18, 2, 44, 0, 0, time.UTC),
	}, {
		from: time.Date(2024, time.September, 19, 0, 0, 0, 0, time.UTC),
		want: time.Date(2025, time.March, 14, 6, 58, 0, 0, time.UTC),
		kind: "total",
	}}

	for _, tc := range table {
		t.Run(tc.want.Format("2006-01-02"), func(t *testing.T) {
			got, ok := NextLunarEclipse(tc.from)
			if !ok {
				t.Fatalf("no eclipse found after %s", tc.from)
			}
			if d := got.Time.Sub(tc.want); d > time.Hour || d < -time.Hour {
				t.Errorf("got %s, want %s", got.Time, tc.want)
			}
			if got.Kind == "" || (tc.kind != "" && got.Kind != tc.kind) {
				t.Errorf("got kind %q, want %q", got.Kind, tc.kind)
			}
		})
	}
}
