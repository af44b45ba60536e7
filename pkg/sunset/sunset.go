// Package sunset gives reference sunrise and sunset times from the NOAA
// approximation in keep94/sunrise. They are used to check the search-based
// almanac rather than to serve results.
package sunset

import (
	"fmt"
	"math"
	"time"

	"github.com/keep94/sunrise"

	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/timetricks"
)

// GetSunEvents returns a list of ordered sun events from the starting day to
// the end of the duration in the given place. Each day contributes a sunrise
// then a sunset.
func GetSunEvents(start time.Time, duration time.Duration, place Place) SunEvents {
	start = start.In(place.Location)
	numDays := int(math.Ceil(duration.Hours() / 24))
	ret := make(SunEvents, 0, numDays*2)
	for i := 0; i < numDays; i++ {
		// Anchor on local noon so the sunrise package picks this day's
		// morning and evening.
		noon := timetricks.SetClock(start.AddDate(0, 0, i), 12, 0)

		var s sunrise.Sunrise
		s.Around(place.Lat, place.Long, noon)
		rise, set := s.Sunrise(), s.Sunset()
		if rise.IsZero() || set.IsZero() {
			// Polar day or night.
			continue
		}
		ret = append(ret,
			SunEvent{rise.In(place.Location), Sunrise},
			SunEvent{set.In(place.Location), Sunset})
	}
	return ret
}

// Disagreement pairs every reference sun event with the crossing of the same
// direction nearest to it and returns the largest time difference. It fails
// when a reference event has no counterpart.
func Disagreement(crossings []search.Event, reference SunEvents) (time.Duration, error) {
	var worst time.Duration
	for _, ref := range reference {
		want := search.FallingEdge
		if ref.Event == Sunrise {
			want = search.RisingEdge
		}

		best := time.Duration(math.MaxInt64)
		for _, c := range crossings {
			if c.Kind != want {
				continue
			}
			if d := abs(c.Time.Sub(ref.Time)); d < best {
				best = d
			}
		}
		if best == time.Duration(math.MaxInt64) {
			return 0, fmt.Errorf("no %s crossing to match %s", want, ref.String())
		}
		if best > worst {
			worst = best
		}
	}
	return worst, nil
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
