package sunset

import (
	"fmt"
	"time"

	"github.com/spencer-p/skydash/pkg/ephem"
)

// Place is a lat/long coordinate on the Earth matched with its time zone.
type Place struct {
	Lat, Long float64
	Location  *time.Location
}

// PlaceOf returns the Place of an observer.
func PlaceOf(obs ephem.Observer) Place {
	return Place{Lat: obs.Lat, Long: obs.Long, Location: obs.Location}
}

// SunEvents is a time series of SunEvent.
type SunEvents []SunEvent

// SunEvent is a sunrise or sunset event.
type SunEvent struct {
	Time  time.Time
	Event Event
}

func (s *SunEvent) String() string {
	return fmt.Sprintf("%s %s", s.Time.Format(time.RFC822), s.Event)
}

// Event encodes a sunrise or sunset event.
type Event bool

const (
	Sunrise Event = true
	Sunset  Event = false
)

func (e Event) String() string {
	if e == Sunrise {
		return "Sunrise"
	}
	return "Sunset"
}
