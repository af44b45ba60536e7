package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/data"
	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/logging"
	"github.com/spencer-p/skydash/pkg/metrics"
	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/sunset"
	"github.com/spencer-p/skydash/pkg/timetricks"
)

// sunriseTolerance is how far the searched sunrise may stray from the
// reference before it is worth a warning.
const sunriseTolerance = 5 * time.Minute

func handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok\n")
}

// openSites uses postgres when it is configured and memory otherwise. The
// home site is always present.
func openSites(home data.Site) (data.Sites, error) {
	db, err := data.PostgresFromEnv()
	if err != nil {
		return nil, err
	}
	if db == nil {
		logging.Infow("No PGHOST, keeping sites in memory")
		return data.NewMemorySites(home), nil
	}

	sites := data.NewGormSites(db)
	if err := sites.Put(home); err != nil {
		return nil, fmt.Errorf("failed to save home site: %w", err)
	}
	return sites, nil
}

// checkSunrise compares today's searched sunrise and sunset with the
// reference ones and warns when they drift apart.
func checkSunrise(eph *ephem.Provider, resolution time.Duration, now time.Time) {
	site := eph.Observer().Name
	worst, err := sunriseDisagreement(eph, resolution, now)
	if err != nil {
		logging.Warnw("Could not compare sunrise with the reference", "site", site, "error", err)
		return
	}

	metrics.SetSunriseDisagreement(worst)
	if worst > sunriseTolerance {
		logging.Warnw("Searched sunrise disagrees with the reference", "site", site, "difference", worst)
		return
	}
	logging.Infow("Sunrise self check passed", "site", site, "difference", worst)
}

func sunriseDisagreement(eph *ephem.Provider, resolution time.Duration, now time.Time) (time.Duration, error) {
	obs := eph.Observer()
	start, end := timetricks.DayBounds(now.In(obs.Location))
	day, err := search.NewWindow(start, end)
	if err != nil {
		return 0, err
	}

	crossings, err := almanac.New(eph, resolution).RiseSet(ephem.Sun, day)
	if err != nil {
		return 0, err
	}
	reference := sunset.GetSunEvents(start, day.Duration(), sunset.PlaceOf(obs))
	return sunset.Disagreement(crossings, reference)
}
