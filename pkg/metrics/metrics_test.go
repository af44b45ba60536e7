package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLatencyHandlerRecordsStatus(t *testing.T) {
	h := LatencyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such body", http.StatusNotFound)
	}))

	before := testutil.CollectAndCount(requestLatency)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/bodies/pluto", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("got code %d, want 404", rec.Code)
	}
	if got := testutil.CollectAndCount(requestLatency); got != before+1 {
		t.Errorf("got %d latency series, want %d", got, before+1)
	}
}

func TestCounters(t *testing.T) {
	CacheLookup(true)
	CacheLookup(false)
	CacheLookup(false)
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("miss")); got < 2 {
		t.Errorf("got %v misses, want at least 2", got)
	}

	Published(nil)
	Published(errors.New("broker down"))
	if got := testutil.ToFloat64(publishes.WithLabelValues("error")); got < 1 {
		t.Errorf("got %v failed publishes, want at least 1", got)
	}

	SetCacheEntries(3)
	if got := testutil.ToFloat64(cacheEntries); got != 3 {
		t.Errorf("got %v cache entries, want 3", got)
	}

	SetSunriseDisagreement(90 * time.Second)
	if got := testutil.ToFloat64(sunriseDisagreement); got != 90 {
		t.Errorf("got disagreement %v, want 90", got)
	}
}
