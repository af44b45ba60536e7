package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "skydash"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	reportLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "report_latency",
			Subsystem: subsystem,
			Help:      "Time to compute a body report in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"body"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "cache_lookups_total",
			Subsystem: subsystem,
			Help:      "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "cache_entries",
			Subsystem: subsystem,
			Help:      "Responses held in the cache after the last write.",
		},
	)

	publishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "mqtt_publishes_total",
			Subsystem: subsystem,
			Help:      "MQTT messages published by outcome.",
		},
		[]string{"outcome"},
	)

	sunriseDisagreement = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "sunrise_disagreement_seconds",
			Subsystem: subsystem,
			Help:      "Largest difference between searched and reference sunrise or sunset at the last self check.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		reportLatency,
		cacheLookups,
		cacheEntries,
		publishes,
		sunriseDisagreement,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveReport records how long the report of one body took.
func ObserveReport(body string, elapsed time.Duration) {
	reportLatency.WithLabelValues(body).Observe(elapsed.Seconds())
}

// CacheLookup counts a hit or a miss.
func CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// SetCacheEntries records the size of the response cache.
func SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}

// Published counts an MQTT publish.
func Published(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	publishes.WithLabelValues(outcome).Inc()
}

// SetSunriseDisagreement records the result of the startup self check.
func SetSunriseDisagreement(d time.Duration) {
	sunriseDisagreement.Set(d.Seconds())
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
