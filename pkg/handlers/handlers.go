package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/cache"
	"github.com/spencer-p/skydash/pkg/data"
	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/logging"
	"github.com/spencer-p/skydash/pkg/metrics"
	"github.com/spencer-p/skydash/pkg/search"
	"github.com/spencer-p/skydash/pkg/timetricks"
	"github.com/spencer-p/skydash/pkg/viewing"
	"github.com/spencer-p/skydash/pkg/visualize"
)

const (
	chartStep          = 10 * time.Minute
	defaultSky         = almanac.Nautical
	defaultMinDuration = 30 * time.Minute
)

var errBadRequest = errors.New("bad request")

// Options configure a Server.
type Options struct {
	Provider    *ephem.Provider
	Sites       data.Sites
	DefaultSite string
	Resolution  time.Duration
	CacheTTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server answers almanac queries over HTTP.
type Server struct {
	opts  Options
	cache *cache.Timed[*response]
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		opts:  opts,
		cache: cache.NewTimed[*response](opts.CacheTTL),
	}
}

func (s *Server) Register(r *mux.Router) {
	r.Handle("/", s.cached(s.renderIndex)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/bodies", s.serveBodies).Methods("GET")
	api.Handle("/report", s.cached(s.renderReports)).Methods("GET")
	api.Handle("/bodies/{body}", s.cached(s.renderReport)).Methods("GET")
	api.Handle("/twilight", s.cached(s.renderTwilight)).Methods("GET")
	api.Handle("/viewing/{body}", s.cached(s.renderViewing)).Methods("GET")
	api.Handle("/chart/{body:[A-Za-z]+}.svg", s.cached(s.renderChart)).Methods("GET")
	api.HandleFunc("/sites", s.serveSites).Methods("GET")
	api.HandleFunc("/sites", s.createSite).Methods("POST")
}

// response is a rendered result, kept in the cache.
type response struct {
	contentType string
	body        []byte
}

func jsonResponse(v interface{}) (*response, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON result: %w", err)
	}
	return &response{"application/json", buf.Bytes()}, nil
}

// query is what every almanac request is about: a site and an instant.
type query struct {
	site data.Site
	eph  *ephem.Provider
	alm  *almanac.Almanac
	now  time.Time
	at   time.Time
	day  search.Window
	r    *http.Request
}

// parseQuery resolves the site and date parameters. A date other than
// today means noon on that date in the site's time zone.
func (s *Server) parseQuery(r *http.Request) (*query, error) {
	name := r.FormValue("site")
	if name == "" {
		name = s.opts.DefaultSite
	}
	site, err := s.opts.Sites.Get(name)
	if err != nil {
		return nil, err
	}
	obs, err := site.Observer()
	if err != nil {
		return nil, err
	}

	now := s.opts.Now().In(obs.Location)
	at := now
	if date := r.FormValue("date"); date != "" {
		d, err := timetricks.ParseDay(date, obs.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q: %v", errBadRequest, date, err)
		}
		if !timetricks.SameDay(d, now) {
			at = timetricks.SetClock(d, 12, 0)
		}
	}
	day, err := search.NewWindow(timetricks.DayBounds(at))
	if err != nil {
		return nil, err
	}

	eph := s.opts.Provider.At(obs)
	return &query{
		site: site,
		eph:  eph,
		alm:  almanac.New(eph, s.opts.Resolution),
		now:  now,
		at:   at,
		day:  day,
		r:    r,
	}, nil
}

func (q *query) body() (ephem.Body, error) {
	return ephem.ParseBody(mux.Vars(q.r)["body"])
}

// cached serves render's result from memory when the same URL was rendered
// for the same day within the cache TTL.
func (s *Server) cached(render func(q *query) (*response, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := s.parseQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// cache based on method and URL, which should encapsulate the query
		key := fmt.Sprintf("%s %s %s", r.Method, r.URL, timetricks.UniqueDay(q.at))
		resp, ok := s.cache.Get(key)
		metrics.CacheLookup(ok)
		if !ok {
			if resp, err = render(q); err != nil {
				writeError(w, r, err)
				return
			}
			s.cache.Set(key, resp)
			metrics.SetCacheEntries(s.cache.Len())
		}

		w.Header().Add("Content-Type", resp.contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(resp.body)
	})
}

func (s *Server) report(q *query, b ephem.Body) (*almanac.Report, error) {
	start := time.Now()
	r, err := q.alm.Report(b, q.at)
	metrics.ObserveReport(b.String(), time.Since(start))
	return r, err
}

func (s *Server) renderReports(q *query) (*response, error) {
	var reports []*almanac.Report
	for _, b := range q.eph.Bodies() {
		r, err := s.report(q, b)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return jsonResponse(map[string]interface{}{
		"site":    q.site,
		"reports": reports,
	})
}

func (s *Server) renderReport(q *query) (*response, error) {
	b, err := q.body()
	if err != nil {
		return nil, err
	}
	r, err := s.report(q, b)
	if err != nil {
		return nil, err
	}
	return jsonResponse(r)
}

func (s *Server) renderTwilight(q *query) (*response, error) {
	twilights, err := q.alm.Twilights(q.at)
	if err != nil {
		return nil, err
	}
	light, err := q.alm.Light(q.at)
	if err != nil {
		return nil, err
	}
	return jsonResponse(map[string]interface{}{
		"light":    light,
		"twilight": twilights,
	})
}

// windows returns the viewing windows of b in the night following q's day,
// from noon to noon.
func (s *Server) windows(q *query, b ephem.Body) ([]viewing.Window, error) {
	sky := defaultSky
	if name := q.r.FormValue("sky"); name != "" {
		parsed, err := almanac.ParseLight(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		sky = parsed
	}
	minDuration := defaultMinDuration
	if minParam := q.r.FormValue("min"); minParam != "" {
		parsed, err := time.ParseDuration(minParam)
		if err != nil {
			return nil, fmt.Errorf("%w: min %q: %v", errBadRequest, minParam, err)
		}
		minDuration = parsed
	}

	night, err := search.WindowFrom(timetricks.SetClock(q.at, 12, 0), 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return q.alm.Viewing(b, night, sky, minDuration)
}

func (s *Server) renderViewing(q *query) (*response, error) {
	b, err := q.body()
	if err != nil {
		return nil, err
	}
	windows, err := s.windows(q, b)
	if err != nil {
		return nil, err
	}

	if q.r.FormValue("o") == "text" {
		var buf bytes.Buffer
		for _, w := range windows {
			fmt.Fprintf(&buf, "%s\n", w.Describe(q.now))
		}
		return &response{"text/plain", buf.Bytes()}, nil
	}
	for i := range windows {
		windows[i].UpdatePrettyTime(q.now)
	}
	return jsonResponse(windows)
}

func (s *Server) chart(q *query, b ephem.Body) ([]byte, error) {
	twilights, err := q.alm.Twilights(q.at)
	if err != nil {
		return nil, err
	}
	riseSet, err := q.alm.RiseSet(b, q.day)
	if err != nil {
		return nil, err
	}
	points := visualize.SamplePoints(q.eph.Altitude(b), q.day, chartStep)

	var buf bytes.Buffer
	img := visualize.NewAltitude(b.Title(), q.day, points, twilights, riseSet, ephem.StandardAltitude(b))
	if _, err := img.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to draw %s: %w", b, err)
	}
	return buf.Bytes(), nil
}

func (s *Server) renderChart(q *query) (*response, error) {
	b, err := q.body()
	if err != nil {
		return nil, err
	}
	if !q.eph.Supports(b) {
		return nil, fmt.Errorf("%w: %s", ephem.ErrUnsupportedBody, b)
	}
	svg, err := s.chart(q, b)
	if err != nil {
		return nil, err
	}
	return &response{"image/svg+xml", svg}, nil
}

func (s *Server) serveBodies(w http.ResponseWriter, r *http.Request) {
	resp, err := jsonResponse(s.opts.Provider.Bodies())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Add("Content-Type", resp.contentType)
	w.Write(resp.body)
}

func (s *Server) serveSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.opts.Sites.List()
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := jsonResponse(sites)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Add("Content-Type", resp.contentType)
	w.Write(resp.body)
}

func (s *Server) createSite(w http.ResponseWriter, r *http.Request) {
	var site data.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.opts.Sites.Put(site); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Infow("Saved site", "name", site.Name, "lat", site.Lat, "long", site.Long)

	resp, err := jsonResponse(site)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Add("Content-Type", resp.contentType)
	w.WriteHeader(http.StatusCreated)
	w.Write(resp.body)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ephem.ErrUnknownBody),
		errors.Is(err, ephem.ErrUnsupportedBody),
		errors.Is(err, data.ErrSiteNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, data.ErrInvalidSite),
		errors.Is(err, almanac.ErrUnknownLight):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		logging.Errorw("Failed to serve request", "method", r.Method, "url", r.URL.String(), "error", err)
	} else {
		logging.Debugw("Rejected request", "method", r.Method, "url", r.URL.String(), "error", err)
	}
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprintf(w, "%s\n", strings.TrimSpace(err.Error()))
}
