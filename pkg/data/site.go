package data

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/spencer-p/skydash/pkg/ephem"
)

var (
	ErrSiteNotFound = errors.New("site not found")
	ErrInvalidSite  = errors.New("invalid site")
)

// Site is a named observing location.
type Site struct {
	gorm.Model `json:"-"`
	Name       string  `gorm:"uniqueIndex;not null" json:"name"`
	Lat        float64 `json:"lat"`
	Long       float64 `json:"long"`
	Height     float64 `json:"height"`
	TimeZone   string  `json:"timezone"`
}

// Validate checks the coordinates and the time zone name.
func (s *Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSite)
	}
	if s.Lat < -90 || s.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidSite, s.Lat)
	}
	if s.Long < -180 || s.Long > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidSite, s.Long)
	}
	if _, err := time.LoadLocation(s.TimeZone); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSite, err)
	}
	return nil
}

// Observer returns the site as an ephemeris observer.
func (s *Site) Observer() (ephem.Observer, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return ephem.Observer{}, fmt.Errorf("%w: %v", ErrInvalidSite, err)
	}
	return ephem.Observer{
		Name:     s.Name,
		Lat:      s.Lat,
		Long:     s.Long,
		Height:   s.Height,
		Location: loc,
	}, nil
}

// SiteOf is the inverse of Site.Observer.
func SiteOf(obs ephem.Observer) Site {
	tz := "UTC"
	if obs.Location != nil {
		tz = obs.Location.String()
	}
	return Site{Name: obs.Name, Lat: obs.Lat, Long: obs.Long, Height: obs.Height, TimeZone: tz}
}

// Sites stores observing locations by name.
type Sites interface {
	List() ([]Site, error)
	Get(name string) (Site, error)
	Put(site Site) error
}

// MemorySites keeps sites in memory.
type MemorySites struct {
	mu    sync.RWMutex
	sites map[string]Site
}

func NewMemorySites(initial ...Site) *MemorySites {
	m := &MemorySites{sites: make(map[string]Site)}
	for _, s := range initial {
		m.sites[s.Name] = s
	}
	return m
}

func (m *MemorySites) List() ([]Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]Site, 0, len(m.sites))
	for _, s := range m.sites {
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

func (m *MemorySites) Get(name string) (Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sites[name]
	if !ok {
		return Site{}, fmt.Errorf("%w: %q", ErrSiteNotFound, name)
	}
	return s, nil
}

func (m *MemorySites) Put(site Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sites[site.Name] = site
	return nil
}
