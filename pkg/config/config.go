// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/skydash/pkg/data"
	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/publish"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`
	Debug  bool   `default:"false"`

	// The home site, served when a request names none. Without a name the
	// default observer is used.
	SiteName string  `envconfig:"SITE_NAME"`
	Lat      float64 `default:"0"`
	Long     float64 `default:"0"`
	Height   float64 `default:"0"`
	TimeZone string  `envconfig:"TIMEZONE" default:"UTC"`

	// VSOP87Dir holds the VSOP87B files. Without it only the Sun and Moon
	// are available.
	VSOP87Dir  string        `envconfig:"VSOP87_DIR"`
	Resolution time.Duration `default:"1m"`
	CacheTTL   time.Duration `envconfig:"CACHE_TTL" default:"1m"`

	MQTTBroker   string        `envconfig:"MQTT_BROKER"`
	MQTTUsername string        `envconfig:"MQTT_USERNAME"`
	MQTTPassword string        `envconfig:"MQTT_PASSWORD"`
	MQTTClientID string        `envconfig:"MQTT_CLIENT_ID" default:"skydash"`
	PublishEvery time.Duration `envconfig:"PUBLISH_EVERY" default:"1m"`
}

// FromEnv reads the environment.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return c, nil
}

// Site is the home site.
func (c *Config) Site() data.Site {
	if c.SiteName == "" {
		return data.SiteOf(ephem.DefaultObserver)
	}
	return data.Site{
		Name:     c.SiteName,
		Lat:      c.Lat,
		Long:     c.Long,
		Height:   c.Height,
		TimeZone: c.TimeZone,
	}
}

// Broker returns the MQTT settings, or false when no broker is configured.
func (c *Config) Broker() (publish.BrokerConfig, bool) {
	if c.MQTTBroker == "" {
		return publish.BrokerConfig{}, false
	}
	return publish.BrokerConfig{
		URL:      c.MQTTBroker,
		ClientID: c.MQTTClientID,
		Username: c.MQTTUsername,
		Password: c.MQTTPassword,
	}, true
}
