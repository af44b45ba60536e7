package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/spencer-p/skydash/pkg/data"
)

func TestDefaults(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("SITE_NAME", "")
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := data.Site{Name: "Cherbourg", Lat: 49.6386, Long: -1.6163, TimeZone: "Europe/Paris"}
	site := c.Site()
	if diff := cmp.Diff(want, site, cmpopts.IgnoreFields(data.Site{}, "Model")); diff != "" {
		t.Errorf("unexpected site (-want,+got):\n%s", diff)
	}
	if err := site.Validate(); err != nil {
		t.Errorf("default site is invalid: %v", err)
	}
	if c.Resolution != time.Minute || c.PublishEvery != time.Minute {
		t.Errorf("got resolution %s and publish interval %s", c.Resolution, c.PublishEvery)
	}
	if _, ok := c.Broker(); ok {
		t.Errorf("expected no broker by default")
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("SITE_NAME", "Brest")
	t.Setenv("LAT", "48.39")
	t.Setenv("RESOLUTION", "30s")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_USERNAME", "ha")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SiteName != "Brest" || c.Lat != 48.39 || c.Resolution != 30*time.Second {
		t.Errorf("unexpected config %+v", c)
	}
	if site := c.Site(); site.Name != "Brest" || site.Lat != 48.39 || site.TimeZone != "UTC" {
		t.Errorf("unexpected site %+v", site)
	}
	b, ok := c.Broker()
	if !ok || b.URL != "tcp://broker:1883" || b.Username != "ha" || b.ClientID != "skydash" {
		t.Errorf("unexpected broker %+v", b)
	}

	t.Setenv("RESOLUTION", "often")
	if _, err := FromEnv(); err == nil {
		t.Errorf("expected an error for a bad duration")
	}
}
