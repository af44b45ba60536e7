// Package publish exposes body reports to Home Assistant over MQTT, one
// binary sensor per body that is ON while the body is above the horizon.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/metrics"
)

const (
	discoveryPrefix   = "homeassistant/binary_sensor"
	AvailabilityTopic = discoveryPrefix + "/availability"
	Online            = "online"
	Offline           = "offline"
)

// Publisher sends one MQTT message.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Topics are where one body's messages go.
type Topics struct {
	Config     string
	State      string
	Attributes string
}

// TopicsFor returns the topics of a body named name.
func TopicsFor(name string) Topics {
	base := fmt.Sprintf("%s/%s", discoveryPrefix, strings.ToLower(name))
	return Topics{
		Config:     base + "/config",
		State:      base + "/state",
		Attributes: base + "/attributes",
	}
}

type device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

// Config is a Home Assistant discovery message.
type Config struct {
	Name                string `json:"name"`
	UniqueID            string `json:"unique_id"`
	StateTopic          string `json:"state_topic"`
	ValueTemplate       string `json:"value_template"`
	AttributesTopic     string `json:"json_attributes_topic"`
	AvailabilityTopic   string `json:"availability_topic"`
	PayloadOn           string `json:"payload_on"`
	PayloadOff          string `json:"payload_off"`
	PayloadAvailable    string `json:"payload_available"`
	PayloadNotAvailable string `json:"payload_not_available"`
	Icon                string `json:"icon"`
	Device              device `json:"device"`
}

// DiscoveryConfig returns the discovery message for a body.
func DiscoveryConfig(site, body string) Config {
	topics := TopicsFor(body)
	return Config{
		Name:                body,
		UniqueID:            "skydash_" + strings.ToLower(body),
		StateTopic:          topics.State,
		ValueTemplate:       "{{ value_json.state }}",
		AttributesTopic:     topics.Attributes,
		AvailabilityTopic:   AvailabilityTopic,
		PayloadOn:           string(almanac.On),
		PayloadOff:          string(almanac.Off),
		PayloadAvailable:    Online,
		PayloadNotAvailable: Offline,
		Icon:                icon(body),
		Device: device{
			Identifiers:  []string{"skydash_" + strings.ToLower(site)},
			Name:         "Sky over " + site,
			Manufacturer: "skydash",
		},
	}
}

func icon(body string) string {
	switch strings.ToLower(body) {
	case "sun":
		return "mdi:white-balance-sunny"
	case "moon":
		return "mdi:moon-waxing-crescent"
	default:
		return "mdi:orbit"
	}
}

// PublishReports announces and updates one binary sensor per report.
// Every message is attempted; the errors are joined.
func PublishReports(p Publisher, site string, reports []*almanac.Report) error {
	var errs []error
	send := func(topic string, payload []byte, retained bool) {
		err := p.Publish(topic, payload, retained)
		metrics.Published(err)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to publish to %s: %w", topic, err))
		}
	}
	sendJSON := func(topic string, v interface{}, retained bool) {
		payload, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode %s: %w", topic, err))
			return
		}
		send(topic, payload, retained)
	}

	send(AvailabilityTopic, []byte(Online), true)
	for _, r := range reports {
		name := r.Body.Title()
		topics := TopicsFor(name)
		sendJSON(topics.Config, DiscoveryConfig(site, name), true)
		sendJSON(topics.State, map[string]almanac.State{"state": r.State}, false)
		sendJSON(topics.Attributes, r, false)
	}
	return errors.Join(errs...)
}
