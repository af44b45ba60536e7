package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/ephem"
)

type message struct {
	Topic    string
	Payload  string
	Retained bool
}

type fakePublisher struct {
	sent []message
	fail string
}

func (f *fakePublisher) Publish(topic string, payload []byte, retained bool) error {
	if topic == f.fail {
		return errors.New("broker said no")
	}
	f.sent = append(f.sent, message{topic, string(payload), retained})
	return nil
}

func reports() []*almanac.Report {
	set := time.Date(2024, time.August, 15, 21, 10, 0, 0, time.UTC)
	return []*almanac.Report{
		{Body: ephem.Sun, State: almanac.On, Set: &set},
		{Body: ephem.Moon, State: almanac.Off},
	}
}

func TestTopicsFor(t *testing.T) {
	want := Topics{
		Config:     "homeassistant/binary_sensor/moon/config",
		State:      "homeassistant/binary_sensor/moon/state",
		Attributes: "homeassistant/binary_sensor/moon/attributes",
	}
	if diff := cmp.Diff(want, TopicsFor("Moon")); diff != "" {
		t.Errorf("unexpected topics (-want,+got):\n%s", diff)
	}
}

func TestPublishReports(t *testing.T) {
	p := &fakePublisher{}
	if err := PublishReports(p, "Cherbourg", reports()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var topics []string
	for _, m := range p.sent {
		topics = append(topics, m.Topic)
	}
	want := []string{
		"homeassistant/binary_sensor/availability",
		"homeassistant/binary_sensor/sun/config",
		"homeassistant/binary_sensor/sun/state",
		"homeassistant/binary_sensor/sun/attributes",
		"homeassistant/binary_sensor/moon/config",
		"homeassistant/binary_sensor/moon/state",
		"homeassistant/binary_sensor/moon/attributes",
	}
	if diff := cmp.Diff(want, topics); diff != "" {
		t.Fatalf("unexpected topics (-want,+got):\n%s", diff)
	}

	if m := p.sent[0]; m.Payload != Online || !m.Retained {
		t.Errorf("got availability %+v", m)
	}
	if m := p.sent[2]; m.Payload != `{"state":"ON"}` || m.Retained {
		t.Errorf("got sun state %+v", m)
	}
	if m := p.sent[5]; m.Payload != `{"state":"OFF"}` {
		t.Errorf("got moon state %+v", m)
	}

	var cfg Config
	if err := json.Unmarshal([]byte(p.sent[1].Payload), &cfg); err != nil {
		t.Fatalf("bad config payload: %v", err)
	}
	if diff := cmp.Diff(DiscoveryConfig("Cherbourg", "Sun"), cfg); diff != "" {
		t.Errorf("unexpected config (-want,+got):\n%s", diff)
	}
	if !p.sent[1].Retained {
		t.Errorf("discovery config must be retained")
	}

	var attrs map[string]interface{}
	if err := json.Unmarshal([]byte(p.sent[3].Payload), &attrs); err != nil {
		t.Fatalf("bad attributes payload: %v", err)
	}
	if attrs["body"] != "sun" || attrs["set"] != "2024-08-15T21:10:00Z" {
		t.Errorf("unexpected attributes %v", attrs)
	}
}

func TestPublishReportsKeepsGoing(t *testing.T) {
	p := &fakePublisher{fail: "homeassistant/binary_sensor/sun/state"}
	err := PublishReports(p, "Cherbourg", reports())
	if err == nil {
		t.Fatalf("expected the failed publish to be reported")
	}
	if len(p.sent) != 6 {
		t.Errorf("sent %d messages, want the other 6", len(p.sent))
	}
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := &fakePublisher{}
	err := Run(ctx, p, "Cherbourg", time.Hour, func(time.Time) ([]*almanac.Report, error) {
		calls++
		cancel()
		return reports(), nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls != 1 || len(p.sent) != 7 {
		t.Errorf("got %d calls and %d messages, want 1 and 7", calls, len(p.sent))
	}
}

func TestOnceReportsFailure(t *testing.T) {
	p := &fakePublisher{}
	ok := Once(p, "Cherbourg", func(time.Time) ([]*almanac.Report, error) {
		return nil, errors.New("no ephemeris")
	}, time.Now())
	if ok || len(p.sent) != 0 {
		t.Errorf("published %d messages after a failed computation", len(p.sent))
	}
}
