package publish

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// BrokerConfig says how to reach the MQTT broker.
type BrokerConfig struct {
	URL      string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// MQTT publishes with paho at QoS 1.
type MQTT struct {
	client  mqtt.Client
	timeout time.Duration
}

// Dial connects to the broker. The broker marks the sensors offline if the
// connection drops.
func Dial(c BrokerConfig) (*MQTT, error) {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(c.URL).
		SetClientID(c.ClientID).
		SetUsername(c.Username).
		SetPassword(c.Password).
		SetConnectTimeout(c.Timeout).
		SetAutoReconnect(true).
		SetWill(AvailabilityTopic, Offline, 1, true)

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), c.Timeout); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.URL, err)
	}
	return &MQTT{client: client, timeout: c.Timeout}, nil
}

func (m *MQTT) Publish(topic string, payload []byte, retained bool) error {
	return wait(m.client.Publish(topic, 1, retained, payload), m.timeout)
}

// Close marks the sensors offline and disconnects.
func (m *MQTT) Close() {
	_ = m.Publish(AvailabilityTopic, []byte(Offline), true)
	m.client.Disconnect(250)
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out after %s", timeout)
	}
	return token.Error()
}
