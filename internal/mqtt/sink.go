package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"trv_schedule/internal/schedule"
)

// Client is the subset of the paho client the sink needs.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Options configures the broker connection and the target device.
type Options struct {
	Broker    string
	ClientID  string
	Username  string
	Password  string
	BaseTopic string // e.g. "zigbee2mqtt"
	Device    string // friendly name of the TRV
	QoS       byte
}

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// newClient is swapped in tests.
var newClient = func(opts *paho.ClientOptions) Client { return paho.NewClient(opts) }

// Sink publishes formatted day schedules to a Zigbee2MQTT thermostat as
// {"weekly_schedule":{"<day>":"<text>"}} on <base_topic>/<device>/set.
type Sink struct {
	client Client
	topic  string
	qos    byte
}

// Dial connects to the broker and returns a ready sink.
func Dial(o Options) (*Sink, error) {
	if strings.TrimSpace(o.Device) == "" {
		return nil, errors.New("mqtt device name is empty")
	}
	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	c := newClient(opts)
	if cc, ok := c.(interface{ Connect() paho.Token }); ok {
		token := cc.Connect()
		if token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connect %s: %w", o.Broker, token.Error())
		}
	}
	return NewSink(c, o.BaseTopic, o.Device, o.QoS), nil
}

// NewSink wraps an already connected client.
func NewSink(c Client, baseTopic, device string, qos byte) *Sink {
	return &Sink{client: c, topic: SetTopic(baseTopic, device), qos: qos}
}

// SetTopic returns the command topic of a device.
func SetTopic(baseTopic, device string) string {
	base := strings.Trim(baseTopic, "/")
	if base == "" {
		return device + "/set"
	}
	return base + "/" + device + "/set"
}

type weeklySchedulePayload struct {
	WeeklySchedule map[schedule.Weekday]string `json:"weekly_schedule"`
}

// Payload encodes the command for one weekday.
func Payload(day schedule.Weekday, value string) ([]byte, error) {
	return json.Marshal(weeklySchedulePayload{
		WeeklySchedule: map[schedule.Weekday]string{day: value},
	})
}

// Save publishes value for day and waits for the broker acknowledgement.
func (s *Sink) Save(ctx context.Context, day schedule.Weekday, value string) error {
	payload, err := Payload(day, value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", day, err)
	}
	token := s.client.Publish(s.topic, s.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish %s: %w", day, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", day, err)
	}
	return nil
}

// Topic returns the command topic this sink publishes to.
func (s *Sink) Topic() string { return s.topic }

// Close disconnects from the broker.
func (s *Sink) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(quiesceMillis)
	}
}
