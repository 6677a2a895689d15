// services/bridge/bridge.go
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pixelit-go/bus"
	"pixelit-go/services/telemetry"
)

// -----------------------------------------------------------------------------
// Public entry point
// -----------------------------------------------------------------------------

// Start runs the MQTT bridge until ctx is cancelled. A non-empty initial
// config starts the link at once; later JSON configs on {"config","mqtt"}
// replace it.
func Start(ctx context.Context, conn *bus.Connection, initial Config) {
	s := &Service{
		conn:       conn,
		stateTopic: bus.Topic{"bridge", "state"},
		dial:       Dial,
	}
	s.run(ctx, initial)
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config mirrors the mqtt* keys of the device configuration.
type Config struct {
	Active      bool   `json:"mqttAktiv"`
	Server      string `json:"mqttServer"`
	Port        int    `json:"mqttPort"`
	User        string `json:"mqttUser"`
	Password    string `json:"mqttPassword"`
	MasterTopic string `json:"mqttMasterTopic"`
	ClientID    string `json:"clientId,omitempty"`

	// DiscoveryPrefix enables Home Assistant discovery when non-empty.
	DiscoveryPrefix string `json:"discoveryPrefix,omitempty"`
}

// Broker returns the paho broker URL.
func (c Config) Broker() string {
	if strings.Contains(c.Server, "://") {
		return c.Server
	}
	port := c.Port
	if port == 0 {
		port = 1883
	}
	return "tcp://" + c.Server + ":" + strconv.Itoa(port)
}

// SensorTopic is where combined readings go.
func (c Config) SensorTopic() string { return c.MasterTopic + "sensor" }

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is one broker session.
type Client interface {
	Publish(topic string, retained bool, payload []byte) error
	// Lost is closed or receives when the session drops.
	Lost() <-chan error
	Close()
}

// Dial opens a session. Tests replace it.
var Dial func(ctx context.Context, cfg Config) (Client, error) = dialPaho

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type Service struct {
	conn       *bus.Connection
	stateTopic bus.Topic
	dial       func(ctx context.Context, cfg Config) (Client, error)

	mu     sync.Mutex
	curRun context.CancelFunc
}

func (s *Service) run(ctx context.Context, initial Config) {
	cfgSub := s.conn.Subscribe(bus.Topic{"config", "mqtt"})
	defer s.conn.Unsubscribe(cfgSub)

	if initial.Active && initial.Server != "" {
		s.reconfigure(ctx, initial)
	} else {
		s.publishState("idle", "awaiting_config", nil)
	}

	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			if !cfg.Active || cfg.Server == "" {
				s.stopCurrent()
				s.publishState("idle", "disabled", nil)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
}

func (s *Service) reconfigure(parent context.Context, cfg Config) {
	s.mu.Lock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	ctx, cancel := context.WithCancel(parent)
	s.curRun = cancel
	s.mu.Unlock()

	go s.runLink(ctx, cfg)
}

// -----------------------------------------------------------------------------
// Link supervision and forwarding
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg Config) {
	backoff := backoffSeq(250*time.Millisecond, 30*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c, err := s.dial(ctx, cfg)
		if err != nil {
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.publishState("up", "link_established", nil)
		err = s.handleLink(ctx, c, cfg)
		c.Close()
		if err == nil {
			return
		}
		delay := backoff()
		s.publishState("degraded", "link_lost_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink forwards retained readings until the session drops or ctx
// ends. Lux and env are merged into one JSON object per publish.
func (s *Service) handleLink(ctx context.Context, c Client, cfg Config) error {
	if cfg.DiscoveryPrefix != "" {
		for _, d := range discovery(cfg) {
			if err := c.Publish(d.topic, true, d.payload); err != nil {
				return err
			}
		}
	}

	luxSub := s.conn.Subscribe(telemetry.TopicLux)
	defer s.conn.Unsubscribe(luxSub)
	envSub := s.conn.Subscribe(telemetry.TopicEnv)
	defer s.conn.Unsubscribe(envSub)

	state := sensorState{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-c.Lost():
			if !ok || err == nil {
				err = fmt.Errorf("connection closed")
			}
			return err
		case msg := <-luxSub.Channel():
			if p, ok := msg.Payload.(telemetry.Lux); ok {
				state.lux = &p
			}
		case msg := <-envSub.Channel():
			if p, ok := msg.Payload.(telemetry.Env); ok {
				state.env = &p
			}
		}
		b, err := json.Marshal(state.merged())
		if err != nil {
			continue
		}
		if err := c.Publish(cfg.SensorTopic(), false, b); err != nil {
			return err
		}
	}
}

type sensorState struct {
	lux *telemetry.Lux
	env *telemetry.Env
}

func (st sensorState) merged() map[string]any {
	m := map[string]any{}
	if st.lux != nil && st.lux.Lux != nil {
		m["lux"] = *st.lux.Lux
	}
	if e := st.env; e != nil {
		put := func(k string, v *float32) {
			if v != nil {
				m[k] = *v
			}
		}
		put("temperature", e.Temperature)
		put("humidity", e.Humidity)
		put("pressure", e.Pressure)
		put("gas", e.Gas)
	}
	return m
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (Config, error) {
	var cfg Config
	switch v := p.(type) {
	case Config:
		return v, nil
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config payload type: %T", p)
	}
	return cfg, nil
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,  // "up", "degraded", "error", "idle"
		"status": status, // short machine string
		"ts_ms":  time.Now().UnixMilli(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	msg := s.conn.NewMessage(s.stateTopic, payload, true)
	s.conn.Publish(msg)
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
