// Package telemetry runs the sensor loop: it owns the Sensors, publishes
// retained readings on the bus and answers read requests.
package telemetry

import (
	"context"
	"time"

	"pixelit-go/bus"
	"pixelit-go/types"
)

var (
	TopicLux    = bus.T("sensors", "lux")
	TopicEnv    = bus.T("sensors", "env")
	TopicInfo   = bus.T("sensors", "info")
	TopicRead   = bus.T("sensors", "read", "+")
	TopicConfig = bus.T("config", "sensors")
)

// ReadTopic builds a request topic for what ("lux", "env" or "info").
func ReadTopic(what string) bus.Topic { return bus.T("sensors", "read", what) }

const DefaultInterval = 3 * time.Second

// Source is the sensor set read by the loop.
type Source interface {
	ReadLux() types.LuxReading
	ReadEnvironment() types.TemperatureReading
	Info() types.SensorInfo
}

// LogFunc receives (function, message) log lines.
type LogFunc func(function, message string)

type Service struct {
	src      Source
	interval time.Duration
	log      LogFunc
}

func New(src Source, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{src: src, interval: interval}
}

func (s *Service) SetLogDelegate(f LogFunc) { s.log = f }

func (s *Service) logf(function, message string) {
	if s.log != nil {
		s.log(function, message)
	}
}

// Start runs the loop in its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.Run(ctx, conn)
	return nil
}

// Run blocks until ctx is cancelled. Every sensor access happens on this
// goroutine.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	reqSub := conn.Subscribe(TopicRead)
	defer conn.Unsubscribe(reqSub)
	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	conn.Publish(conn.NewMessage(TopicInfo, s.src.Info(), true))
	s.poll(conn)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logf("Telemetry", "stopping")
			return
		case <-tick.C:
			s.poll(conn)
		case msg, ok := <-reqSub.Channel():
			if !ok {
				return
			}
			s.answer(conn, msg)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if iv, ok := intervalFrom(msg.Payload); ok {
				s.interval = iv
				tick.Reset(iv)
				s.logf("Telemetry", "interval set to "+iv.String())
			}
		}
	}
}

func (s *Service) poll(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(TopicLux, LuxPayload(s.src.ReadLux()), true))
	conn.Publish(conn.NewMessage(TopicEnv, EnvPayload(s.src.ReadEnvironment()), true))
}

// answer serves a read request with a live reading. Env reads go through
// the staleness logic of the selected sensor.
func (s *Service) answer(conn *bus.Connection, msg *bus.Message) {
	if len(msg.Topic) < 3 {
		return
	}
	switch msg.Topic[2] {
	case "lux":
		p := LuxPayload(s.src.ReadLux())
		conn.Publish(conn.NewMessage(TopicLux, p, true))
		conn.Reply(msg, p, false)
	case "env":
		p := EnvPayload(s.src.ReadEnvironment())
		conn.Publish(conn.NewMessage(TopicEnv, p, true))
		conn.Reply(msg, p, false)
	case "info":
		conn.Reply(msg, s.src.Info(), false)
	default:
		conn.Reply(msg, map[string]any{"error": "unknown sensor"}, false)
	}
}

// intervalFrom accepts {"interval_ms": n} with n > 0.
func intervalFrom(p any) (time.Duration, bool) {
	m, ok := p.(map[string]any)
	if !ok {
		return 0, false
	}
	var ms float64
	switch v := m["interval_ms"].(type) {
	case float64:
		ms = v
	case int:
		ms = float64(v)
	default:
		return 0, false
	}
	if ms <= 0 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
