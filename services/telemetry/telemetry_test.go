package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pixelit-go/bus"
	"pixelit-go/types"
)

type fakeSource struct {
	luxReads int
	envReads int
	lux      types.LuxReading
	env      types.TemperatureReading
}

func (f *fakeSource) ReadLux() types.LuxReading {
	f.luxReads++
	return f.lux
}

func (f *fakeSource) ReadEnvironment() types.TemperatureReading {
	f.envReads++
	return f.env
}

func (f *fakeSource) Info() types.SensorInfo {
	return types.SensorInfo{Lux: "BH1750", Temperature: "BME280"}
}

func next(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting on %v", sub.Topic())
		return nil
	}
}

func TestPayloads(t *testing.T) {
	b, _ := json.Marshal(LuxPayload(types.LuxReading{}))
	if string(b) != `{"lux":null}` {
		t.Fatalf("absent lux: %s", b)
	}
	b, _ = json.Marshal(LuxPayload(types.LuxReading{HasLux: true, Lux: 12.5}))
	if string(b) != `{"lux":12.5}` {
		t.Fatalf("lux: %s", b)
	}
	env := types.TemperatureReading{HasTemperature: true, Temperature: 21, HasPressure: true, Pressure: 1013}
	b, _ = json.Marshal(EnvPayload(env))
	if string(b) != `{"temperature":21,"pressure":1013}` {
		t.Fatalf("env: %s", b)
	}
}

func TestRun_PublishesRetainedReadings(t *testing.T) {
	src := &fakeSource{
		lux: types.LuxReading{HasLux: true, Lux: 300},
		env: types.TemperatureReading{HasTemperature: true, Temperature: 20},
	}
	b := bus.NewBus(8)
	conn := b.NewConnection("telemetry")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go New(src, time.Hour).Run(ctx, conn)

	obs := b.NewConnection("observer")
	info := next(t, obs.Subscribe(TopicInfo)).Payload.(types.SensorInfo)
	if info.Lux != "BH1750" || info.Temperature != "BME280" {
		t.Fatalf("info = %+v", info)
	}
	lux := next(t, obs.Subscribe(TopicLux)).Payload.(Lux)
	if lux.Lux == nil || *lux.Lux != 300 {
		t.Fatalf("lux = %+v", lux)
	}
	env := next(t, obs.Subscribe(TopicEnv)).Payload.(Env)
	if env.Temperature == nil || *env.Temperature != 20 || env.Humidity != nil {
		t.Fatalf("env = %+v", env)
	}
}

func TestRun_AnswersReadRequests(t *testing.T) {
	src := &fakeSource{env: types.TemperatureReading{HasHumidity: true, Humidity: 40}}
	b := bus.NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go New(src, time.Hour).Run(ctx, b.NewConnection("telemetry"))

	client := b.NewConnection("client")
	// Wait for the loop to be up.
	next(t, client.Subscribe(TopicInfo))

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	reply, err := client.RequestWait(rctx, client.NewMessage(ReadTopic("env"), nil, false))
	if err != nil {
		t.Fatal(err)
	}
	env := reply.Payload.(Env)
	if env.Humidity == nil || *env.Humidity != 40 || env.Temperature != nil {
		t.Fatalf("env = %+v", env)
	}

	reply, err = client.RequestWait(rctx, client.NewMessage(ReadTopic("bogus"), nil, false))
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := reply.Payload.(map[string]any); !ok || m["error"] == nil {
		t.Fatalf("unknown read reply = %#v", reply.Payload)
	}
}

func TestIntervalFrom(t *testing.T) {
	cases := []struct {
		in   any
		want time.Duration
		ok   bool
	}{
		{map[string]any{"interval_ms": float64(500)}, 500 * time.Millisecond, true},
		{map[string]any{"interval_ms": 2000}, 2 * time.Second, true},
		{map[string]any{"interval_ms": float64(0)}, 0, false},
		{map[string]any{}, 0, false},
		{"500", 0, false},
	}
	for _, c := range cases {
		got, ok := intervalFrom(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("intervalFrom(%v) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
