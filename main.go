package main

import (
	"context"
	"time"

	"pixelit-go/bus"
	"pixelit-go/services/config"
	"pixelit-go/services/console"
	"pixelit-go/services/sensors"
	"pixelit-go/services/sensors/platform"
	"pixelit-go/services/telemetry"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	if err := console.Init(115200, 0, 1); err != nil {
		println("console init:", err.Error())
	}
	console.Log("Setup", "boot")

	cfg, err := config.ForBoard(console.Board)
	if err != nil {
		console.Log("LoadConfig", err.Error())
	}
	cfg.SetLogDelegate(console.Log)

	s := sensors.New(cfg, platform.New(platform.Options{}))
	s.SetLogDelegate(console.Log)
	s.Initialise()

	ctx := context.Background()
	b := bus.NewBus(4)
	svc := telemetry.New(s, telemetry.DefaultInterval)
	svc.SetLogDelegate(console.Log)
	_ = svc.Start(ctx, b.NewConnection("sensors"))

	ui := b.NewConnection("ui")
	luxSub := ui.Subscribe(telemetry.TopicLux)
	envSub := ui.Subscribe(telemetry.TopicEnv)
	for {
		select {
		case m := <-luxSub.Channel():
			if p, ok := m.Payload.(telemetry.Lux); ok && p.Lux != nil {
				println("lux", *p.Lux)
			}
		case m := <-envSub.Channel():
			if p, ok := m.Payload.(telemetry.Env); ok && p.Temperature != nil {
				println("temperature", *p.Temperature)
			}
		}
	}
}
