// Command pixelit-sensord runs the sensor loop on a Linux board and serves
// readings over HTTP and MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelit-go/bus"
	"pixelit-go/services/bridge"
	"pixelit-go/services/config"
	"pixelit-go/services/httpapi"
	"pixelit-go/services/sensors"
	"pixelit-go/services/sensors/platform"
	"pixelit-go/services/telemetry"

	"github.com/gorilla/handlers"
)

func main() {
	cfgPath := flag.String("config", "/etc/pixelit/config.json", "config file (created with defaults when missing)")
	i2cBus := flag.String("i2c-bus", "", "periph.io I2C bus name (default: first bus)")
	adcAddr := flag.Uint("adc-addr", 0x48, "ADS1115 address for the photoresistor")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address, empty to disable")
	mqttServer := flag.String("mqtt-server", "", "MQTT server, overrides the config file")
	discovery := flag.String("discovery-prefix", "", "Home Assistant discovery prefix, empty to disable")
	intervalMs := flag.Int("interval-ms", int(telemetry.DefaultInterval/time.Millisecond), "sensor poll interval")
	flag.Parse()

	logger := log.New(os.Stderr, "[sensors] ", log.LstdFlags)
	logf := func(function, message string) { logger.Printf("%s: %s", function, message) }

	cfg, err := config.ForBoard("linux")
	if err != nil {
		logger.Printf("embedded defaults: %v", err)
	}
	cfg.SetLogDelegate(logf)
	if err := cfg.LoadFile(*cfgPath); err != nil {
		logger.Printf("config: %v", err)
	}
	if *mqttServer != "" {
		cfg.MQTTActive = true
		cfg.MQTTServer = *mqttServer
	}

	board := platform.New(platform.Options{I2CBus: *i2cBus, ADCAddress: uint16(*adcAddr)})
	defer board.Close()

	s := sensors.New(cfg, board)
	s.SetLogDelegate(logf)
	s.Initialise()
	info := s.Info()
	logger.Printf("lux sensor %s, environment sensor %s", info.Lux, info.Temperature)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	svc := telemetry.New(s, time.Duration(*intervalMs)*time.Millisecond)
	svc.SetLogDelegate(logf)
	_ = svc.Start(ctx, b.NewConnection("sensors"))

	go bridge.Start(ctx, b.NewConnection("mqtt"), bridge.Config{
		Active:          cfg.MQTTActive,
		Server:          cfg.MQTTServer,
		Port:            cfg.MQTTPort,
		User:            cfg.MQTTUser,
		Password:        cfg.MQTTPassword,
		MasterTopic:     cfg.MQTTMasterTopic,
		ClientID:        cfg.Hostname,
		DiscoveryPrefix: *discovery,
	})
	go logBridgeState(ctx, b.NewConnection("log"), logger)

	if *httpAddr == "" {
		<-ctx.Done()
		return
	}
	api := httpapi.New(b.NewConnection("http"), httpapi.DefaultTimeout)
	srv := &http.Server{
		Addr:              *httpAddr,
		Handler:           handlers.LoggingHandler(os.Stdout, api.Router()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Printf("http listening on %s", *httpAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

func logBridgeState(ctx context.Context, conn *bus.Connection, logger *log.Logger) {
	sub := conn.Subscribe(bus.T("bridge", "state"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sub.Channel():
			p, _ := m.Payload.(map[string]any)
			logger.Printf("mqtt %v %v %v", p["level"], p["status"], p["error"])
		}
	}
}
