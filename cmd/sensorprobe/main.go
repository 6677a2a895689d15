// Command sensorprobe reports which sensors a board has and takes a few
// readings.
package main

import (
	"time"

	"pixelit-go/services/config"
	"pixelit-go/services/console"
	"pixelit-go/services/sensors"
	"pixelit-go/services/sensors/platform"
	"pixelit-go/types"
)

func main() {
	time.Sleep(1500 * time.Millisecond)
	println("[probe] boot …")

	cfg, err := config.ForBoard(console.Board)
	if err != nil {
		println("[probe] defaults:", err.Error())
	}
	s := sensors.New(cfg, platform.New(platform.Options{}))
	s.SetLogDelegate(console.Log)
	s.Initialise()

	info := s.Info()
	println("[probe] lux sensor:", info.Lux)
	println("[probe] env sensor:", info.Temperature)

	for i := 0; i < 3; i++ {
		lux := s.ReadLux()
		if lux.HasLux {
			println("[probe] lux", lux.Lux)
		} else {
			println("[probe] lux absent")
		}
		printEnv(s.ReadEnvironment())
		time.Sleep(2 * time.Second)
	}
	println("[probe] done")
}

func printEnv(r types.TemperatureReading) {
	if !r.AnyPresent() {
		println("[probe] env absent")
		return
	}
	if r.HasTemperature {
		println("[probe] temperature", r.Temperature)
	}
	if r.HasHumidity {
		println("[probe] humidity", r.Humidity)
	}
	if r.HasPressure {
		println("[probe] pressure", r.Pressure)
	}
	if r.HasGas {
		println("[probe] gas", r.Gas)
	}
}
