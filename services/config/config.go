// Package config holds the device configuration: named scalar parameters
// with defaults, applied from flat JSON documents.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"pixelit-go/types"
	"pixelit-go/x/strx"
)

// LogFunc receives (function, message) log lines.
type LogFunc func(function, message string)

// BrightnessFunc is called whenever a document sets matrixBrightness.
type BrightnessFunc func(brightness float32)

const defaultHostname = "PixelIt"

// EmbeddedConfigLookup allows overriding how per-board defaults are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Config is read-only to consumers; only Apply and the loaders mutate it.
type Config struct {
	Version         string                `json:"version"`
	TemperatureUnit types.TemperatureUnit `json:"temperatureUnit"`

	MatrixBrightness          float32 `json:"matrixBrightness"`
	MatrixBrightnessAutomatic bool    `json:"matrixBrightnessAutomatic"`
	MbaDimMin                 int     `json:"mbaDimMin"`
	MbaDimMax                 int     `json:"mbaDimMax"`
	MbaLuxMin                 int     `json:"mbaLuxMin"`
	MbaLuxMax                 int     `json:"mbaLuxMax"`
	Note                      string  `json:"note"`
	Hostname                  string  `json:"hostname"`

	MQTTActive      bool   `json:"mqttAktiv"`
	MQTTUser        string `json:"mqttUser"`
	MQTTPassword    string `json:"mqttPassword"`
	MQTTServer      string `json:"mqttServer"`
	MQTTMasterTopic string `json:"mqttMasterTopic"`
	MQTTPort        int    `json:"mqttPort"`

	LuxOffset         float32 `json:"luxOffset"`
	TemperatureOffset float32 `json:"temperatureOffset"`
	HumidityOffset    float32 `json:"humidityOffset"`
	PressureOffset    float32 `json:"pressureOffset"`
	GasOffset         float32 `json:"gasOffset"`

	OnewirePin   string `json:"onewirePin"`
	SCLPin       string `json:"SCLPin"`
	SDAPin       string `json:"SDAPin"`
	LDRPin       string `json:"ldrPin"`
	LDRDevice    string `json:"ldrDevice"`
	LDRPulldown  uint32 `json:"ldrPulldown"`
	LDRSmoothing uint   `json:"ldrSmoothing"`

	EnvStaleAfterMs uint32 `json:"envStaleAfterMs"`
	DHTSettleMs     uint32 `json:"dhtSettleMs"`

	log        LogFunc
	brightness BrightnessFunc
}

// Default returns the factory configuration.
func Default() *Config {
	return &Config{
		TemperatureUnit:           types.Celsius,
		MatrixBrightness:          127,
		MatrixBrightnessAutomatic: true,
		MbaDimMin:                 20,
		MbaDimMax:                 100,
		MbaLuxMin:                 0,
		MbaLuxMax:                 400,
		Hostname:                  defaultHostname,
		MQTTMasterTopic:           "Haus/PixelIt/",
		MQTTPort:                  1883,
		OnewirePin:                "Pin_D1",
		SCLPin:                    "Pin_D1",
		SDAPin:                    "Pin_D3",
		LDRPin:                    "Pin_A0",
		LDRDevice:                 "GL5516",
		LDRPulldown:               10000,
		EnvStaleAfterMs:           20000,
		DHTSettleMs:               800,
	}
}

// ForBoard returns the defaults with the board's embedded document applied.
func ForBoard(board string) (*Config, error) {
	c := Default()
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return c, errors.New("no embedded config for board: " + board)
	}
	if err := c.Load(bytes.NewReader(raw)); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) SetLogDelegate(f LogFunc)               { c.log = f }
func (c *Config) SetBrightnessDelegate(f BrightnessFunc) { c.brightness = f }

func (c *Config) logf(function, message string) {
	if c.log != nil {
		c.log(function, message)
	}
}

// Apply sets every recognised key present in doc and leaves the rest
// untouched. Values of the wrong type are ignored.
func (c *Config) Apply(doc map[string]any) {
	str(doc, "version", &c.Version)
	if v, ok := num(doc, "temperatureUnit"); ok {
		c.TemperatureUnit = types.TemperatureUnit(v)
	}
	boolean(doc, "matrixBrightnessAutomatic", &c.MatrixBrightnessAutomatic)
	integer(doc, "mbaDimMin", &c.MbaDimMin)
	integer(doc, "mbaDimMax", &c.MbaDimMax)
	integer(doc, "mbaLuxMin", &c.MbaLuxMin)
	integer(doc, "mbaLuxMax", &c.MbaLuxMax)
	if v, ok := num(doc, "matrixBrightness"); ok {
		c.MatrixBrightness = float32(v)
		if c.brightness != nil {
			c.brightness(c.MatrixBrightness)
		}
	}
	str(doc, "note", &c.Note)
	if v, ok := doc["hostname"].(string); ok {
		c.Hostname = strx.Coalesce(strx.Keep(v, strx.IsHostnameByte), defaultHostname)
	}

	boolean(doc, "mqttAktiv", &c.MQTTActive)
	str(doc, "mqttUser", &c.MQTTUser)
	str(doc, "mqttPassword", &c.MQTTPassword)
	str(doc, "mqttServer", &c.MQTTServer)
	str(doc, "mqttMasterTopic", &c.MQTTMasterTopic)
	integer(doc, "mqttPort", &c.MQTTPort)

	float(doc, "luxOffset", &c.LuxOffset)
	float(doc, "temperatureOffset", &c.TemperatureOffset)
	float(doc, "humidityOffset", &c.HumidityOffset)
	float(doc, "pressureOffset", &c.PressureOffset)
	float(doc, "gasOffset", &c.GasOffset)

	str(doc, "onewirePin", &c.OnewirePin)
	str(doc, "SCLPin", &c.SCLPin)
	str(doc, "SDAPin", &c.SDAPin)
	str(doc, "ldrPin", &c.LDRPin)
	str(doc, "ldrDevice", &c.LDRDevice)
	if v, ok := num(doc, "ldrPulldown"); ok && v >= 0 {
		c.LDRPulldown = uint32(v)
	}
	if v, ok := num(doc, "ldrSmoothing"); ok && v >= 0 {
		c.LDRSmoothing = uint(v)
	}
	if v, ok := num(doc, "envStaleAfterMs"); ok && v >= 0 {
		c.EnvStaleAfterMs = uint32(v)
	}
	if v, ok := num(doc, "dhtSettleMs"); ok && v >= 0 {
		c.DHTSettleMs = uint32(v)
	}
}

// Load reads one JSON object and applies it.
func (c *Config) Load(r io.Reader) error {
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return err
	}
	c.Apply(doc)
	c.logf("LoadConfig", "Loaded")
	return nil
}

// LoadFile applies the file at path. A missing file is created from the
// current values.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logf("LoadConfig", "No Configfile, init new file")
		return c.SaveFile(path)
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Load(f)
}

// Marshal encodes the configuration with the same keys Apply accepts.
func (c *Config) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveFile writes Marshal output to path.
func (c *Config) SaveFile(path string) error {
	b, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	c.logf("SaveConfig", "Saved")
	return nil
}

// -----------------------------------------------------------------------------
// Typed accessors over a decoded document
// -----------------------------------------------------------------------------

func num(doc map[string]any, key string) (float64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func integer(doc map[string]any, key string, dst *int) {
	if v, ok := num(doc, key); ok {
		*dst = int(v)
	}
}

func float(doc map[string]any, key string, dst *float32) {
	if v, ok := num(doc, key); ok {
		*dst = float32(v)
	}
}

func boolean(doc map[string]any, key string, dst *bool) {
	if v, ok := doc[key].(bool); ok {
		*dst = v
	}
}

func str(doc map[string]any, key string, dst *string) {
	if v, ok := doc[key].(string); ok {
		*dst = v
	}
}
