package bridge

import "encoding/json"

// discovery payload keys/values
const (
	keyName               = "name"
	keyStateTopic         = "state_topic"
	keyUnitOfMeasurement  = "unit_of_measurement"
	keyDeviceClass        = "device_class"
	keyStateClass         = "state_class"
	keyValueTemplate      = "value_template"
	keyUniqueID           = "unique_id"
	stateClassMeasurement = "measurement"
)

type discoveryEntry struct {
	topic   string
	payload []byte
}

type sensorField struct {
	key, name, unit, class string
}

var sensorFields = []sensorField{
	{"lux", "Illuminance", "lx", "illuminance"},
	{"temperature", "Temperature", "°C", "temperature"},
	{"humidity", "Humidity", "%", "humidity"},
	{"pressure", "Pressure", "hPa", "pressure"},
	{"gas", "Gas resistance", "kΩ", ""},
}

// discovery builds one retained Home Assistant config per field, all
// pointing at the combined sensor topic.
func discovery(cfg Config) []discoveryEntry {
	id := cfg.ClientID
	if id == "" {
		id = "pixelit"
	}
	out := make([]discoveryEntry, 0, len(sensorFields))
	for _, f := range sensorFields {
		p := map[string]any{
			keyName:              f.name,
			keyStateTopic:        cfg.SensorTopic(),
			keyUnitOfMeasurement: f.unit,
			keyStateClass:        stateClassMeasurement,
			keyValueTemplate:     "{{ value_json." + f.key + " }}",
			keyUniqueID:          id + "_" + f.key,
		}
		if f.class != "" {
			p[keyDeviceClass] = f.class
		}
		b, err := json.Marshal(p)
		if err != nil {
			continue
		}
		out = append(out, discoveryEntry{
			topic:   cfg.DiscoveryPrefix + "/sensor/" + id + "/" + f.key + "/config",
			payload: b,
		})
	}
	return out
}
