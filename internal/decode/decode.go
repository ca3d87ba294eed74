package decode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// DecodeError reports a transport message that could not be turned into a
// Reading. The whole message is rejected; no partial reading is produced.
type DecodeError struct {
	Topic  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode message on %s: %s", e.Topic, e.Reason)
}

// Decode parses a raw payload published on topic into a Reading.
//
// The device id is the final segment of the topic. The payload must be a
// JSON object; every known channel is coerced to a float, defaulting to 0
// when absent. A present but non-numeric channel value fails the whole
// message. Decode has no side effects.
func Decode(topic string, payload []byte) (models.Reading, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.Reading{}, &DecodeError{Topic: topic, Reason: "payload is not a JSON object: " + err.Error()}
	}

	// e.g. sensors/smart-grid-unit-01 → smart-grid-unit-01
	deviceID := topic[strings.LastIndex(topic, "/")+1:]
	if deviceID == "" {
		return models.Reading{}, &DecodeError{Topic: topic, Reason: "topic has no device segment"}
	}

	fields := make(map[string]float64, len(models.KnownChannels))
	for _, channel := range models.KnownChannels {
		value, ok := raw[channel]
		if !ok {
			fields[channel] = 0
			continue
		}
		f, err := toFloat(value)
		if err != nil {
			return models.Reading{}, &DecodeError{Topic: topic, Reason: fmt.Sprintf("channel %s: %v", channel, err)}
		}
		fields[channel] = f
	}

	return models.Reading{
		DeviceID:  deviceID,
		Timestamp: raw["timestamp"],
		Fields:    fields,
		Raw:       raw,
	}, nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("non-numeric value of type %T", value)
	}
}
