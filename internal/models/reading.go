package models

// KnownChannels is the fixed set of measurement channels every smart-grid
// unit reports. A persisted point always carries all of them, defaulted to
// zero when a payload omits one, so pivot-style queries stay well-formed.
var KnownChannels = []string{
	"input_voltage",
	"input_current",
	"out_voltage1",
	"out_current1",
	"out_voltage2",
	"out_current2",
	"out_voltage3",
	"out_current3",
}

// Reading represents one decoded telemetry sample from a device
type Reading struct {
	// DeviceID is the final segment of the topic the sample was published on.
	DeviceID string
	// Timestamp is the origin-supplied timestamp, passed through untouched.
	// Nil when the payload carried none.
	Timestamp interface{}
	// Fields maps every known channel to its value, missing channels are 0.
	Fields map[string]float64
	// Raw is the decoded payload exactly as published.
	Raw map[string]interface{}
}

// BroadcastEnvelope is the frame pushed to every live WebSocket subscriber
// for each ingested message.
type BroadcastEnvelope struct {
	Device    string                 `json:"device"`
	Timestamp interface{}            `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// AggregatedRow is one time window of the analytics response, pivoted so
// every channel appears as a column.
type AggregatedRow struct {
	Time         string  `json:"time"`
	Device       string  `json:"device"`
	InputVoltage float64 `json:"input_voltage"`
	InputCurrent float64 `json:"input_current"`
	OutVoltage1  float64 `json:"out_voltage1"`
	OutCurrent1  float64 `json:"out_current1"`
	OutVoltage2  float64 `json:"out_voltage2"`
	OutCurrent2  float64 `json:"out_current2"`
	OutVoltage3  float64 `json:"out_voltage3"`
	OutCurrent3  float64 `json:"out_current3"`
}
