package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/config"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// Measurement is the single measurement all readings are stored under.
const Measurement = "sensor_readings"

// Client represents an InfluxDB v2 client
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	config   config.InfluxDBConfig
}

// NewClient initializes the InfluxDB v2 client and verifies connectivity
func NewClient(cfg config.InfluxDBConfig) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Add a health check to verify credentials
	if _, err := client.Health(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	return &Client{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		queryAPI: client.QueryAPI(cfg.Org),
		config:   cfg,
	}, nil
}

// WriteReading persists one reading as a single point tagged by device.
// The write is synchronous; the caller decides whether a failure matters.
func (c *Client) WriteReading(ctx context.Context, reading models.Reading) error {
	if err := c.writeAPI.WritePoint(ctx, readingPoint(reading, time.Now())); err != nil {
		return fmt.Errorf("influxdb write for device %s: %w", reading.DeviceID, err)
	}
	return nil
}

// readingPoint builds the point for a reading. Every known channel is
// written as a field so pivot queries never have to join per-field series.
func readingPoint(reading models.Reading, ts time.Time) *write.Point {
	fields := make(map[string]interface{}, len(models.KnownChannels))
	for _, channel := range models.KnownChannels {
		fields[channel] = reading.Fields[channel]
	}
	return write.NewPoint(
		Measurement,
		map[string]string{"device": reading.DeviceID},
		fields,
		ts,
	)
}

// QueryAPI exposes the query client for the analytics engine. It is safe
// for concurrent use with the blocking write API.
func (c *Client) QueryAPI() api.QueryAPI {
	return c.queryAPI
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// Close closes the InfluxDB client
func (c *Client) Close() {
	c.client.Close()
}
