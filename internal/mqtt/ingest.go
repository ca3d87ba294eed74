package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/config"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/decode"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// pointWriter persists decoded readings. *influxdb.Client satisfies it.
type pointWriter interface {
	WriteReading(ctx context.Context, reading models.Reading) error
}

// broadcaster hands envelopes to the delivery loop. *ws.Dispatcher
// satisfies it.
type broadcaster interface {
	Submit(envelope models.BroadcastEnvelope)
}

// Ingest owns the broker subscription and drives the per-message pipeline:
// decode, persist, broadcast. Message handling runs on the paho network
// goroutine, one message at a time, which preserves per-device order.
type Ingest struct {
	client     paho.Client
	config     config.MQTTConfig
	writer     pointWriter
	dispatcher broadcaster
}

// NewIngest builds the broker client. The client id is unique per process
// so a restarted instance never collides with its broker-side session.
func NewIngest(cfg config.MQTTConfig, writer pointWriter, dispatcher broadcaster) *Ingest {
	ingest := &Ingest{
		config:     cfg,
		writer:     writer,
		dispatcher: dispatcher,
	}

	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "ssl"
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)).
		SetClientID(fmt.Sprintf("smart-grid-backend-%s", uuid.NewString()[:8])).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.MaxReconnectInterval).
		SetConnectRetry(true).
		SetConnectRetryInterval(cfg.ConnectRetryInterval).
		SetOnConnectHandler(ingest.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})
	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	ingest.client = paho.NewClient(opts)
	return ingest
}

// Connect dials the broker and blocks until the first connection attempt
// resolves. The subscription itself is established in the OnConnect
// handler so it is re-established after every reconnect.
func (i *Ingest) Connect() error {
	log.Printf("mqtt: connecting to %s:%d", i.config.Host, i.config.Port)
	token := i.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (i *Ingest) onConnect(client paho.Client) {
	log.Printf("mqtt: connected, subscribing to %s", i.config.Topic)
	token := client.Subscribe(i.config.Topic, 0, i.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe to %s failed: %v", i.config.Topic, err)
	}
}

// handleMessage processes one transport message end to end. Every failure
// is contained here; nothing propagates back into the network loop.
func (i *Ingest) handleMessage(_ paho.Client, msg paho.Message) {
	reading, err := decode.Decode(msg.Topic(), msg.Payload())
	if err != nil {
		log.Printf("mqtt: dropping message: %v", err)
		return
	}

	// Persistence is best effort: a failed write is logged and the message
	// is still broadcast. No retry.
	if err := i.writer.WriteReading(context.Background(), reading); err != nil {
		log.Printf("mqtt: %v", err)
	}

	i.dispatcher.Submit(models.BroadcastEnvelope{
		Device:    reading.DeviceID,
		Timestamp: reading.Timestamp,
		Data:      reading.Raw,
	})
}

// Close stops the subscription and releases the broker connection without
// flushing in-flight messages.
func (i *Ingest) Close() {
	if i.client.IsConnectionOpen() {
		i.client.Unsubscribe(i.config.Topic)
	}
	i.client.Disconnect(250)
	log.Println("mqtt: disconnected")
}
