package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Topic != "sensors/#" {
		t.Errorf("MQTT.Topic = %q, want sensors/#", cfg.MQTT.Topic)
	}
	if !cfg.MQTT.UseTLS {
		t.Error("MQTT.UseTLS = false, want true by default")
	}
	if cfg.InfluxDB.URL != "http://localhost:8086" {
		t.Errorf("InfluxDB.URL = %q, want http://localhost:8086", cfg.InfluxDB.URL)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want :8000", cfg.Server.Addr)
	}
	if cfg.WebSocket.SendTimeout != 5*time.Second {
		t.Errorf("WebSocket.SendTimeout = %s, want 5s", cfg.WebSocket.SendTimeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MQTT_BROKER_HOST", "broker.example.com")
	t.Setenv("MQTT_BROKER_PORT", "1883")
	t.Setenv("MQTT_TLS", "false")
	t.Setenv("WS_QUEUE_SIZE", "1024")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Host != "broker.example.com" {
		t.Errorf("MQTT.Host = %q, want broker.example.com", cfg.MQTT.Host)
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("MQTT.Port = %d, want 1883", cfg.MQTT.Port)
	}
	if cfg.MQTT.UseTLS {
		t.Error("MQTT.UseTLS = true, want false")
	}
	if cfg.WebSocket.QueueSize != 1024 {
		t.Errorf("WebSocket.QueueSize = %d, want 1024", cfg.WebSocket.QueueSize)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Server.ShutdownTimeout = %s, want 30s", cfg.Server.ShutdownTimeout)
	}
}

func TestMalformedEnvironmentFallsBackToDefaults(t *testing.T) {
	t.Setenv("MQTT_BROKER_PORT", "not-a-port")
	t.Setenv("MQTT_TLS", "definitely")
	t.Setenv("WS_SEND_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Port != 8883 {
		t.Errorf("MQTT.Port = %d, want default 8883", cfg.MQTT.Port)
	}
	if !cfg.MQTT.UseTLS {
		t.Error("MQTT.UseTLS = false, want default true")
	}
	if cfg.WebSocket.SendTimeout != 5*time.Second {
		t.Errorf("WebSocket.SendTimeout = %s, want default 5s", cfg.WebSocket.SendTimeout)
	}
}
