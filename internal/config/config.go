package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	MQTT      MQTTConfig
	InfluxDB  InfluxDBConfig
	Server    ServerConfig
	WebSocket WebSocketConfig
}

// MQTTConfig holds broker-related configuration
type MQTTConfig struct {
	Host                 string
	Port                 int
	Username             string
	Password             string
	Topic                string
	UseTLS               bool
	ConnectRetryInterval time.Duration
	MaxReconnectInterval time.Duration
}

// InfluxDBConfig holds InfluxDB-related configuration
type InfluxDBConfig struct {
	URL    string
	Org    string
	Token  string
	Bucket string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// WebSocketConfig holds broadcast delivery configuration
type WebSocketConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		MQTT: MQTTConfig{
			Host:                 getEnv("MQTT_BROKER_HOST", "localhost"),
			Port:                 getEnvInt("MQTT_BROKER_PORT", 8883),
			Username:             getEnv("MQTT_USERNAME", ""),
			Password:             getEnv("MQTT_PASSWORD", ""),
			Topic:                getEnv("MQTT_TOPIC", "sensors/#"),
			UseTLS:               getEnvBool("MQTT_TLS", true),
			ConnectRetryInterval: getEnvDuration("MQTT_CONNECT_RETRY_INTERVAL", 5*time.Second),
			MaxReconnectInterval: getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL", 1*time.Minute),
		},
		InfluxDB: InfluxDBConfig{
			URL:    getEnv("INFLUXDB_URL", "http://localhost:8086"),
			Org:    getEnv("INFLUXDB_ORG", "smart-grid"),
			Token:  getEnv("INFLUX_TOKEN", ""),
			Bucket: getEnv("INFLUXDB_BUCKET", "smart-grid-sensors"),
		},
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8000"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		WebSocket: WebSocketConfig{
			QueueSize:   getEnvInt("WS_QUEUE_SIZE", 256),
			SendTimeout: getEnvDuration("WS_SEND_TIMEOUT", 5*time.Second),
		},
	}, nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
