// Manual test publisher: feeds the bridge synthetic readings for a handful
// of simulated smart-grid units without real hardware.
package main

import (
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

func main() {
	host := flag.String("host", "localhost", "MQTT broker host")
	port := flag.Int("port", 8883, "MQTT broker port")
	username := flag.String("username", "", "MQTT username")
	password := flag.String("password", "", "MQTT password")
	prefix := flag.String("topic-prefix", "sensors", "topic prefix to publish under")
	devices := flag.Int("devices", 3, "number of simulated devices")
	interval := flag.Duration("interval", 5*time.Second, "publish interval")
	useTLS := flag.Bool("tls", true, "connect over TLS")
	flag.Parse()

	scheme := "tcp"
	if *useTLS {
		scheme = "ssl"
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, *host, *port)).
		SetClientID(fmt.Sprintf("smart-grid-publisher-%s", uuid.NewString()[:8])).
		SetUsername(*username).
		SetPassword(*password)
	if *useTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	log.Printf("Publishing readings for %d devices every %s", *devices, *interval)
	for {
		select {
		case <-sigs:
			log.Println("Stopping publisher")
			return
		case t := <-ticker.C:
			for i := 0; i < *devices; i++ {
				topic := fmt.Sprintf("%s/smart-grid-unit-%02d", *prefix, i+1)
				payload, err := json.Marshal(syntheticReading(t))
				if err != nil {
					log.Printf("Error marshalling reading: %v", err)
					continue
				}
				token := client.Publish(topic, 0, false, payload)
				token.Wait()
				if token.Error() != nil {
					log.Printf("Failed to publish to %s: %v", topic, token.Error())
				}
			}
		}
	}
}

func syntheticReading(t time.Time) map[string]interface{} {
	reading := map[string]interface{}{
		"timestamp":     t.UTC().Format(time.RFC3339),
		"input_voltage": 220 + rand.Float64()*20,
		"input_current": 5 + rand.Float64()*10,
	}
	for i := 1; i <= 3; i++ {
		reading[fmt.Sprintf("out_voltage%d", i)] = 12 + rand.Float64()
		reading[fmt.Sprintf("out_current%d", i)] = rand.Float64() * 3
	}
	return reading
}
