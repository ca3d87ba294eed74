package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/handlers"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/analytics"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/api"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/config"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/influxdb"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/mqtt"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize InfluxDB client
	influxClient, err := influxdb.NewClient(cfg.InfluxDB)
	if err != nil {
		log.Fatalf("Failed to create InfluxDB client: %v", err)
	}
	// Don't defer closing here, we close explicitly after everything else stopped

	// Delivery loop: the hub goroutine exclusively owns the subscriber set
	hub := ws.NewHub(cfg.WebSocket)
	dispatcher := ws.NewDispatcher(hub)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	// Ingest: MQTT broker -> decode -> InfluxDB -> dispatcher
	ingest := mqtt.NewIngest(cfg.MQTT, influxClient, dispatcher)
	if err := ingest.Connect(); err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}

	// HTTP surface: analytics queries and the WebSocket endpoint
	engine := analytics.NewEngine(influxClient.QueryAPI(), cfg.InfluxDB.Bucket)
	router := api.NewRouter(api.NewHandlers(engine, hub))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
	)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handlers.LoggingHandler(os.Stdout, cors(router)),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Received termination signal. Shutting down...")

	// Stop ingest first so no new broadcasts are produced
	ingest.Close()

	// Stop accepting requests, with a deadline for in-flight ones
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}

	// Stop the delivery loop; this closes all subscriber connections
	cancel()
	wg.Wait()

	log.Println("Closing InfluxDB client...")
	influxClient.Close()

	log.Println("Shutdown complete.")
}
