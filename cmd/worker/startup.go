package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"wavehouse-backend/internal/config"
	"wavehouse-backend/internal/infrastructure/queue"
)

const serviceName = "wavehouse-worker"

// startServices performs health checks and logs startup information
func startServices(cfg *config.Config) error {
	log.Println("============================================")
	log.Println("🚀 Wave House Worker Starting...")
	log.Println("============================================")

	log.Println("⏳ Checking Redis Connection...")
	opt := queue.RedisOpt(cfg.Queue.RedisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err := queue.Ping(context.Background(), opt, 5*time.Second); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Println("✓ Redis Connection: OK")

	go startHealthCheckServer(cfg.Queue.HealthAddr)

	return nil
}

// startHealthCheckServer starts HTTP server for health checks
func startHealthCheckServer(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthCheckHandler)
	mux.HandleFunc("/ready", readyCheckHandler)

	log.Printf("[Health] Starting health check server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[Health] Failed to start: %v\n", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"UP","service":"` + serviceName + `"}`))
}

// readyCheckHandler handles /ready endpoint (Kubernetes readiness probe)
func readyCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"READY"}`))
}
