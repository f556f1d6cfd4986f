package main

import (
	"log"

	"wavehouse-backend/internal/config"
)

// loadConfig loads the shared application config; the worker only reads
// the Redis, queue and email sections.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Config] Failed to load: %v", err)
	}

	smtp := "disabled (log only)"
	if cfg.Email.Enabled() {
		smtp = cfg.Email.SMTPHost
	}
	log.Printf("[Config] Redis: %s, SMTP: %s, Concurrency: %d",
		cfg.Queue.RedisAddr, smtp, cfg.Queue.Concurrency)

	return cfg
}
