package database

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Ping checks that the pool can reach the database within 5s.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the pool. Safe to call more than once.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Println("[DATABASE] Connection pool closed successfully")
	return nil
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	AcquireCount         int64
	AcquireDuration      time.Duration
	AcquiredConns        int32
	CanceledAcquireCount int64
	IdleConns            int32
	MaxConns             int32
	TotalConns           int32
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

// PoolWarnings lists the thresholds s crosses: utilization above 80%,
// average acquire wait above 100ms, or more than 5% cancelled acquires.
func PoolWarnings(s *PoolStats) []string {
	var warnings []string

	if s.MaxConns > 0 {
		utilization := float64(s.AcquiredConns) / float64(s.MaxConns) * 100
		if utilization > 80 {
			warnings = append(warnings, fmt.Sprintf("HIGH POOL UTILIZATION: %.1f%% (%d/%d)",
				utilization, s.AcquiredConns, s.MaxConns))
		}
	}

	if s.AcquireCount > 0 {
		avg := s.AcquireDuration / time.Duration(s.AcquireCount)
		if avg > 100*time.Millisecond {
			warnings = append(warnings, fmt.Sprintf("HIGH ACQUIRE LATENCY: %v", avg))
		}

		cancelRate := float64(s.CanceledAcquireCount) / float64(s.AcquireCount) * 100
		if cancelRate > 5 {
			warnings = append(warnings, fmt.Sprintf("HIGH CANCEL RATE: %.1f%%", cancelRate))
		}
	}

	return warnings
}

// MonitorPoolHealth logs pool warnings every interval until ctx is done.
// Run it in its own goroutine.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				log.Printf("[MONITOR] Failed to get stats: %v", err)
				continue
			}
			for _, w := range PoolWarnings(stats) {
				log.Printf("[MONITOR] %s", w)
			}

		case <-ctx.Done():
			log.Println("[MONITOR] Stopping pool health monitoring")
			return
		}
	}
}
