package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	zlog "github.com/rs/zerolog/log"

	"wavehouse-backend/internal/config"
	"wavehouse-backend/internal/infrastructure/queue"
	"wavehouse-backend/internal/shared"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Queue.RedisAddr, cfg.Redis.Password, cfg.Redis.DB),
		asynq.Config{
			Queues:          shared.QueuePriorities,
			Concurrency:     cfg.Queue.Concurrency,
			ShutdownTimeout: cfg.Booking.NotifyTimeout,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				zlog.Error().
					Err(err).
					Str("task_type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown stops fetching new tasks and waits up to ShutdownTimeout for
// active ones.
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] ✓ Gracefully stopped")
}
