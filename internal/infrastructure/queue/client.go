package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// RedisOpt is the asynq connection shared by the API's client and the worker.
func RedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
}

// NewClient creates the task producer. Close it on shutdown.
func NewClient(opt asynq.RedisConnOpt) *asynq.Client {
	return asynq.NewClient(opt)
}

// Ping checks that the queue's Redis answers within timeout.
func Ping(ctx context.Context, opt asynq.RedisClientOpt, timeout time.Duration) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("queue redis ping failed: %w", err)
	}
	log.Printf("[QUEUE] Redis reachable at %s", opt.Addr)
	return nil
}
