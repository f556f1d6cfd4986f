package utils

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// MarshalTask builds an asynq task with a JSON payload.
func MarshalTask(taskType string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data, opts...), nil
}

// UnmarshalTask decodes a JSON task payload into dest. Malformed payloads
// are wrapped with asynq.SkipRetry.
func UnmarshalTask(task *asynq.Task, dest any) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}
