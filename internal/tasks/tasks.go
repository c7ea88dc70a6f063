// Package tasks defines the background jobs processed by the worker binary.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypePixExpire resolves a PIX charge to expired once its deadline passes.
const TypePixExpire = "pix:expire"

// PixExpirePayload identifies the charge to resolve.
type PixExpirePayload struct {
	ChargeID string `json:"chargeId"`
}

// NewPixExpireTask builds the expiry task for a charge.
func NewPixExpireTask(chargeID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PixExpirePayload{ChargeID: chargeID})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return asynq.NewTask(TypePixExpire, payload), nil
}

// Scheduler enqueues background jobs through asynq.
type Scheduler struct {
	Client *asynq.Client
}

// SchedulePixExpiry enqueues the expiry task to run at the charge deadline.
// The task id is derived from the charge id so rescheduling the same charge
// is a no-op rather than a duplicate.
func (s Scheduler) SchedulePixExpiry(ctx context.Context, chargeID string, at time.Time) error {
	if s.Client == nil {
		return fmt.Errorf("tasks: asynq client not configured")
	}
	task, err := NewPixExpireTask(chargeID)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task,
		asynq.ProcessAt(at),
		asynq.TaskID("pix-expire:"+chargeID),
		asynq.MaxRetry(5),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue %s: %w", TypePixExpire, err)
	}
	return nil
}
