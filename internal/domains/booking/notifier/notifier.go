// Package notifier hands persisted bookings to whatever tells humans about
// them. Delivery is best effort.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/domains/booking/model"
	clientmodel "wavehouse-backend/internal/domains/client/model"
	"wavehouse-backend/internal/shared"
	"wavehouse-backend/internal/shared/utils"
)

// Notifier is called once per persisted booking.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, booking *model.Booking, client *clientmodel.Client) error
}

// Enqueuer is the part of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewBookingCreatedPayload snapshots booking and client for the worker.
func NewBookingCreatedPayload(b *model.Booking, c *clientmodel.Client) *model.BookingCreatedPayload {
	return &model.BookingCreatedPayload{
		BookingID:      b.ID,
		Reference:      b.Reference,
		ServiceType:    b.ServiceType,
		ServiceTitle:   b.ServiceType.Title(),
		Date:           model.FormatDate(b.Date),
		StartTime:      b.StartTime.String(),
		EndTime:        b.EndTime.String(),
		Status:         b.Status,
		Notes:          b.Notes,
		EstimatedPrice: b.EstimatedPrice,
		ClientID:       c.ID,
		ClientName:     c.Name,
		ClientEmail:    c.Email,
		ClientPhone:    c.Phone,
		CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// =====================================================
// QUEUE NOTIFIER
// =====================================================

type queueNotifier struct {
	client Enqueuer
}

// NewQueueNotifier enqueues a booking:notify_created task; emails are
// rendered and sent by the worker.
func NewQueueNotifier(client Enqueuer) Notifier {
	return &queueNotifier{client: client}
}

func (n *queueNotifier) NotifyBookingCreated(ctx context.Context, b *model.Booking, c *clientmodel.Client) error {
	task, err := utils.MarshalTask(shared.TypeBookingNotifyCreated, NewBookingCreatedPayload(b, c))
	if err != nil {
		return model.NewNotificationError(err)
	}

	info, err := n.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueNotification),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return model.NewNotificationError(fmt.Errorf("enqueue %s: %w", shared.TypeBookingNotifyCreated, err))
	}

	log.Info().
		Str("task_id", info.ID).
		Str("booking_id", b.ID.String()).
		Str("queue", info.Queue).
		Msg("Booking notification enqueued")
	return nil
}

// =====================================================
// LOG NOTIFIER
// =====================================================

type logNotifier struct{}

// NewLogNotifier only logs. Used when no queue is configured.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) NotifyBookingCreated(_ context.Context, b *model.Booking, c *clientmodel.Client) error {
	log.Info().
		Str("booking_id", b.ID.String()).
		Str("reference", b.Reference).
		Str("client_email", c.Email).
		Str("service", string(b.ServiceType)).
		Str("date", model.FormatDate(b.Date)).
		Str("interval", b.Interval().String()).
		Msg("New booking request (no notification queue configured)")
	return nil
}
