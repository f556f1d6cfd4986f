package job

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/infrastructure/email"
	"wavehouse-backend/internal/shared"
)

type fakeEmailService struct {
	mu     sync.Mutex
	sent   []email.EmailRequest
	failTo string
}

func (f *fakeEmailService) SendEmail(_ context.Context, req email.EmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo != "" && req.To[0] == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, req)
	return nil
}

func newTask(t *testing.T) *asynq.Task {
	t.Helper()
	payload := model.BookingCreatedPayload{
		BookingID:      uuid.New(),
		Reference:      "WH-ABCD1234",
		ServiceType:    model.ServiceEngineerRequest,
		ServiceTitle:   "Engineer Request",
		Date:           "2025-05-20",
		StartTime:      "14:00",
		EndTime:        "16:00",
		Status:         model.StatusPending,
		EstimatedPrice: decimal.NewFromInt(400),
		ClientName:     "Ada",
		ClientEmail:    "ada@example.com",
		ClientPhone:    "555",
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeBookingNotifyCreated, data)
}

func TestNotifyCreatedHandler_SendsStudioAndClientEmails(t *testing.T) {
	mailer := &fakeEmailService{}
	h := NewNotifyCreatedHandler(mailer, "studio@wavehouse.test")

	require.NoError(t, h.ProcessTask(context.Background(), newTask(t)))
	require.Len(t, mailer.sent, 2)

	assert.Equal(t, []string{"studio@wavehouse.test"}, mailer.sent[0].To)
	assert.Equal(t, "New Booking Request - Engineer Request", mailer.sent[0].Subject)
	assert.Equal(t, []string{"ada@example.com"}, mailer.sent[1].To)
	assert.Equal(t, "Wave House Booking Confirmation", mailer.sent[1].Subject)
	assert.True(t, mailer.sent[1].IsHTML)
	assert.Contains(t, mailer.sent[1].Body, "WH-ABCD1234")
	assert.Contains(t, mailer.sent[1].Body, "400.00")
	assert.Contains(t, mailer.sent[1].Body, "Pending")
}

func TestNotifyCreatedHandler_SendFailureIsNotificationError(t *testing.T) {
	mailer := &fakeEmailService{failTo: "ada@example.com"}
	h := NewNotifyCreatedHandler(mailer, "studio@wavehouse.test")

	err := h.ProcessTask(context.Background(), newTask(t))
	assert.ErrorIs(t, err, model.ErrNotification)
	// the studio copy still went out
	assert.Len(t, mailer.sent, 1)
}

func TestNotifyCreatedHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	h := NewNotifyCreatedHandler(&fakeEmailService{}, "studio@wavehouse.test")

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeBookingNotifyCreated, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
