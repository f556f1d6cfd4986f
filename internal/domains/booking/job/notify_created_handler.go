package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/infrastructure/email"
	"wavehouse-backend/internal/shared/utils"
)

const clientSubject = "Wave House Booking Confirmation"

// ============================================
// Booking Created Notification Handler
// ============================================

type NotifyCreatedHandler struct {
	emailService email.EmailService
	studioEmail  string
}

// NewNotifyCreatedHandler sends the confirmation to studioEmail and to the
// client of the booking.
func NewNotifyCreatedHandler(emailService email.EmailService, studioEmail string) *NotifyCreatedHandler {
	return &NotifyCreatedHandler{
		emailService: emailService,
		studioEmail:  studioEmail,
	}
}

func (h *NotifyCreatedHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.BookingCreatedPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal BookingCreated payload")
		return err
	}

	log.Info().
		Str("booking_id", payload.BookingID.String()).
		Str("reference", payload.Reference).
		Msg("Processing booking notification")

	html, err := email.RenderBookingConfirmation(toEmailData(&payload, h.studioEmail))
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	var errs []error
	if h.studioEmail != "" {
		err := h.emailService.SendEmail(ctx, email.EmailRequest{
			To:      []string{h.studioEmail},
			Subject: studioSubject(&payload),
			Body:    html,
			IsHTML:  true,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("studio email: %w", err))
		}
	}

	err = h.emailService.SendEmail(ctx, email.EmailRequest{
		To:      []string{payload.ClientEmail},
		Subject: clientSubject,
		Body:    html,
		IsHTML:  true,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("client email: %w", err))
	}

	if len(errs) > 0 {
		err := model.NewNotificationError(errors.Join(errs...))
		log.Error().
			Err(err).
			Str("booking_id", payload.BookingID.String()).
			Msg("Failed to send booking notification")
		return err
	}

	log.Info().
		Str("booking_id", payload.BookingID.String()).
		Str("client_email", payload.ClientEmail).
		Msg("Booking notification sent successfully")

	return nil
}

func studioSubject(p *model.BookingCreatedPayload) string {
	return "New Booking Request - " + p.ServiceTitle
}

func toEmailData(p *model.BookingCreatedPayload, contact string) email.BookingEmailData {
	status := string(p.Status)
	if status != "" {
		status = strings.ToUpper(status[:1]) + status[1:]
	}
	price := ""
	if !p.EstimatedPrice.IsZero() {
		price = p.EstimatedPrice.StringFixed(2)
	}
	return email.BookingEmailData{
		Reference:      p.Reference,
		ClientName:     p.ClientName,
		ClientEmail:    p.ClientEmail,
		ClientPhone:    p.ClientPhone,
		Service:        p.ServiceTitle,
		Date:           p.Date,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		Status:         status,
		Notes:          p.Notes,
		EstimatedPrice: price,
		ContactEmail:   contact,
	}
}
