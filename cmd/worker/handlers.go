package main

import (
	"github.com/hibiken/asynq"

	"wavehouse-backend/internal/config"
	bookingJob "wavehouse-backend/internal/domains/booking/job"
	"wavehouse-backend/internal/infrastructure/email"
	"wavehouse-backend/internal/shared"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	notifyCreated *bookingJob.NotifyCreatedHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(cfg *config.Config) *HandlerRegistry {
	return &HandlerRegistry{
		notifyCreated: bookingJob.NewNotifyCreatedHandler(newEmailService(cfg.Email), cfg.Email.StudioEmail),
	}
}

func newEmailService(cfg config.EmailConfig) email.EmailService {
	if !cfg.Enabled() {
		return email.NewLogEmailService()
	}
	return email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.From,
	})
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Booking notifications
	mux.HandleFunc(shared.TypeBookingNotifyCreated, h.notifyCreated.ProcessTask)
}
