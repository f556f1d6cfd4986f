package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingCreatedPayload is the snapshot handed to the notification worker.
// It is self-contained so the worker never reads the store.
type BookingCreatedPayload struct {
	BookingID      uuid.UUID       `json:"booking_id"`
	Reference      string          `json:"reference"`
	ServiceType    ServiceType     `json:"service_type"`
	ServiceTitle   string          `json:"service_title"`
	Date           string          `json:"date"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Status         BookingStatus   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`

	ClientID    uuid.UUID `json:"client_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	ClientPhone string    `json:"client_phone"`

	CreatedAt string `json:"created_at"` // RFC3339 format
}
