package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	bookingmodel "wavehouse-backend/internal/domains/booking/model"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

type LoginRequest struct {
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required.Error("password is required"), validation.Length(1, 200)),
	)
	if err != nil {
		return NewInvalidRequestError(err.Error())
	}
	return nil
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session is the server-side record of a logged in admin.
type Session struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportRequest selects bookings dated within [From, To].
type ExportRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (r ExportRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required, validation.Date(bookingmodel.DateLayout).Error("from must be YYYY-MM-DD")),
		validation.Field(&r.To, validation.Required, validation.Date(bookingmodel.DateLayout).Error("to must be YYYY-MM-DD")),
	)
	if err != nil {
		return NewInvalidRequestError(err.Error())
	}
	return nil
}

// ExportFile is a rendered spreadsheet.
type ExportFile struct {
	Filename string
	Content  []byte
	Rows     int
}

// Dashboard is what the admin dashboard page renders.
type Dashboard struct {
	Stats       bookingmodel.Stats
	Recent      []bookingmodel.BookingResponse
	GeneratedAt time.Time
}
