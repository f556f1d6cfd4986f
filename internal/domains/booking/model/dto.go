package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// SUBMIT BOOKING
// =====================================================

// SubmitBookingRequest is the public booking form.
type SubmitBookingRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"serviceType"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Notes       string `json:"notes"`
}

func (r SubmitBookingRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat,
			validation.Length(3, 100),
		),
		validation.Field(&r.Phone,
			validation.Required.Error("phone is required"),
			validation.Length(3, 20),
		),
		validation.Field(&r.ServiceType,
			validation.Required.Error("serviceType is required"),
			validation.By(func(v interface{}) error {
				if !ServiceType(v.(string)).Valid() {
					return errors.New("unknown service type")
				}
				return nil
			}),
		),
		validation.Field(&r.Date,
			validation.Required.Error("date is required"),
			validation.Date(DateLayout).Error("date must be YYYY-MM-DD"),
		),
		validation.Field(&r.StartTime,
			validation.Required.Error("startTime is required"),
			validation.Date(TimeLayout).Error("startTime must be HH:MM"),
		),
		validation.Field(&r.EndTime,
			validation.Required.Error("endTime is required"),
			validation.Date(TimeLayout).Error("endTime must be HH:MM"),
		),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
	return toValidationError(err)
}

// BookingInput is a validated, parsed SubmitBookingRequest.
type BookingInput struct {
	Name        string
	Email       string
	Phone       string
	ServiceType ServiceType
	Date        time.Time
	Interval    Interval
	Notes       string
}

// Parse validates the request shape and the interval.
func (r SubmitBookingRequest) Parse() (*BookingInput, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	r.Notes = strings.TrimSpace(r.Notes)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	date, err := ParseDate(r.Date)
	if err != nil {
		return nil, NewValidationError(err.Error(), map[string]string{"date": err.Error()})
	}
	interval, err := NewInterval(r.StartTime, r.EndTime)
	if err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	return &BookingInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		ServiceType: ServiceType(r.ServiceType),
		Date:        date,
		Interval:    interval,
		Notes:       r.Notes,
	}, nil
}

// NormalizeEmail is the client identity key: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SubmitBookingResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	BookingID      uuid.UUID       `json:"bookingId"`
	Reference      string          `json:"reference"`
	Status         BookingStatus   `json:"status"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// =====================================================
// AVAILABILITY
// =====================================================

type SlotResponse struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	Type  UnavailableType `json:"type"`
}

type AvailabilityResponse struct {
	Date             string         `json:"date"`
	UnavailableSlots []SlotResponse `json:"unavailableSlots"`
}

func NewAvailabilityResponse(date time.Time, intervals []UnavailableInterval) *AvailabilityResponse {
	slots := make([]SlotResponse, len(intervals))
	for i, in := range intervals {
		slots[i] = SlotResponse{
			Start: in.Start.String(),
			End:   in.End.String(),
			Type:  in.Type,
		}
	}
	return &AvailabilityResponse{
		Date:             FormatDate(date),
		UnavailableSlots: slots,
	}
}

// =====================================================
// ADMIN OPERATIONS
// =====================================================

type BlockSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

func (r BlockSlotRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Required, validation.Date(DateLayout).Error("date must be YYYY-MM-DD")),
		validation.Field(&r.StartTime, validation.Required, validation.Date(TimeLayout).Error("startTime must be HH:MM")),
		validation.Field(&r.EndTime, validation.Required, validation.Date(TimeLayout).Error("endTime must be HH:MM")),
		validation.Field(&r.Reason, validation.Length(0, 200)),
	)
	return toValidationError(err)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(string(StatusPending), string(StatusConfirmed), string(StatusCancelled)),
		),
	)
	return toValidationError(err)
}

// BookingResponse is the admin view of a booking.
type BookingResponse struct {
	ID             uuid.UUID       `json:"id"`
	Reference      string          `json:"reference"`
	ClientID       uuid.UUID       `json:"clientId"`
	ClientName     string          `json:"clientName,omitempty"`
	ClientEmail    string          `json:"clientEmail,omitempty"`
	ServiceType    ServiceType     `json:"serviceType"`
	Date           string          `json:"date"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	Status         BookingStatus   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func NewBookingResponse(b *BookingWithClient) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		Reference:      b.Reference,
		ClientID:       b.ClientID,
		ClientName:     b.ClientName,
		ClientEmail:    b.ClientEmail,
		ServiceType:    b.ServiceType,
		Date:           FormatDate(b.Date),
		StartTime:      b.StartTime.String(),
		EndTime:        b.EndTime.String(),
		Status:         b.Status,
		Notes:          b.Notes,
		EstimatedPrice: b.EstimatedPrice,
		CreatedAt:      b.CreatedAt,
	}
}

type BlockedSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewBlockedSlotResponse(s *BlockedSlot) BlockedSlotResponse {
	return BlockedSlotResponse{
		ID:        s.ID,
		Date:      FormatDate(s.Date),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
		Reason:    s.Reason,
		CreatedAt: s.CreatedAt,
	}
}

// toValidationError flattens ozzo field errors into a BookingError.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for field, fe := range fieldErrs {
			details[field] = fe.Error()
		}
		return NewValidationError("Invalid booking request: "+fieldErrs.Error(), details)
	}
	return NewValidationError(err.Error(), nil)
}
