package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/domains/booking/service"
	"wavehouse-backend/internal/shared/response"
)

// PublicHandler serves the booking form and the availability calendar.
type PublicHandler struct {
	service service.ServiceInterface
}

func NewPublicHandler(service service.ServiceInterface) *PublicHandler {
	return &PublicHandler{
		service: service,
	}
}

// -------------------------------------------------------------------
// SUBMIT BOOKING
// -------------------------------------------------------------------

// SubmitBooking creates a pending booking
// @Router /v1/bookings [post]
func (h *PublicHandler) SubmitBooking(c *gin.Context) {
	resp, ok := h.submit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LegacySubmitBooking is SubmitBooking with the snake_case id the old form reads.
// @Router /submit-booking [post]
func (h *PublicHandler) LegacySubmitBooking(c *gin.Context) {
	resp, ok := h.submit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":        resp.Success,
		"message":        resp.Message,
		"bookingId":      resp.BookingID,
		"booking_id":     resp.BookingID,
		"reference":      resp.Reference,
		"status":         resp.Status,
		"estimatedPrice": resp.EstimatedPrice,
	})
}

func (h *PublicHandler) submit(c *gin.Context) (*model.SubmitBookingResponse, bool) {
	var req model.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation,
			"Invalid request body", map[string]string{"body": err.Error()})
		return nil, false
	}

	resp, err := h.service.SubmitBooking(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return resp, true
}

// -------------------------------------------------------------------
// AVAILABILITY
// -------------------------------------------------------------------

// GetAvailability lists the unavailable intervals of a date
// @Router /v1/availability [get]
func (h *PublicHandler) GetAvailability(c *gin.Context) {
	resp, ok := h.availability(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LegacyGetAvailability adds the snake_case slot list.
// @Router /availability [get]
func (h *PublicHandler) LegacyGetAvailability(c *gin.Context) {
	resp, ok := h.availability(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":              resp.Date,
		"unavailableSlots":  resp.UnavailableSlots,
		"unavailable_slots": resp.UnavailableSlots,
	})
}

func (h *PublicHandler) availability(c *gin.Context) (*model.AvailabilityResponse, bool) {
	date := c.Query("date")
	if date == "" {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation,
			"date is required", map[string]string{"date": "required"})
		return nil, false
	}

	resp, err := h.service.GetAvailability(c.Request.Context(), date)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return resp, true
}

// -------------------------------------------------------------------
// ERROR MAPPING
// -------------------------------------------------------------------

func handleError(c *gin.Context, err error) {
	status, message, code := model.GetErrorResponse(err)

	var be *model.BookingError
	if !errors.As(err, &be) {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected booking error")
		response.ErrorResponse(c, status, code, message)
		return
	}

	switch {
	case be.Conflict != nil:
		response.ErrorWithDetails(c, status, code, message, gin.H{
			"start": be.Conflict.Start.String(),
			"end":   be.Conflict.End.String(),
			"type":  be.Conflict.Type,
		})
	case len(be.Details) > 0:
		response.ErrorWithDetails(c, status, code, message, be.Details)
	default:
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("code", code).Str("path", c.FullPath()).Msg("booking request failed")
		}
		response.ErrorResponse(c, status, code, message)
	}
}
