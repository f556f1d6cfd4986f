package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/domains/booking/service"
	"wavehouse-backend/internal/shared/response"
)

// AdminHandler serves the booking operations behind the admin session guard.
type AdminHandler struct {
	service service.ServiceInterface
}

func NewAdminHandler(service service.ServiceInterface) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// ChangeStatus applies a status transition
// @Router /v1/admin/bookings/:id/status [patch]
func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation,
			"Invalid request body", map[string]string{"body": err.Error()})
		return
	}

	booking, err := h.service.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// BlockSlot reserves an interval for the studio
// @Router /v1/admin/blocked-slots [post]
func (h *AdminHandler) BlockSlot(c *gin.Context) {
	var req model.BlockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation,
			"Invalid request body", map[string]string{"body": err.Error()})
		return
	}

	slot, err := h.service.BlockSlot(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, slot)
}

// UnblockSlot deletes a blocked slot
// @Router /v1/admin/blocked-slots/:id [delete]
func (h *AdminHandler) UnblockSlot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.UnblockSlot(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation,
			"Invalid id", map[string]string{param: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}
