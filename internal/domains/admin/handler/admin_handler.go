package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/domains/admin/model"
	"wavehouse-backend/internal/domains/admin/service"
	bookingmodel "wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/shared/middleware"
	"wavehouse-backend/internal/shared/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Handler serves admin sessions and the read-only admin views.
type Handler struct {
	service      service.ServiceInterface
	secureCookie bool
}

func NewHandler(service service.ServiceInterface, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		secureCookie: secureCookie,
	}
}

// -------------------------------------------------------------------
// SESSIONS
// -------------------------------------------------------------------

// Login exchanges the admin password for a session token
// @Router /v1/admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req, middleware.GetClientIP(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, resp.Token, maxAge, "/", "", h.secureCookie, true)

	response.Success(c, http.StatusOK, resp)
}

// Logout ends the current session, or every session with ?all=true
// @Router /v1/admin/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.GetAdminClaims(c)
	if !ok {
		response.Unauthorized(c, "Admin session is invalid or expired")
		return
	}

	all, _ := strconv.ParseBool(c.Query("all"))
	var err error
	if all {
		err = h.service.LogoutAll(c.Request.Context())
	} else {
		err = h.service.Logout(c.Request.Context(), claims.SessionID())
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
}

// -------------------------------------------------------------------
// READ PROJECTIONS
// -------------------------------------------------------------------

// GetStats returns booking counts by status
// @Router /v1/admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListRecent returns the newest bookings
// @Router /v1/admin/bookings/recent [get]
func (h *Handler) ListRecent(c *gin.Context) {
	limit := model.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	bookings, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, bookings, &response.Meta{
		Limit: limit,
		Total: len(bookings),
	})
}

// Dashboard renders the stats and recent bookings page
// @Router /v1/admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(c.Writer, dashboard); err != nil {
		log.Error().Err(err).Msg("Failed to render admin dashboard")
	}
}

// ExportBookings downloads bookings of a date range as XLSX
// @Router /v1/admin/bookings/export [get]
func (h *Handler) ExportBookings(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}

	file, err := h.service.ExportBookings(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("X-Total-Rows", strconv.Itoa(file.Rows))
	c.Data(http.StatusOK, xlsxContentType, file.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if status, message, code, ok := model.GetErrorResponse(err); ok {
		response.ErrorResponse(c, status, code, message)
		return
	}

	status, message, code := bookingmodel.GetErrorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("admin request failed")
	}
	response.ErrorResponse(c, status, code, message)
}
