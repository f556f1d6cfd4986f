package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wavehouse-backend/internal/domains/admin/service"
	bookingrepo "wavehouse-backend/internal/domains/booking/repository"
	infraCache "wavehouse-backend/internal/infrastructure/cache"
	"wavehouse-backend/internal/shared/middleware"
	"wavehouse-backend/pkg/jwt"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := service.NewAdminService(bookingrepo.NewMemoryStore(), infraCache.NewMemoryCache(),
		jwt.NewManager("secret"), service.Config{PasswordHash: hash, SessionTTL: time.Hour})
	h := NewHandler(svc, false)

	r := gin.New()
	admin := r.Group("/api/v1/admin")
	admin.POST("/login", h.Login)

	protected := admin.Group("", middleware.AuthMiddleware(svc), middleware.AdminMiddleware())
	protected.POST("/logout", h.Logout)
	protected.GET("/stats", h.GetStats)
	protected.GET("/bookings/recent", h.ListRecent)
	protected.GET("/bookings/export", h.ExportBookings)
	protected.GET("/dashboard", h.Dashboard)
	return r
}

func login(t *testing.T, r http.Handler) (string, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token, w
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_SetsCookieAndToken(t *testing.T) {
	r := newRouter(t)
	_, w := login(t, r)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_WrongPasswordIs401(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ADM001")
}

func TestLogin_ThrottledIs429(t *testing.T) {
	r := newRouter(t)

	var w *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", "garbage").Code)
}

func TestStatsAndRecent(t *testing.T) {
	r := newRouter(t)
	token, _ := login(t, r)

	w := get(r, "/api/v1/admin/stats", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = get(r, "/api/v1/admin/bookings/recent?limit=5", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":5`)

	w = get(r, "/api/v1/admin/bookings/recent?limit=abc", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard_RendersHTML(t *testing.T) {
	r := newRouter(t)
	token, _ := login(t, r)

	w := get(r, "/api/v1/admin/dashboard", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "WAVE HOUSE ADMIN DASHBOARD")
	assert.Contains(t, w.Body.String(), "No bookings yet")
}

func TestExportBookings(t *testing.T) {
	r := newRouter(t)
	token, _ := login(t, r)

	w := get(r, "/api/v1/admin/bookings/export?from=2025-06-01&to=2025-06-30", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings_2025-06-01_2025-06-30.xlsx")
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = get(r, "/api/v1/admin/bookings/export?from=2025-06-30&to=2025-06-01", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	r := newRouter(t)
	token, _ := login(t, r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", token).Code)
}

func TestLogoutAll_RevokesOtherSessions(t *testing.T) {
	r := newRouter(t)
	first, _ := login(t, r)
	second, _ := login(t, r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout?all=true", nil)
	req.Header.Set("Authorization", "Bearer "+second)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", first).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", second).Code)
}
