package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixHertweck/seatReservation-sub000/internal/utils"
)

const testSecret = "test-secret"

func newProtectedServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	g := e.Group("/api/supervisor")
	g.Use(JWTAuth(testSecret))
	g.Use(RequireRole("ADMIN", "SUPERVISOR"))
	g.GET("/liveview/:event", func(c echo.Context) error {
		return c.String(http.StatusOK, "stream")
	})
	return e
}

func mintToken(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.NewSupervisorToken(testSecret, "door-7", role, time.Hour)
	require.NoError(t, err)
	return token
}

func TestJWTAuthAcceptsBearerHeader(t *testing.T) {
	e := newProtectedServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "SUPERVISOR"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthAcceptsTokenQueryParam(t *testing.T) {
	// Browser WebSocket clients cannot set headers, so the token may
	// arrive as a query parameter instead.
	e := newProtectedServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42?token="+mintToken(t, "ADMIN"), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	e := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	e := newProtectedServer(t)
	token, err := utils.NewSupervisorToken("other-secret", "door-7", "SUPERVISOR", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleRejectsUnlistedRole(t *testing.T) {
	e := newProtectedServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "CUSTOMER"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	e := newProtectedServer(t)
	token, err := utils.NewSupervisorToken(testSecret, "door-7", "SUPERVISOR", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/supervisor/liveview/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
