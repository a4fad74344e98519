package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("admin@tcgnakama.com", testSecret)
	require.NoError(t, err)

	email, err := VerifySessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin@tcgnakama.com", email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionToken("admin@tcgnakama.com", testSecret)
	require.NoError(t, err)

	_, err = VerifySessionToken(token, "other-secret")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "admin@tcgnakama.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifySessionToken(expired, testSecret)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := VerifySessionToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestAdminSessionRedirectsWithoutCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := AdminSession(testSecret)
	err := mw(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminSessionAllowsValidCookie(t *testing.T) {
	token, err := NewSessionToken("admin@tcgnakama.com", testSecret)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := AdminSession(testSecret)
	err = mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "admin@tcgnakama.com", c.Get("admin_email"))
}

func TestAdminSessionRedirectsOnTamperedToken(t *testing.T) {
	token, err := NewSessionToken("admin@tcgnakama.com", "attacker-secret")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := AdminSession(testSecret)
	err = mw(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
}
