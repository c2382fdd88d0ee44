package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticket-mailer/internal/config"
	"ticket-mailer/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r.Context())))
	})
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	handler := Middleware(NewHMACVerifier(testSecret), logger.NewWriterLogger(io.Discard))(protectedHandler())

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "organizer-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/send-emails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "organizer-1", rec.Body.String())
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	handler := Middleware(NewHMACVerifier(testSecret), logger.NewWriterLogger(io.Discard))(protectedHandler())

	hour := time.Now().Add(time.Hour).Unix()
	wrongSecret := signToken(t, "other", jwt.MapClaims{"sub": "x", "exp": hour})
	expired := signToken(t, testSecret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()})
	noExpiry := signToken(t, testSecret, jwt.MapClaims{"sub": "x"})
	noSubject := signToken(t, testSecret, jwt.MapClaims{"exp": hour})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + wrongSecret,
		"expired":        "Bearer " + expired,
		"no expiry":      "Bearer " + noExpiry,
		"no subject":     "Bearer " + noSubject,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/send-emails", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMiddlewareWithoutVerifierIsOpen(t *testing.T) {
	handler := Middleware(nil, logger.NewWriterLogger(io.Discard))(protectedHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sequence", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewVerifier(context.Background(), config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	assert.IsType(t, &HMACVerifier{}, v)
}
