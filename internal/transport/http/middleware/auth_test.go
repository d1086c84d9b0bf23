package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, secret string, userID int64, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// echoUser writes the user id found in the context, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := GetUserIDFromContext(r.Context()); ok {
		httputil.WriteJSON(w, http.StatusOK, map[string]int64{"user_id": id})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"user": "anonymous"})
})

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantErr  string
	}{
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 42, time.Minute))
			},
			wantCode: http.StatusOK,
		},
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, testSecret, 42, time.Minute)})
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "missing token",
			setup:    func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
			wantErr:  httputil.ErrCodeUnauthorized,
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 42, -time.Minute))
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  model.CodeTokenExpired,
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other", 42, time.Minute))
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  model.CodeTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			AuthMiddleware(testSecret)(echoUser).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantErr != "" {
				var resp httputil.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantErr, resp.Error.Code)
				return
			}
			var body map[string]int64
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, int64(42), body["user_id"])
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := OptionalAuthMiddleware(testSecret)(echoUser)

	anonymous := httptest.NewRecorder()
	handler.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/forum/", nil))
	assert.Equal(t, http.StatusOK, anonymous.Code)
	assert.JSONEq(t, `{"user":"anonymous"}`, anonymous.Body.String())

	bad := httptest.NewRequest(http.MethodGet, "/forum/", nil)
	bad.Header.Set("Authorization", "Bearer garbage")
	badRR := httptest.NewRecorder()
	handler.ServeHTTP(badRR, bad)
	assert.Equal(t, http.StatusOK, badRR.Code)
	assert.JSONEq(t, `{"user":"anonymous"}`, badRR.Body.String())

	good := httptest.NewRequest(http.MethodGet, "/forum/", nil)
	good.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7, time.Minute))
	goodRR := httptest.NewRecorder()
	handler.ServeHTTP(goodRR, good)
	assert.JSONEq(t, `{"user_id":7}`, goodRR.Body.String())
}
