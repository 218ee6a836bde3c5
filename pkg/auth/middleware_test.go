package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	svc := &JWTService{}
	token, err := svc.GenerateJWT(1, domain.RoleUser, time.Now().Add(time.Hour))
	assert.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedCode int
	}{
		{
			name:         "Valid token",
			header:       "Bearer " + token,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing header",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Not a bearer token",
			header:       "Basic abcdef",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Invalid token",
			header:       "Bearer garbage",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	svc := &JWTService{}
	userToken, _ := svc.GenerateJWT(1, domain.RoleUser, time.Now().Add(time.Hour))
	adminToken, _ := svc.GenerateJWT(2, domain.RoleAdmin, time.Now().Add(time.Hour))
	ownerToken, _ := svc.GenerateJWT(3, domain.RoleOwner, time.Now().Add(time.Hour))

	handler := AuthMiddleware(RequireRole(domain.RoleAdmin, domain.RoleOwner)(okHandler()))

	tests := []struct {
		name         string
		token        string
		expectedCode int
	}{
		{"User is forbidden", userToken, http.StatusForbidden},
		{"Admin is allowed", adminToken, http.StatusOK},
		{"Owner is allowed", ownerToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
