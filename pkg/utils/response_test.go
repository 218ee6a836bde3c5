package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithJSON(rec, http.StatusOK, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, rec.Body.String())
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithError(rec, http.StatusNotFound, "not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"not found"}`, rec.Body.String())
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Amount int64  `json:"amount" validate:"required,gt=0"`
		Method string `json:"method" validate:"required"`
	}

	tests := []struct {
		name      string
		body      string
		expectErr bool
	}{
		{
			name:      "Valid payload",
			body:      `{"amount": 50000, "method": "BANK_TRANSFER"}`,
			expectErr: false,
		},
		{
			name:      "Malformed JSON",
			body:      `{"amount":`,
			expectErr: true,
		},
		{
			name:      "Missing required field",
			body:      `{"amount": 50000}`,
			expectErr: true,
		},
		{
			name:      "Non-positive amount",
			body:      `{"amount": 0, "method": "BANK_TRANSFER"}`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeAndValidate(req, &p)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
