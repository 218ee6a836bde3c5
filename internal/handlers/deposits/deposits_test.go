package deposits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/dto"
	"github.com/finlab/walletcore/pkg/auth"
)

func NewMock(t *testing.T) (*DepositHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func authedRequest(method, url, body string) *http.Request {
	r := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	return r.WithContext(context.WithValue(r.Context(), auth.AccountIDKey, 1))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateDepositHandler(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful creation",
			body: `{"amount":50000,"payment_method":"BANK_TRANSFER"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateDeposit(gomock.Any(), 1, int64(50000), "BANK_TRANSFER").
					Return(&domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, Status: domain.DepositPending}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Invalid request body",
			body:         `{"amount":"fifty"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Missing payment method",
			body:         `{"amount":50000}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Amount below the minimum",
			body: `{"amount":1,"payment_method":"BANK_TRANSFER"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateDeposit(gomock.Any(), 1, int64(1), "BANK_TRANSFER").
					Return(nil, domain.ErrValidation)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Internal server error",
			body: `{"amount":50000,"payment_method":"BANK_TRANSFER"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateDeposit(gomock.Any(), 1, int64(50000), "BANK_TRANSFER").
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.CreateDeposit(w, authedRequest(http.MethodPost, "/api/wallet/deposits", tt.body))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var body dto.DepositResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 7, body.ID)
				assert.Equal(t, "PENDING", body.Status)
			}
		})
	}
}

func TestSubmitProofHandler(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		id           string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful submission",
			id:   "7",
			body: `{"proof_url":"https://cdn.example.com/proof/7.png"}`,
			prepareMock: func() {
				service.EXPECT().
					SubmitProof(gomock.Any(), 7, 1, "https://cdn.example.com/proof/7.png").
					Return(&domain.DepositRequest{ID: 7, Status: domain.DepositValidating}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid id",
			id:           "abc",
			body:         `{"proof_url":"https://cdn.example.com/proof/7.png"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Proof url is not a url",
			id:           "7",
			body:         `{"proof_url":"not-a-url"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Deposit not found",
			id:   "7",
			body: `{"proof_url":"https://cdn.example.com/proof/7.png"}`,
			prepareMock: func() {
				service.EXPECT().
					SubmitProof(gomock.Any(), 7, 1, "https://cdn.example.com/proof/7.png").
					Return(nil, domain.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Deposit already validating",
			id:   "7",
			body: `{"proof_url":"https://cdn.example.com/proof/7.png"}`,
			prepareMock: func() {
				service.EXPECT().
					SubmitProof(gomock.Any(), 7, 1, "https://cdn.example.com/proof/7.png").
					Return(nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withURLParam(authedRequest(http.MethodPost, "/api/wallet/deposits/"+tt.id+"/proof", tt.body), "id", tt.id)
			w := httptest.NewRecorder()
			handler.SubmitProof(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetDepositsHandler(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedLen  int
	}{
		{
			name: "Successful retrieval",
			prepareMock: func() {
				service.EXPECT().
					GetUserDeposits(gomock.Any(), 1).
					Return([]domain.DepositRequest{{ID: 1}, {ID: 2}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().
					GetUserDeposits(gomock.Any(), 1).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.GetDeposits(w, authedRequest(http.MethodGet, "/api/wallet/deposits", ""))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.DepositResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, tt.expectedLen)
			}
		})
	}
}
