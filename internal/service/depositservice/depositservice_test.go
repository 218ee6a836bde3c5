package depositservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
)

const testMinAmount = 10000

func NewMock(t *testing.T) (*Service, *MockRepo, *MockLedger, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	service := New(repo, ledger, txManager, testMinAmount)
	defer ctrl.Finish()
	return service, repo, ledger, txManager
}

func passthroughTx(txManager *pg.MockTXManager) {
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()
}

func TestCreateDeposit(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		method        string
		prepareMock   func(repo *MockRepo, ledger *MockLedger)
		expectedError error
	}{
		{
			name:   "Creates a pending request",
			amount: testMinAmount,
			method: "BANK_TRANSFER",
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				ledger.EXPECT().GetAccount(gomock.Any(), 1).Return(&domain.Account{ID: 1}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, deposit *domain.DepositRequest) (*domain.DepositRequest, error) {
						deposit.ID = 7
						return deposit, nil
					})
			},
		},
		{
			name:          "Below minimum is rejected before any call",
			amount:        testMinAmount - 1,
			method:        "BANK_TRANSFER",
			prepareMock:   func(repo *MockRepo, ledger *MockLedger) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "Missing method is rejected",
			amount:        testMinAmount,
			method:        "",
			prepareMock:   func(repo *MockRepo, ledger *MockLedger) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:   "Unknown account",
			amount: testMinAmount,
			method: "CARD",
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				ledger.EXPECT().GetAccount(gomock.Any(), 1).Return(nil, domain.ErrNotFound)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:   "Storage failure",
			amount: testMinAmount,
			method: "CARD",
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				ledger.EXPECT().GetAccount(gomock.Any(), 1).Return(&domain.Account{ID: 1}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("insert failed"))
			},
			expectedError: errors.New("insert failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, ledger, _ := NewMock(t)
			tt.prepareMock(repo, ledger)

			deposit, err := service.CreateDeposit(context.Background(), 1, tt.amount, tt.method)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedError, domain.ErrValidation) || errors.Is(tt.expectedError, domain.ErrNotFound) {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, deposit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.DepositPending, deposit.Status)
				assert.Equal(t, tt.amount, deposit.Amount)
			}
		})
	}
}

func TestSubmitProof(t *testing.T) {
	tests := []struct {
		name          string
		proofURL      string
		prepareMock   func(repo *MockRepo)
		expectedError error
	}{
		{
			name:     "Moves the request to VALIDATING",
			proofURL: "https://proofs/receipt.png",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Status: domain.DepositPending}, nil)
				repo.EXPECT().AttachProof(gomock.Any(), 7, 1, "https://proofs/receipt.png").Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Status: domain.DepositValidating}, nil)
			},
		},
		{
			name:          "Empty proof url is rejected",
			proofURL:      "",
			prepareMock:   func(repo *MockRepo) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:     "Unknown deposit",
			proofURL: "https://proofs/receipt.png",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:     "Someone else's deposit reads as not found",
			proofURL: "https://proofs/receipt.png",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 2, Status: domain.DepositPending}, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:     "Already validating",
			proofURL: "https://proofs/receipt.png",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Status: domain.DepositValidating}, nil)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:     "Lost the race to a concurrent transition",
			proofURL: "https://proofs/receipt.png",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Status: domain.DepositPending}, nil)
				repo.EXPECT().AttachProof(gomock.Any(), 7, 1, "https://proofs/receipt.png").Return(nil, nil)
			},
			expectedError: domain.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := NewMock(t)
			tt.prepareMock(repo)

			deposit, err := service.SubmitProof(context.Background(), 7, 1, tt.proofURL)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, deposit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.DepositValidating, deposit.Status)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	approvedID := 42
	tests := []struct {
		name          string
		decision      domain.DepositStatus
		prepareMock   func(repo *MockRepo, ledger *MockLedger)
		expectedError error
		wantCredit    bool
	}{
		{
			name:     "Approval credits the ledger exactly once",
			decision: domain.DepositApproved,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, Status: domain.DepositValidating}, nil)
				ledger.EXPECT().Credit(gomock.Any(), 1, int64(50000), domain.TopUpTransaction,
					"deposit approved", map[string]string{"deposit_id": "7"}).Return(
					&domain.Transaction{ID: approvedID, Amount: 50000}, nil)
				repo.EXPECT().Resolve(gomock.Any(), 7, domain.DepositValidating, domain.DepositApproved,
					9, "looks good", &approvedID, gomock.AssignableToTypeOf(time.Time{})).Return(
					&domain.DepositRequest{ID: 7, Status: domain.DepositApproved, TransactionID: &approvedID}, nil)
			},
			wantCredit: true,
		},
		{
			name:     "Rejection never touches the ledger",
			decision: domain.DepositRejected,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, Status: domain.DepositValidating}, nil)
				repo.EXPECT().Resolve(gomock.Any(), 7, domain.DepositValidating, domain.DepositRejected,
					9, "looks good", nil, gomock.AssignableToTypeOf(time.Time{})).Return(
					&domain.DepositRequest{ID: 7, Status: domain.DepositRejected}, nil)
			},
		},
		{
			name:          "Bad decision is rejected",
			decision:      domain.DepositPending,
			prepareMock:   func(repo *MockRepo, ledger *MockLedger) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:     "Already resolved",
			decision: domain.DepositApproved,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Status: domain.DepositApproved}, nil)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:     "CAS loss inside the transaction surfaces as invalid state",
			decision: domain.DepositApproved,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, Status: domain.DepositValidating}, nil)
				ledger.EXPECT().Credit(gomock.Any(), 1, int64(50000), domain.TopUpTransaction,
					"deposit approved", gomock.Any()).Return(&domain.Transaction{ID: approvedID}, nil)
				repo.EXPECT().Resolve(gomock.Any(), 7, domain.DepositValidating, domain.DepositApproved,
					9, "looks good", &approvedID, gomock.AssignableToTypeOf(time.Time{})).Return(nil, nil)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:     "Ledger failure aborts the resolution",
			decision: domain.DepositApproved,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(
					&domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, Status: domain.DepositValidating}, nil)
				ledger.EXPECT().Credit(gomock.Any(), 1, int64(50000), domain.TopUpTransaction,
					"deposit approved", gomock.Any()).Return(nil, domain.ErrStorage)
			},
			expectedError: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, ledger, txManager := NewMock(t)
			passthroughTx(txManager)
			tt.prepareMock(repo, ledger)

			deposit, credit, err := service.Resolve(context.Background(), 7, 9, tt.decision, "looks good")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, deposit)
				assert.Nil(t, credit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.decision, deposit.Status)
				if tt.wantCredit {
					assert.NotNil(t, credit)
					assert.Equal(t, approvedID, credit.ID)
				} else {
					assert.Nil(t, credit)
				}
			}
		})
	}
}

func TestGetUserDeposits(t *testing.T) {
	t.Run("Returns the user's requests", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().ListByUser(gomock.Any(), 1).Return(
			[]domain.DepositRequest{{ID: 1}, {ID: 2}}, nil)

		deposits, err := service.GetUserDeposits(context.Background(), 1)
		assert.NoError(t, err)
		assert.Len(t, deposits, 2)
	})

	t.Run("Propagates storage errors", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().ListByUser(gomock.Any(), 1).Return(nil, errors.New("query failed"))

		deposits, err := service.GetUserDeposits(context.Background(), 1)
		assert.Error(t, err)
		assert.Nil(t, deposits)
	})
}

func TestGetPending(t *testing.T) {
	t.Run("Concatenates PENDING and VALIDATING", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().ListByStatus(gomock.Any(), domain.DepositPending).Return(
			[]domain.DepositRequest{{ID: 1, Status: domain.DepositPending}}, nil)
		repo.EXPECT().ListByStatus(gomock.Any(), domain.DepositValidating).Return(
			[]domain.DepositRequest{{ID: 2, Status: domain.DepositValidating}}, nil)

		queue, err := service.GetPending(context.Background())
		assert.NoError(t, err)
		assert.Len(t, queue, 2)
		assert.Equal(t, domain.DepositPending, queue[0].Status)
	})
}
