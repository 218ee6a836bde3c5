package depositrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()
	defer ctrl.Finish()

	return repo, mockDB, mockTxManager
}

func depositRows(d *domain.DepositRequest) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "amount", "payment_method", "status", "proof_url", "admin_notes", "processed_by", "processed_at", "transaction_id", "created_at"}).
		AddRow(d.ID, d.UserID, d.Amount, d.PaymentMethod, d.Status, d.ProofURL, d.AdminNotes, d.ProcessedBy, d.ProcessedAt, d.TransactionID, d.CreatedAt)
}

func passthroughTx(tx *pg.MockTXManager) {
	tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func TestRepository_Create(t *testing.T) {
	repo, mock, tx := NewMock(t)
	now := time.Now()

	deposit := &domain.DepositRequest{
		UserID:        1,
		Amount:        50000,
		PaymentMethod: "BANK_TRANSFER",
		Status:        domain.DepositPending,
		CreatedAt:     now,
	}

	passthroughTx(tx)
	saved := *deposit
	saved.ID = 7
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO deposit_requests (user_id, amount, payment_method, status, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING "+columns)).
		WithArgs(1, int64(50000), "BANK_TRANSFER", domain.DepositPending, now).
		WillReturnRows(depositRows(&saved))

	result, err := repo.Create(context.Background(), deposit)
	assert.NoError(t, err)
	assert.Equal(t, 7, result.ID)
	assert.Equal(t, domain.DepositPending, result.Status)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		expectErr bool
		found     bool
	}{
		{
			name: "Deposit exists",
			id:   7,
			mockSetup: func() {
				d := &domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, PaymentMethod: "BANK_TRANSFER", Status: domain.DepositPending, CreatedAt: now}
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+columns+" FROM deposit_requests WHERE id = $1")).
					WithArgs(7).
					WillReturnRows(depositRows(d))
			},
			found: true,
		},
		{
			name: "Deposit missing returns nil",
			id:   99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+columns+" FROM deposit_requests WHERE id = $1")).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
			found: false,
		},
		{
			name: "Database error",
			id:   7,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+columns+" FROM deposit_requests WHERE id = $1")).
					WithArgs(7).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			deposit, err := repo.GetByID(context.Background(), tt.id)

			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.found {
				assert.NotNil(t, deposit)
			} else {
				assert.Nil(t, deposit)
			}
		})
	}
}

func TestRepository_AttachProof(t *testing.T) {
	repo, mock, tx := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		updated   bool
	}{
		{
			name: "Moves pending deposit to validating",
			mockSetup: func() {
				passthroughTx(tx)
				d := &domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, PaymentMethod: "BANK_TRANSFER", Status: domain.DepositValidating, ProofURL: "https://cdn.example.com/p.png", CreatedAt: now}
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE deposit_requests SET proof_url = $1, status = $2 WHERE id = $3 AND user_id = $4 AND status = $5 RETURNING "+columns)).
					WithArgs("https://cdn.example.com/p.png", domain.DepositValidating, 7, 1, domain.DepositPending).
					WillReturnRows(depositRows(d))
			},
			updated: true,
		},
		{
			name: "No row matched returns nil",
			mockSetup: func() {
				passthroughTx(tx)
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE deposit_requests SET proof_url = $1, status = $2 WHERE id = $3 AND user_id = $4 AND status = $5 RETURNING "+columns)).
					WithArgs("https://cdn.example.com/p.png", domain.DepositValidating, 7, 1, domain.DepositPending).
					WillReturnError(pgx.ErrNoRows)
			},
			updated: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				passthroughTx(tx)
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE deposit_requests SET proof_url = $1, status = $2 WHERE id = $3 AND user_id = $4 AND status = $5 RETURNING "+columns)).
					WithArgs("https://cdn.example.com/p.png", domain.DepositValidating, 7, 1, domain.DepositPending).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			deposit, err := repo.AttachProof(context.Background(), 7, 1, "https://cdn.example.com/p.png")

			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.updated {
				assert.NotNil(t, deposit)
				assert.Equal(t, domain.DepositValidating, deposit.Status)
			} else {
				assert.Nil(t, deposit)
			}
		})
	}
}

func TestRepository_Resolve(t *testing.T) {
	repo, mock, tx := NewMock(t)
	now := time.Now()
	adminID := 2
	txID := 42

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		updated   bool
	}{
		{
			name: "Approves while status still matches",
			mockSetup: func() {
				passthroughTx(tx)
				d := &domain.DepositRequest{ID: 7, UserID: 1, Amount: 50000, PaymentMethod: "BANK_TRANSFER", Status: domain.DepositApproved, AdminNotes: "ok", ProcessedBy: &adminID, ProcessedAt: &now, TransactionID: &txID, CreatedAt: now}
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE deposit_requests SET status = $1, admin_notes = $2, processed_by = $3, processed_at = $4, transaction_id = $5 WHERE id = $6 AND status = $7 RETURNING "+columns)).
					WithArgs(domain.DepositApproved, "ok", 2, now, &txID, 7, domain.DepositValidating).
					WillReturnRows(depositRows(d))
			},
			updated: true,
		},
		{
			name: "Lost compare-and-swap returns nil",
			mockSetup: func() {
				passthroughTx(tx)
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE deposit_requests SET status = $1, admin_notes = $2, processed_by = $3, processed_at = $4, transaction_id = $5 WHERE id = $6 AND status = $7 RETURNING "+columns)).
					WithArgs(domain.DepositApproved, "ok", 2, now, &txID, 7, domain.DepositValidating).
					WillReturnError(pgx.ErrNoRows)
			},
			updated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			deposit, err := repo.Resolve(context.Background(), 7, domain.DepositValidating, domain.DepositApproved, 2, "ok", &txID, now)

			assert.NoError(t, err)
			if tt.updated {
				assert.NotNil(t, deposit)
				assert.Equal(t, domain.DepositApproved, deposit.Status)
				assert.Equal(t, &txID, deposit.TransactionID)
			} else {
				assert.Nil(t, deposit)
			}
		})
	}
}
