package servicerepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	record := &domain.ServiceRecord{
		OrderID:   12,
		UserID:    1,
		Name:      "starter plan",
		Status:    domain.ServicePending,
		CreatedAt: now,
	}

	rows := pgxmock.NewRows([]string{"id"}).AddRow(5)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO services (order_id, user_id, name, status, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id")).
		WithArgs(12, 1, "starter plan", domain.ServicePending, now).
		WillReturnRows(rows)

	saved, err := repo.Create(context.Background(), record)
	assert.NoError(t, err)
	assert.Equal(t, 5, saved.ID)
}

func TestRepository_GetByOrderID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		found     bool
	}{
		{
			name: "Record exists",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "order_id", "user_id", "name", "status", "created_at"}).
					AddRow(5, 12, 1, "starter plan", "PENDING", now)
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, order_id, user_id, name, status, created_at FROM services WHERE order_id = $1")).
					WithArgs(12).
					WillReturnRows(rows)
			},
			found: true,
		},
		{
			name: "No linked service returns nil",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, order_id, user_id, name, status, created_at FROM services WHERE order_id = $1")).
					WithArgs(12).
					WillReturnError(pgx.ErrNoRows)
			},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			record, err := repo.GetByOrderID(context.Background(), 12)

			assert.NoError(t, err)
			if tt.found {
				assert.NotNil(t, record)
			} else {
				assert.Nil(t, record)
			}
		})
	}
}

func TestRepository_UpdateStatusByOrderID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Activates linked service",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE services SET status = $1 WHERE order_id = $2")).
					WithArgs(domain.ServiceActive, 12).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE services SET status = $1 WHERE order_id = $2")).
					WithArgs(domain.ServiceActive, 12).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.UpdateStatusByOrderID(context.Background(), 12, domain.ServiceActive)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
