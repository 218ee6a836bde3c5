package servicerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, record *domain.ServiceRecord) (*domain.ServiceRecord, error) {
	query := `
        INSERT INTO services (order_id, user_id, name, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, record.OrderID, record.UserID, record.Name, record.Status, record.CreatedAt).Scan(&record.ID)
	if err != nil {
		zap.L().Error("can't save service record", zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID int) (*domain.ServiceRecord, error) {
	query := `
        SELECT id, order_id, user_id, name, status, created_at
        FROM services
        WHERE order_id = $1
    `
	row := r.db.QueryRow(ctx, query, orderID)
	var record domain.ServiceRecord
	err := row.Scan(&record.ID, &record.OrderID, &record.UserID, &record.Name, &record.Status, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get service record", zap.Error(err))
		return nil, err
	}
	return &record, nil
}

func (r *Repository) UpdateStatusByOrderID(ctx context.Context, orderID int, status domain.ServiceStatus) error {
	query := `
        UPDATE services
        SET status = $1
        WHERE order_id = $2
    `
	_, err := r.db.Exec(ctx, query, status, orderID)
	if err != nil {
		zap.L().Error("can't update service status", zap.Error(err))
		return err
	}
	return nil
}
