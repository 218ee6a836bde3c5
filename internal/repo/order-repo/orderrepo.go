package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"go.uber.org/zap"
)

const columns = "id, user_id, item_id, amount, payment_method, status, payment_proof, admin_notes, processed_by, processed_at, transaction_id, created_at"

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.ItemID, &o.Amount, &o.PaymentMethod, &o.Status, &o.PaymentProof,
		&o.AdminNotes, &o.ProcessedBy, &o.ProcessedAt, &o.TransactionID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (user_id, item_id, amount, payment_method, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + columns
	var saved *domain.Order
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, order.UserID, order.ItemID, order.Amount, order.PaymentMethod, order.Status, order.CreatedAt)
		var err error
		saved, err = scanOrder(row)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
        SELECT ` + columns + `
        FROM orders
        WHERE id = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `
        SELECT ` + columns + `
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `
        SELECT ` + columns + `
        FROM orders
        WHERE status = $1
        ORDER BY created_at ASC
    `
	return r.list(ctx, query, status)
}

func (r *Repository) list(ctx context.Context, query string, arg interface{}) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		zap.L().Error("can't list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.ItemID, &o.Amount, &o.PaymentMethod, &o.Status, &o.PaymentProof,
			&o.AdminNotes, &o.ProcessedBy, &o.ProcessedAt, &o.TransactionID, &o.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// AttachProof moves a PENDING order owned by userID to VALIDATING. Returns nil
// when no row matched, meaning the order already left PENDING.
func (r *Repository) AttachProof(ctx context.Context, id, userID int, proofURL string) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET payment_proof = $1, status = $2
        WHERE id = $3 AND user_id = $4 AND status = $5
        RETURNING ` + columns
	var updated *domain.Order
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, proofURL, domain.OrderValidating, id, userID, domain.OrderPending)
		var err error
		updated, err = scanOrder(row)
		if errors.Is(err, pgx.ErrNoRows) {
			updated = nil
			return nil
		}
		if err != nil {
			zap.L().Error("can't attach order proof", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Resolve conditionally finalizes an order: the update applies only while the
// stored status still equals from. Returns nil when the compare-and-swap lost.
func (r *Repository) Resolve(ctx context.Context, id int, from, to domain.OrderStatus, adminID int, notes string, transactionID *int, processedAt time.Time) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = $1, admin_notes = $2, processed_by = $3, processed_at = $4, transaction_id = $5
        WHERE id = $6 AND status = $7
        RETURNING ` + columns
	var updated *domain.Order
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, to, notes, adminID, processedAt, transactionID, id, from)
		var err error
		updated, err = scanOrder(row)
		if errors.Is(err, pgx.ErrNoRows) {
			updated = nil
			return nil
		}
		if err != nil {
			zap.L().Error("can't resolve order", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
