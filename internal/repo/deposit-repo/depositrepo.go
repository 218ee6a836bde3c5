package depositrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"go.uber.org/zap"
)

const columns = "id, user_id, amount, payment_method, status, proof_url, admin_notes, processed_by, processed_at, transaction_id, created_at"

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

func scanDeposit(row pgx.Row) (*domain.DepositRequest, error) {
	var d domain.DepositRequest
	err := row.Scan(&d.ID, &d.UserID, &d.Amount, &d.PaymentMethod, &d.Status, &d.ProofURL,
		&d.AdminNotes, &d.ProcessedBy, &d.ProcessedAt, &d.TransactionID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, deposit *domain.DepositRequest) (*domain.DepositRequest, error) {
	query := `
        INSERT INTO deposit_requests (user_id, amount, payment_method, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + columns
	var saved *domain.DepositRequest
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, deposit.UserID, deposit.Amount, deposit.PaymentMethod, deposit.Status, deposit.CreatedAt)
		var err error
		saved, err = scanDeposit(row)
		if err != nil {
			zap.L().Error("can't save deposit request", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.DepositRequest, error) {
	query := `
        SELECT ` + columns + `
        FROM deposit_requests
        WHERE id = $1
    `
	deposit, err := scanDeposit(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get deposit request", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.DepositRequest, error) {
	query := `
        SELECT ` + columns + `
        FROM deposit_requests
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.DepositRequest, error) {
	query := `
        SELECT ` + columns + `
        FROM deposit_requests
        WHERE status = $1
        ORDER BY created_at ASC
    `
	return r.list(ctx, query, status)
}

func (r *Repository) list(ctx context.Context, query string, arg interface{}) ([]domain.DepositRequest, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		zap.L().Error("can't list deposit requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.DepositRequest
	for rows.Next() {
		var d domain.DepositRequest
		err := rows.Scan(&d.ID, &d.UserID, &d.Amount, &d.PaymentMethod, &d.Status, &d.ProofURL,
			&d.AdminNotes, &d.ProcessedBy, &d.ProcessedAt, &d.TransactionID, &d.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan deposit row", zap.Error(err))
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// AttachProof moves a PENDING deposit owned by userID to VALIDATING. Returns
// nil when no row matched, meaning the deposit already left PENDING.
func (r *Repository) AttachProof(ctx context.Context, id, userID int, proofURL string) (*domain.DepositRequest, error) {
	query := `
        UPDATE deposit_requests
        SET proof_url = $1, status = $2
        WHERE id = $3 AND user_id = $4 AND status = $5
        RETURNING ` + columns
	var updated *domain.DepositRequest
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, proofURL, domain.DepositValidating, id, userID, domain.DepositPending)
		var err error
		updated, err = scanDeposit(row)
		if errors.Is(err, pgx.ErrNoRows) {
			updated = nil
			return nil
		}
		if err != nil {
			zap.L().Error("can't attach deposit proof", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Resolve conditionally finalizes a deposit: the update applies only while the
// stored status still equals from. Returns nil when the compare-and-swap lost.
func (r *Repository) Resolve(ctx context.Context, id int, from, to domain.DepositStatus, adminID int, notes string, transactionID *int, processedAt time.Time) (*domain.DepositRequest, error) {
	query := `
        UPDATE deposit_requests
        SET status = $1, admin_notes = $2, processed_by = $3, processed_at = $4, transaction_id = $5
        WHERE id = $6 AND status = $7
        RETURNING ` + columns
	var updated *domain.DepositRequest
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, to, notes, adminID, processedAt, transactionID, id, from)
		var err error
		updated, err = scanDeposit(row)
		if errors.Is(err, pgx.ErrNoRows) {
			updated = nil
			return nil
		}
		if err != nil {
			zap.L().Error("can't resolve deposit request", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
