package transactionrepo

import (
	"context"
	"encoding/json"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"go.uber.org/zap"
)

// Repository appends to and reads the transaction log. There is no update or
// delete statement here: the log is append-only.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	var metadata []byte
	if tx.Metadata != nil {
		var err error
		metadata, err = json.Marshal(tx.Metadata)
		if err != nil {
			zap.L().Error("can't marshal transaction metadata", zap.Error(err))
			return nil, err
		}
	}

	query := `
        INSERT INTO transactions (account_id, type, amount, balance_after, description, reference, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		tx.AccountID, tx.Type, tx.Amount, tx.BalanceAfter, tx.Description, tx.Reference, metadata, tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]domain.Transaction, error) {
	query := `
        SELECT id, account_id, type, amount, balance_after, description, reference, metadata, created_at
        FROM transactions
        WHERE account_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var metadata []byte
		err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.BalanceAfter, &tx.Description, &tx.Reference, &metadata, &tx.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
				zap.L().Error("can't unmarshal transaction metadata", zap.Error(err))
				return nil, err
			}
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// SumByAccount recomputes the balance projection from the log.
func (r *Repository) SumByAccount(ctx context.Context, accountID int) (int64, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE account_id = $1
    `
	var sum int64
	err := r.db.QueryRow(ctx, query, accountID).Scan(&sum)
	if err != nil {
		zap.L().Error("can't sum transactions", zap.Error(err))
		return 0, err
	}
	return sum, nil
}
