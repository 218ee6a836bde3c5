package accountrepo

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

func (r *Repository) Create(ctx context.Context, role domain.Role) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (role, balance)
        VALUES ($1, 0)
        RETURNING id, role, balance, created_at
    `
	row := r.db.QueryRow(ctx, query, role)
	var account domain.Account
	err := row.Scan(&account.ID, &account.Role, &account.Balance, &account.CreatedAt)
	if err != nil {
		zap.L().Error("can't create account", zap.Error(err))
		return nil, err
	}
	return &account, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Account, error) {
	query := `
        SELECT id, role, balance, created_at
        FROM accounts
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, query, id)
	var account domain.Account
	err := row.Scan(&account.ID, &account.Role, &account.Balance, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get account", zap.Error(err))
		return nil, err
	}
	return &account, nil
}

// GetForUpdate takes the row lock serializing ledger mutations for one
// account. Must run inside a transaction started by the TXManager.
func (r *Repository) GetForUpdate(ctx context.Context, id int) (*domain.Account, error) {
	query := `
        SELECT id, role, balance, created_at
        FROM accounts
        WHERE id = $1
        FOR UPDATE
    `
	row := r.db.QueryRow(ctx, query, id)
	var account domain.Account
	err := row.Scan(&account.ID, &account.Role, &account.Balance, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock account", zap.Error(err))
		return nil, err
	}
	return &account, nil
}

func (r *Repository) UpdateBalance(ctx context.Context, id int, balance int64) error {
	query := `
        UPDATE accounts
        SET balance = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, balance, id)
	if err != nil {
		zap.L().Error("can't update account balance", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListIDs(ctx context.Context) ([]int, error) {
	query := `
        SELECT id
        FROM accounts
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan account id", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
