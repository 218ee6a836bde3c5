package catalogrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/pg"
	"go.uber.org/zap"
)

// Repository is the read-only view of the catalog maintained outside this
// module.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.CatalogItem, error) {
	query := `
        SELECT id, name, price, category, is_active
        FROM catalog_items
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, query, id)
	var item domain.CatalogItem
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get catalog item", zap.Error(err))
		return nil, err
	}
	return &item, nil
}
