package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/finlab/walletcore/internal/pg"
	accountrepo "github.com/finlab/walletcore/internal/repo/account-repo"
	catalogrepo "github.com/finlab/walletcore/internal/repo/catalog-repo"
	depositrepo "github.com/finlab/walletcore/internal/repo/deposit-repo"
	orderrepo "github.com/finlab/walletcore/internal/repo/order-repo"
	servicerepo "github.com/finlab/walletcore/internal/repo/service-repo"
	transactionrepo "github.com/finlab/walletcore/internal/repo/transaction-repo"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	mockTxManager := pg.NewMockTXManager(ctrl)
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.AccountRepo)
	assert.NotNil(t, repo.TransactionRepo)
	assert.NotNil(t, repo.DepositRepo)
	assert.NotNil(t, repo.OrderRepo)
	assert.NotNil(t, repo.CatalogRepo)
	assert.NotNil(t, repo.ServiceRepo)

	assert.IsType(t, &accountrepo.Repository{}, repo.AccountRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.IsType(t, &depositrepo.Repository{}, repo.DepositRepo)
	assert.IsType(t, &orderrepo.Repository{}, repo.OrderRepo)
	assert.IsType(t, &catalogrepo.Repository{}, repo.CatalogRepo)
	assert.IsType(t, &servicerepo.Repository{}, repo.ServiceRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
