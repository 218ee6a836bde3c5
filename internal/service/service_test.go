package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/finlab/walletcore/internal/config"
	"github.com/finlab/walletcore/internal/pg"
	"github.com/finlab/walletcore/internal/repo"
	depositservice "github.com/finlab/walletcore/internal/service/depositservice"
	ledgerservice "github.com/finlab/walletcore/internal/service/ledgerservice"
	orderservice "github.com/finlab/walletcore/internal/service/orderservice"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repos := &repo.Repositories{
		AccountRepo:     ledgerservice.NewMockAccountRepo(ctrl),
		TransactionRepo: ledgerservice.NewMockTransactionRepo(ctrl),
		DepositRepo:     depositservice.NewMockRepo(ctrl),
		OrderRepo:       orderservice.NewMockRepo(ctrl),
		CatalogRepo:     orderservice.NewMockCatalogRepo(ctrl),
		ServiceRepo:     orderservice.NewMockServiceRepo(ctrl),
	}
	txManager := pg.NewMockTXManager(ctrl)
	cfg := &config.Config{MinDepositAmount: 10000}

	services := New(repos, txManager, cfg)

	assert.NotNil(t, services.LedgerService)
	assert.NotNil(t, services.DepositService)
	assert.NotNil(t, services.OrderService)
}
