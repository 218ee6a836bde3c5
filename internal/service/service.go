package service

import (
	"github.com/finlab/walletcore/internal/config"
	"github.com/finlab/walletcore/internal/pg"
	"github.com/finlab/walletcore/internal/repo"
	depositservice "github.com/finlab/walletcore/internal/service/depositservice"
	ledgerservice "github.com/finlab/walletcore/internal/service/ledgerservice"
	orderservice "github.com/finlab/walletcore/internal/service/orderservice"
)

// Services are concrete because the ledger service backs both the user-facing
// balance handlers and the admin surface; each handler narrows it to the
// interface it needs.
type Services struct {
	LedgerService  *ledgerservice.Service
	DepositService *depositservice.Service
	OrderService   *orderservice.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, cfg *config.Config) *Services {
	ledgerService := ledgerservice.New(repo.AccountRepo, repo.TransactionRepo, txManager)
	depositService := depositservice.New(repo.DepositRepo, ledgerService, txManager, cfg.MinDepositAmount)
	orderService := orderservice.New(repo.OrderRepo, repo.CatalogRepo, repo.ServiceRepo, ledgerService, txManager)

	return &Services{
		LedgerService:  ledgerService,
		DepositService: depositService,
		OrderService:   orderService,
	}
}
