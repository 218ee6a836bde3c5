package repo

import (
	"github.com/finlab/walletcore/internal/pg"
	accountrepo "github.com/finlab/walletcore/internal/repo/account-repo"
	catalogrepo "github.com/finlab/walletcore/internal/repo/catalog-repo"
	depositrepo "github.com/finlab/walletcore/internal/repo/deposit-repo"
	orderrepo "github.com/finlab/walletcore/internal/repo/order-repo"
	servicerepo "github.com/finlab/walletcore/internal/repo/service-repo"
	transactionrepo "github.com/finlab/walletcore/internal/repo/transaction-repo"
	"github.com/finlab/walletcore/internal/service/depositservice"
	"github.com/finlab/walletcore/internal/service/ledgerservice"
	"github.com/finlab/walletcore/internal/service/orderservice"
)

type Repositories struct {
	AccountRepo     ledgerservice.AccountRepo
	TransactionRepo ledgerservice.TransactionRepo
	DepositRepo     depositservice.Repo
	OrderRepo       orderservice.Repo
	CatalogRepo     orderservice.CatalogRepo
	ServiceRepo     orderservice.ServiceRepo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	accountRepo := accountrepo.New(conn)
	transactionRepo := transactionrepo.New(conn)
	depositRepo := depositrepo.New(conn, txManager)
	orderRepo := orderrepo.New(conn, txManager)
	catalogRepo := catalogrepo.New(conn)
	serviceRepo := servicerepo.New(conn)

	return &Repositories{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		DepositRepo:     depositRepo,
		OrderRepo:       orderRepo,
		CatalogRepo:     catalogRepo,
		ServiceRepo:     serviceRepo,
	}
}
