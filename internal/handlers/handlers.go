package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/finlab/walletcore/docs"
	"github.com/finlab/walletcore/internal/domain"
	adminhandlers "github.com/finlab/walletcore/internal/handlers/admin"
	balancehandlers "github.com/finlab/walletcore/internal/handlers/balance"
	deposithandlers "github.com/finlab/walletcore/internal/handlers/deposits"
	orderhandlers "github.com/finlab/walletcore/internal/handlers/orders"
	"github.com/finlab/walletcore/internal/service"
	"github.com/finlab/walletcore/pkg/auth"
)

type DepositHandler interface {
	CreateDeposit(w http.ResponseWriter, r *http.Request)
	SubmitProof(w http.ResponseWriter, r *http.Request)
	GetDeposits(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	SubmitProof(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetLedger(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	CreateAccount(w http.ResponseWriter, r *http.Request)
	GetAccount(w http.ResponseWriter, r *http.Request)
	AdjustBalance(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	CheckConsistency(w http.ResponseWriter, r *http.Request)
	GetPendingDeposits(w http.ResponseWriter, r *http.Request)
	ResolveDeposit(w http.ResponseWriter, r *http.Request)
	GetPendingOrders(w http.ResponseWriter, r *http.Request)
	ResolveOrder(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	DepositHandler DepositHandler
	OrderHandler   OrderHandler
	BalanceHandler BalanceHandler
	AdminHandler   AdminHandler

	idempotency func(http.Handler) http.Handler
}

// New wires the handlers. idempotency may be nil when no replay cache is
// configured.
func New(s *service.Services, idempotency func(http.Handler) http.Handler) *Handlers {
	return &Handlers{
		DepositHandler: deposithandlers.New(s.DepositService),
		OrderHandler:   orderhandlers.New(s.OrderService),
		BalanceHandler: balancehandlers.New(s.LedgerService),
		AdminHandler:   adminhandlers.New(s.DepositService, s.OrderService, s.LedgerService),
		idempotency:    idempotency,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/wallet", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		if h.idempotency != nil {
			r.Use(h.idempotency)
		}
		r.Route("/deposits", func(r chi.Router) {
			r.Post("/", h.DepositHandler.CreateDeposit)
			r.Get("/", h.DepositHandler.GetDeposits)
			r.Post("/{id}/proof", h.DepositHandler.SubmitProof)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.OrderHandler.CreateOrder)
			r.Get("/", h.OrderHandler.GetOrders)
			r.Post("/{id}/proof", h.OrderHandler.SubmitProof)
		})
		r.Get("/balance", h.BalanceHandler.GetBalance)
		r.Get("/transactions", h.BalanceHandler.GetLedger)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Use(auth.RequireRole(domain.RoleAdmin, domain.RoleOwner))
		if h.idempotency != nil {
			r.Use(h.idempotency)
		}
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.AdminHandler.CreateAccount)
			r.Get("/{id}", h.AdminHandler.GetAccount)
			r.Post("/{id}/balance", h.AdminHandler.AdjustBalance)
			r.Get("/{id}/transactions", h.AdminHandler.GetTransactions)
			r.Get("/{id}/consistency", h.AdminHandler.CheckConsistency)
		})
		r.Route("/deposits", func(r chi.Router) {
			r.Get("/pending", h.AdminHandler.GetPendingDeposits)
			r.Post("/{id}/resolve", h.AdminHandler.ResolveDeposit)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/pending", h.AdminHandler.GetPendingOrders)
			r.Post("/{id}/resolve", h.AdminHandler.ResolveOrder)
		})
	})

	return r
}
