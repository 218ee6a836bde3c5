package orderservice

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/metrics"
	"github.com/finlab/walletcore/internal/pg"
)

type Repo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	AttachProof(ctx context.Context, id, userID int, proofURL string) (*domain.Order, error)
	Resolve(ctx context.Context, id int, from, to domain.OrderStatus, adminID int, notes string, transactionID *int, processedAt time.Time) (*domain.Order, error)
}

type CatalogRepo interface {
	GetByID(ctx context.Context, id int) (*domain.CatalogItem, error)
}

type ServiceRepo interface {
	Create(ctx context.Context, record *domain.ServiceRecord) (*domain.ServiceRecord, error)
	UpdateStatusByOrderID(ctx context.Context, orderID int, status domain.ServiceStatus) error
}

type Ledger interface {
	Debit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error)
	GetBalance(ctx context.Context, accountID int) (int64, error)
	GetAccount(ctx context.Context, accountID int) (*domain.Account, error)
}

// Service drives the purchase state machine:
// PENDING -> VALIDATING -> {COMPLETED, CANCELLED, REFUNDED}.
type Service struct {
	repo        Repo
	catalogRepo CatalogRepo
	serviceRepo ServiceRepo
	ledger      Ledger
	txManager   pg.TXManager
}

func New(repo Repo, catalogRepo CatalogRepo, serviceRepo ServiceRepo, ledger Ledger, txManager pg.TXManager) *Service {
	return &Service{
		repo:        repo,
		catalogRepo: catalogRepo,
		serviceRepo: serviceRepo,
		ledger:      ledger,
		txManager:   txManager,
	}
}

// CreateOrder validates the purchase against the catalog and opens a PENDING
// order. Wallet-paid orders get a soft balance precheck; the binding check
// happens under the row lock at completion.
func (s *Service) CreateOrder(ctx context.Context, userID, itemID int, amount int64, method string) (*domain.Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}
	if _, err := s.ledger.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.catalogRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: catalog item %d", domain.ErrNotFound, itemID)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: catalog item %d is inactive", domain.ErrValidation, itemID)
	}
	if item.Price != amount {
		return nil, fmt.Errorf("%w: amount %d does not match item price %d", domain.ErrValidation, amount, item.Price)
	}

	if method == domain.PaymentMethodWallet {
		balance, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		if balance < amount {
			return nil, fmt.Errorf("%w: balance %d, need %d", domain.ErrInsufficientBalance, balance, amount)
		}
	}

	order := &domain.Order{
		UserID:        userID,
		ItemID:        itemID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        domain.OrderPending,
		CreatedAt:     time.Now(),
	}
	order, err = s.repo.Create(ctx, order)
	if err != nil {
		zap.L().Error("can't create order", zap.Error(err))
		return nil, err
	}

	// The provisioning stub is best effort; the order stands without it.
	if _, err := s.serviceRepo.Create(ctx, &domain.ServiceRecord{
		OrderID:   order.ID,
		UserID:    userID,
		Name:      item.Name,
		Status:    domain.ServicePending,
		CreatedAt: time.Now(),
	}); err != nil {
		zap.L().Warn("can't create service record", zap.Int("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *Service) SubmitProof(ctx context.Context, orderID, userID int, proofURL string) (*domain.Order, error) {
	if proofURL == "" {
		return nil, fmt.Errorf("%w: proof url is required", domain.ErrValidation)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if order.Status != domain.OrderPending {
		return nil, fmt.Errorf("%w: order %d is %s", domain.ErrInvalidState, orderID, order.Status)
	}

	updated, err := s.repo.AttachProof(ctx, orderID, userID, proofURL)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: order %d already left PENDING", domain.ErrInvalidState, orderID)
	}
	return updated, nil
}

// Resolve finalizes an order exactly once. Completing a wallet-paid order
// debits the buyer in the same atomic unit as the status compare-and-swap, so
// an order can never complete without its payment or pay without completing.
// CANCELLED and REFUNDED carry no ledger effect.
func (s *Service) Resolve(ctx context.Context, orderID, adminID int, decision domain.OrderStatus, notes string) (*domain.Order, *domain.Transaction, error) {
	if !decision.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: decision must be COMPLETED, CANCELLED or REFUNDED", domain.ErrValidation)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if order.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: order %d already %s", domain.ErrInvalidState, orderID, order.Status)
	}

	var (
		resolved *domain.Order
		payment  *domain.Transaction
	)
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var transactionID *int
		if decision == domain.OrderCompleted && order.PaymentMethod == domain.PaymentMethodWallet {
			payment, err = s.ledger.Debit(ctx, order.UserID, order.Amount, domain.PaymentTransaction,
				"order payment", map[string]string{"order_id": strconv.Itoa(order.ID)})
			if err != nil {
				return err
			}
			transactionID = &payment.ID
		}

		resolved, err = s.repo.Resolve(ctx, order.ID, order.Status, decision, adminID, notes, transactionID, time.Now())
		if err != nil {
			return err
		}
		if resolved == nil {
			metrics.GateConflictsTotal.WithLabelValues("order").Inc()
			return fmt.Errorf("%w: order %d changed state concurrently", domain.ErrInvalidState, order.ID)
		}

		serviceStatus := domain.ServiceCancelled
		if decision == domain.OrderCompleted {
			serviceStatus = domain.ServiceActive
		}
		return s.serviceRepo.UpdateStatusByOrderID(ctx, order.ID, serviceStatus)
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("order resolved",
		zap.Int("order_id", resolved.ID),
		zap.String("status", string(resolved.Status)),
		zap.Int("admin_id", adminID))
	return resolved, payment, nil
}

func (s *Service) GetUserOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("can't list user orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// GetPending returns the admin review queue, oldest first.
func (s *Service) GetPending(ctx context.Context) ([]domain.Order, error) {
	pending, err := s.repo.ListByStatus(ctx, domain.OrderPending)
	if err != nil {
		return nil, err
	}
	validating, err := s.repo.ListByStatus(ctx, domain.OrderValidating)
	if err != nil {
		return nil, err
	}
	return append(pending, validating...), nil
}
