package ledgerservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/metrics"
	"github.com/finlab/walletcore/internal/pg"
)

type AccountRepo interface {
	Create(ctx context.Context, role domain.Role) (*domain.Account, error)
	GetByID(ctx context.Context, id int) (*domain.Account, error)
	GetForUpdate(ctx context.Context, id int) (*domain.Account, error)
	UpdateBalance(ctx context.Context, id int, balance int64) error
	ListIDs(ctx context.Context) ([]int, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]domain.Transaction, error)
	SumByAccount(ctx context.Context, accountID int) (int64, error)
}

// PageSize is the fixed ledger page length.
const PageSize = 20

// Service is the only component allowed to mutate balances. Every mutation
// locks the account row, appends one transaction with a balance-after
// snapshot, and writes the new balance in the same database transaction.
type Service struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(accountRepo AccountRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

func creditType(t domain.TransactionType) bool {
	return t == domain.TopUpTransaction || t == domain.RefundTransaction || t == domain.BonusTransaction
}

func debitType(t domain.TransactionType) bool {
	return t == domain.PaymentTransaction || t == domain.PenaltyTransaction
}

// Credit increases the account balance by amount and records a transaction of
// the given credit type (TOP_UP when empty).
func (s *Service) Credit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", domain.ErrValidation)
	}
	if txType == "" {
		txType = domain.TopUpTransaction
	}
	if !creditType(txType) {
		return nil, fmt.Errorf("%w: %s is not a credit type", domain.ErrValidation, txType)
	}

	var tx *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %d", domain.ErrNotFound, accountID)
		}
		tx, err = s.append(ctx, account, txType, amount, description, metadata)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Debit decreases the account balance by amount, failing with
// ErrInsufficientBalance while holding the row lock, so the check and the
// write cannot be interleaved by a concurrent debit.
func (s *Service) Debit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", domain.ErrValidation)
	}
	if txType == "" {
		txType = domain.PaymentTransaction
	}
	if !debitType(txType) {
		return nil, fmt.Errorf("%w: %s is not a debit type", domain.ErrValidation, txType)
	}

	var tx *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %d", domain.ErrNotFound, accountID)
		}
		if account.Balance < amount {
			return fmt.Errorf("%w: balance %d, debit %d", domain.ErrInsufficientBalance, account.Balance, amount)
		}
		tx, err = s.append(ctx, account, txType, -amount, description, metadata)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Adjust sets the balance to newBalance, recording the signed delta as a
// TOP_UP or PAYMENT transaction.
func (s *Service) Adjust(ctx context.Context, accountID int, newBalance int64, reason string) (*domain.Transaction, error) {
	if newBalance < 0 {
		return nil, fmt.Errorf("%w: balance can't be negative", domain.ErrValidation)
	}

	var tx *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %d", domain.ErrNotFound, accountID)
		}
		delta := newBalance - account.Balance
		if delta == 0 {
			return fmt.Errorf("%w: balance already equals %d", domain.ErrValidation, newBalance)
		}
		txType := domain.TopUpTransaction
		if delta < 0 {
			txType = domain.PaymentTransaction
		}
		tx, err = s.append(ctx, account, txType, delta, reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// append records the transaction and the new balance; the caller must hold
// the account row lock.
func (s *Service) append(ctx context.Context, account *domain.Account, txType domain.TransactionType, amount int64, description string, metadata map[string]string) (*domain.Transaction, error) {
	newBalance := account.Balance + amount
	tx := &domain.Transaction{
		AccountID:    account.ID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  description,
		Reference:    uuid.NewString(),
		Metadata:     metadata,
		CreatedAt:    time.Now(),
	}
	tx, err := s.transactionRepo.Create(ctx, tx)
	if err != nil {
		zap.L().Error("can't append transaction", zap.Error(err))
		return nil, err
	}
	if err := s.accountRepo.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		zap.L().Error("can't update balance", zap.Error(err))
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(txType)).Inc()
	return tx, nil
}

func (s *Service) CreateAccount(ctx context.Context, role domain.Role) (*domain.Account, error) {
	switch role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleOwner:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	account, err := s.accountRepo.Create(ctx, role)
	if err != nil {
		zap.L().Error("can't create account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID int) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, accountID)
	}
	return account, nil
}

func (s *Service) GetBalance(ctx context.Context, accountID int) (int64, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// GetLedger returns one page of the account's transactions, newest first.
// Pages start at 1.
func (s *Service) GetLedger(ctx context.Context, accountID int, page int) ([]domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.ListByAccount(ctx, accountID, PageSize, (page-1)*PageSize)
	if err != nil {
		zap.L().Error("can't get ledger page", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}

// CheckConsistency recomputes the transaction sum and compares it with the
// stored balance. Used by the audit sweeper.
func (s *Service) CheckConsistency(ctx context.Context, accountID int) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, fmt.Errorf("%w: account %d", domain.ErrNotFound, accountID)
	}
	sum, err := s.transactionRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	if sum != account.Balance {
		zap.L().Error("ledger mismatch",
			zap.Int("account_id", accountID),
			zap.Int64("balance", account.Balance),
			zap.Int64("transaction_sum", sum))
		return false, nil
	}
	return true, nil
}
