package depositservice

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
	Create(ctx context.Context, deposit *domain.DepositRequest) (*domain.DepositRequest, error)
	GetByID(ctx context.Context, id int) (*domain.DepositRequest, error)
	ListByUser(ctx context.Context, userID int) ([]domain.DepositRequest, error)
	ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.DepositRequest, error)
	AttachProof(ctx context.Context, id, userID int, proofURL string) (*domain.DepositRequest, error)
	Resolve(ctx context.Context, id int, from, to domain.DepositStatus, adminID int, notes string, transactionID *int, processedAt time.Time) (*domain.DepositRequest, error)
}

type Ledger interface {
	Credit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error)
	GetAccount(ctx context.Context, accountID int) (*domain.Account, error)
}

// Service drives the top-up state machine:
// PENDING -> VALIDATING -> {APPROVED, REJECTED}.
type Service struct {
	repo      Repo
	ledger    Ledger
	txManager pg.TXManager
	minAmount int64
}

func New(repo Repo, ledger Ledger, txManager pg.TXManager, minAmount int64) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		txManager: txManager,
		minAmount: minAmount,
	}
}

func (s *Service) CreateDeposit(ctx context.Context, userID int, amount int64, method string) (*domain.DepositRequest, error) {
	if amount < s.minAmount {
		return nil, fmt.Errorf("%w: amount %d below minimum %d", domain.ErrValidation, amount, s.minAmount)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}
	if _, err := s.ledger.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	deposit := &domain.DepositRequest{
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        domain.DepositPending,
		CreatedAt:     time.Now(),
	}
	deposit, err := s.repo.Create(ctx, deposit)
	if err != nil {
		zap.L().Error("can't create deposit request", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (s *Service) SubmitProof(ctx context.Context, depositID, userID int, proofURL string) (*domain.DepositRequest, error) {
	if proofURL == "" {
		return nil, fmt.Errorf("%w: proof url is required", domain.ErrValidation)
	}

	deposit, err := s.repo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil || deposit.UserID != userID {
		return nil, fmt.Errorf("%w: deposit %d", domain.ErrNotFound, depositID)
	}
	if deposit.Status != domain.DepositPending {
		return nil, fmt.Errorf("%w: deposit %d is %s", domain.ErrInvalidState, depositID, deposit.Status)
	}

	updated, err := s.repo.AttachProof(ctx, depositID, userID, proofURL)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// lost the race against a concurrent transition
		return nil, fmt.Errorf("%w: deposit %d already left PENDING", domain.ErrInvalidState, depositID)
	}
	return updated, nil
}

// Resolve finalizes a deposit exactly once. On APPROVED the ledger credit and
// the status compare-and-swap commit in one atomic unit; the losing side of a
// race gets ErrInvalidState and no ledger effect.
func (s *Service) Resolve(ctx context.Context, depositID, adminID int, decision domain.DepositStatus, notes string) (*domain.DepositRequest, *domain.Transaction, error) {
	if decision != domain.DepositApproved && decision != domain.DepositRejected {
		return nil, nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", domain.ErrValidation)
	}

	deposit, err := s.repo.GetByID(ctx, depositID)
	if err != nil {
		return nil, nil, err
	}
	if deposit == nil {
		return nil, nil, fmt.Errorf("%w: deposit %d", domain.ErrNotFound, depositID)
	}
	if deposit.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: deposit %d already %s", domain.ErrInvalidState, depositID, deposit.Status)
	}

	var (
		resolved *domain.DepositRequest
		credit   *domain.Transaction
	)
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var transactionID *int
		if decision == domain.DepositApproved {
			credit, err = s.ledger.Credit(ctx, deposit.UserID, deposit.Amount, domain.TopUpTransaction,
				"deposit approved", map[string]string{"deposit_id": strconv.Itoa(deposit.ID)})
			if err != nil {
				return err
			}
			transactionID = &credit.ID
		}

		resolved, err = s.repo.Resolve(ctx, deposit.ID, deposit.Status, decision, adminID, notes, transactionID, time.Now())
		if err != nil {
			return err
		}
		if resolved == nil {
			metrics.GateConflictsTotal.WithLabelValues("deposit").Inc()
			return fmt.Errorf("%w: deposit %d changed state concurrently", domain.ErrInvalidState, deposit.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("deposit resolved",
		zap.Int("deposit_id", resolved.ID),
		zap.String("status", string(resolved.Status)),
		zap.Int("admin_id", adminID))
	return resolved, credit, nil
}

func (s *Service) GetUserDeposits(ctx context.Context, userID int) ([]domain.DepositRequest, error) {
	deposits, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("can't list user deposits", zap.Error(err))
		return nil, err
	}
	return deposits, nil
}

// GetPending returns the admin review queue, oldest first.
func (s *Service) GetPending(ctx context.Context) ([]domain.DepositRequest, error) {
	pending, err := s.repo.ListByStatus(ctx, domain.DepositPending)
	if err != nil {
		return nil, err
	}
	validating, err := s.repo.ListByStatus(ctx, domain.DepositValidating)
	if err != nil {
		return nil, err
	}
	return append(pending, validating...), nil
}
