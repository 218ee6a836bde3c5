// Package audit periodically rechecks every account balance against the
// transaction log and exports the result as gauges.
package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finlab/walletcore/internal/metrics"
)

const poolSize = 10

type Accounts interface {
	ListIDs(ctx context.Context) ([]int, error)
}

type Checker interface {
	CheckConsistency(ctx context.Context, accountID int) (bool, error)
}

// auditingAccounts guards against the same account being checked by two
// overlapping sweeps.
var auditingAccounts sync.Map

type Service struct {
	accounts      Accounts
	checker       Checker
	workerPool    WorkerPoolI
	sweepInterval time.Duration
}

func New(accounts Accounts, checker Checker, sweepInterval time.Duration) *Service {
	return &Service{
		accounts:      accounts,
		checker:       checker,
		workerPool:    NewWorkerPool(poolSize),
		sweepInterval: sweepInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Audit service started", zap.Duration("interval", s.sweepInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping audit service")
			return
		case <-ticker.C:
			s.processAccounts(ctx)
		}
	}
}

func (s *Service) processAccounts(ctx context.Context) {
	ids, err := s.accounts.ListIDs(ctx)
	if err != nil {
		zap.L().Error("Failed to list accounts for audit", zap.Error(err))
		return
	}

	var (
		wg         sync.WaitGroup
		mismatches atomic.Int64
		g          errgroup.Group
	)
	for _, id := range ids {
		id := id

		if _, loaded := auditingAccounts.LoadOrStore(id, struct{}{}); loaded {
			continue
		}

		wg.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer wg.Done()
				defer auditingAccounts.Delete(id)
				return s.checkAccount(ctx, id, &mismatches)
			})
			if err != nil {
				wg.Done()
				auditingAccounts.Delete(id)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error scheduling audit checks", zap.Error(err))
	}
	wg.Wait()

	metrics.AuditMismatches.Set(float64(mismatches.Load()))
	metrics.AuditLastRunUnix.Set(float64(time.Now().Unix()))
}

func (s *Service) checkAccount(ctx context.Context, accountID int, mismatches *atomic.Int64) error {
	ok, err := s.checker.CheckConsistency(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check account %d: %w", accountID, err)
	}
	if !ok {
		mismatches.Add(1)
		zap.L().Error("Balance diverged from transaction sum", zap.Int("accountID", accountID))
	}
	return nil
}
