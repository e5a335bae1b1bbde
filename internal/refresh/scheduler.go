// Package refresh runs the periodic background work: the balance
// reconciliation poll and the market-data cache revalidation sweep. Both are
// bound to the scheduler's lifetime and stop with it, so no timer outlives
// the process shutdown.
package refresh

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tikalinvest/portfolio-client/internal/logging"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// Scheduler owns the cron instance driving the background refreshes.
type Scheduler struct {
	cron    *cron.Cron
	db      *sql.DB
	balance *service.BalanceService
	market  *service.MarketDataService
}

// New creates a Scheduler wiring the balance poll and cache revalidation at
// the given intervals.
func New(db *sql.DB, balance *service.BalanceService, market *service.MarketDataService, balancePoll, cacheRevalidate time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		db:      db,
		balance: balance,
		market:  market,
	}

	if _, err := s.cron.AddFunc(every(balancePoll), s.pollBalance); err != nil {
		return nil, fmt.Errorf("failed to schedule balance poll: %w", err)
	}
	if _, err := s.cron.AddFunc(every(cacheRevalidate), s.revalidateCache); err != nil {
		return nil, fmt.Errorf("failed to schedule cache revalidation: %w", err)
	}

	return s, nil
}

// Start begins running the scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	logging.Info().Msg("background refresh scheduler started")
}

// Stop cancels the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logging.Info().Msg("background refresh scheduler stopped")
}

func (s *Scheduler) pollBalance() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := s.balance.Reconcile(ctx, s.db, time.Now()); err != nil {
		logging.Warn().Err(err).Msg("balance reconciliation failed")
	}
}

func (s *Scheduler) revalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.market.Revalidate(ctx)
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
