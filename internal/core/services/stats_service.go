package services

import (
	"context"
	"time"

	"stockdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LedgerStats is a point-in-time row count of every table
type LedgerStats struct {
	Accounts int64 `json:"accounts"`
	Contacts int64 `json:"contacts"`
	Messages int64 `json:"messages"`
	Products int64 `json:"products"`
}

// StatsService periodically logs LedgerStats
type StatsService struct {
	accounts repositories.AccountRepository
	contacts repositories.ContactRepository
	messages repositories.MessageRepository
	products repositories.ProductRepository
	cron     *cron.Cron
	log      *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	accounts repositories.AccountRepository,
	contacts repositories.ContactRepository,
	messages repositories.MessageRepository,
	products repositories.ProductRepository,
	log *zap.Logger,
) *StatsService {
	return &StatsService{
		accounts: accounts,
		contacts: contacts,
		messages: messages,
		products: products,
		cron:     cron.New(),
		log:      log.Named("stats"),
	}
}

// Snapshot counts every table
func (s *StatsService) Snapshot(ctx context.Context) (*LedgerStats, error) {
	var st LedgerStats
	var err error

	if st.Accounts, err = s.accounts.Count(ctx); err != nil {
		return nil, persistenceError("count accounts", err)
	}
	if st.Contacts, err = s.contacts.Count(ctx); err != nil {
		return nil, persistenceError("count contacts", err)
	}
	if st.Messages, err = s.messages.Count(ctx); err != nil {
		return nil, persistenceError("count messages", err)
	}
	if st.Products, err = s.products.Count(ctx); err != nil {
		return nil, persistenceError("count products", err)
	}
	return &st, nil
}

// Start schedules the report with a robfig/cron expression such as "@every 1h"
func (s *StatsService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.report); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("stats job started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler and waits for a running report to finish
func (s *StatsService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("stats job stopped")
}

func (s *StatsService) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Error("stats snapshot failed", zap.Error(err))
		return
	}

	s.log.Info("ledger stats",
		zap.Int64("accounts", st.Accounts),
		zap.Int64("contacts", st.Contacts),
		zap.Int64("messages", st.Messages),
		zap.Int64("products", st.Products),
	)
}
