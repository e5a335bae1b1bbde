package service

import (
	"context"

	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// TransactionService exposes read access to the transaction log. Writes go
// exclusively through the trade executor.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository.
func NewTransactionService(transactionRepo *repository.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

// History returns the full log newest first, the order the history screen renders.
func (s *TransactionService) History(ctx context.Context) ([]model.Transaction, error) {
	return s.transactionRepo.ListRecentFirst(ctx)
}

// Get retrieves a single transaction by its backend-assigned id.
func (s *TransactionService) Get(ctx context.Context, id string) (model.Transaction, error) {
	return s.transactionRepo.Get(ctx, id)
}
