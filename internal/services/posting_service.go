package services

import (
	"billplan/internal/models"
)

// postingService sequences the bookkeeping for one incoming transaction:
// the usage-limit update strictly precedes the balance update. If the
// usage-limit step fails, the balance is left untouched and the error
// propagates to the caller.
type postingService struct {
	usageLimits UsageLimitServicer
	balances    BalanceServicer
}

// NewPostingService creates a new PostingServicer.
func NewPostingService(usageLimits UsageLimitServicer, balances BalanceServicer) PostingServicer {
	return &postingService{
		usageLimits: usageLimits,
		balances:    balances,
	}
}

// PostTransaction records a transaction against its category's monthly usage
// limit and then against the user's balance.
func (s *postingService) PostTransaction(event TransactionEvent) (*models.Balance, error) {
	if _, err := s.usageLimits.ApplyTransaction(event); err != nil {
		return nil, err
	}
	return s.balances.ApplyTransaction(event)
}
