package services

import (
	"gorm.io/gorm"

	apperrors "billplan/internal/errors"
	"billplan/internal/models"
)

// balanceService maintains the single running balance per user.
type balanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB) BalanceServicer {
	return &balanceService{db: db}
}

// GetBalance returns the user's balance.
func (s *balanceService) GetBalance(username string) (*models.Balance, error) {
	var balances []models.Balance
	if err := s.db.Where("username = ?", username).Limit(1).Find(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(balances) == 0 {
		return nil, apperrors.ErrBalanceNotFound
	}
	return &balances[0], nil
}

// ApplyTransaction applies the event's signed delta to the user's balance,
// creating the balance on the user's first transaction. The update is
// version-guarded.
func (s *balanceService) ApplyTransaction(event TransactionEvent) (*models.Balance, error) {
	if event.Username == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username is required")
	}
	if !event.Type.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be INCOME or EXPENSE")
	}

	balance, err := s.findOrCreate(event.Username)
	if err != nil {
		return nil, err
	}

	balance.Amount += balanceDelta(event)

	res := s.db.Model(&models.Balance{}).
		Where("id = ? AND version = ?", balance.ID, balance.Version).
		Updates(map[string]interface{}{
			"amount":  balance.Amount,
			"version": balance.Version + 1,
		})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrVersionConflict
	}

	balance.Version++
	return balance, nil
}

// findOrCreate loads the user's balance, creating a zero balance on first use.
func (s *balanceService) findOrCreate(username string) (*models.Balance, error) {
	var balances []models.Balance
	if err := s.db.Where("username = ?", username).Limit(1).Find(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(balances) > 0 {
		return &balances[0], nil
	}

	balance := &models.Balance{Username: username, Amount: 0}
	if err := s.db.Create(balance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance, nil
}

// balanceDelta maps an event to its signed effect on the balance: income
// adds its magnitude, expense subtracts it.
func balanceDelta(event TransactionEvent) int64 {
	if event.Type == models.TransactionTypeIncome {
		return abs64(event.Amount)
	}
	return -abs64(event.Amount)
}
