package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"billplan/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// UniqueUsername returns a username that is unique within the test run.
// The shared in-memory database makes unique usernames necessary for
// isolation between tests.
func UniqueUsername() string {
	return fmt.Sprintf("user%d", nextID())
}

// CreateTestCategory creates an expense category with the given name and limit.
func CreateTestCategory(t *testing.T, db *gorm.DB, username, name string, limit *int64) *models.Category {
	t.Helper()
	return CreateTestCategoryOfType(t, db, username, name, models.TransactionTypeExpense, limit)
}

// CreateTestCategoryOfType creates a custom category of the given transaction type.
func CreateTestCategoryOfType(t *testing.T, db *gorm.DB, username, name string, transactionType models.TransactionType, limit *int64) *models.Category {
	t.Helper()

	category := &models.Category{
		Username: username,
		Name:     name,
		Type:     transactionType,
		Kind:     models.CategoryKindCustom,
		Limit:    limit,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestUsageLimit creates a usage-limit record for the given month.
func CreateTestUsageLimit(t *testing.T, db *gorm.DB, username, categoryName, yearMonth string, usage, limit int64) *models.CategoryUsageLimit {
	t.Helper()

	record := &models.CategoryUsageLimit{
		Username:     username,
		CategoryName: categoryName,
		YearMonth:    yearMonth,
		Usage:        usage,
		Limit:        limit,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test usage limit: %v", err)
	}
	return record
}

// CreateTestBalance creates a balance with the given amount (in cents).
func CreateTestBalance(t *testing.T, db *gorm.DB, username string, amount int64) *models.Balance {
	t.Helper()

	balance := &models.Balance{
		Username: username,
		Amount:   amount,
	}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("failed to create test balance: %v", err)
	}
	return balance
}

// LimitCents returns a pointer to the given amount, for category limits.
func LimitCents(v int64) *int64 {
	return &v
}
