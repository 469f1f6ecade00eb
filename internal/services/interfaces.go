package services

import (
	"context"

	"billplan/internal/messaging"
	"billplan/internal/models"
	"billplan/internal/pagination"
)

// TransactionEvent is one incoming financial transaction. Amount is signed
// cents; expenses conventionally arrive negative.
type TransactionEvent struct {
	Username     string
	CategoryName string
	Amount       int64
	Type         models.TransactionType
}

// CategoryDraft carries caller-supplied category fields for create and
// update operations. Limit is an optional monthly limit in cents.
type CategoryDraft struct {
	Name  string
	Type  models.TransactionType
	Limit *int64
}

// StandardCategoryTemplate is one entry of the immutable master template set
// used to seed standard categories for new users.
type StandardCategoryTemplate struct {
	Name  string
	Type  models.TransactionType
	Limit *int64
}

// CategoryServicer defines the contract for category lifecycle business logic.
type CategoryServicer interface {
	CreateCustomCategory(username string, draft CategoryDraft) (*models.Category, error)
	FindCategory(username, name string) (*models.Category, error)
	ListCategories(username string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	UpdateCategory(username string, draft CategoryDraft) (*models.Category, error)
	DeleteCategory(username, name string, replacement *string) error
	CreateStandardCategoriesIfNotExists(username string) ([]models.Category, error)
}

// UsageLimitServicer defines the contract for per-month category spend tracking.
type UsageLimitServicer interface {
	ApplyTransaction(event TransactionEvent) (*models.CategoryUsageLimit, error)
	SetLimit(username, categoryName string, newLimit int64) (*models.CategoryUsageLimit, error)
	ListUsageLimits(username, yearMonth string, total bool) ([]models.CategoryUsageLimit, error)
	CreateForCategory(username, categoryName string) (*models.CategoryUsageLimit, error)
	DeleteForCategory(username, categoryName string) error
}

// BalanceServicer defines the contract for the per-user running balance.
type BalanceServicer interface {
	GetBalance(username string) (*models.Balance, error)
	ApplyTransaction(event TransactionEvent) (*models.Balance, error)
}

// PostingServicer sequences the bookkeeping for one incoming transaction.
type PostingServicer interface {
	PostTransaction(event TransactionEvent) (*models.Balance, error)
}

// DeletionPublisher publishes category-deletion events to the message broker.
type DeletionPublisher interface {
	PublishCategoryDeletion(ctx context.Context, msg *messaging.CategoryDeletionMessage) error
}

// TaskDispatcher hands detached side effects to a worker pool. Enqueue must
// not block; the return value reports whether the task was accepted.
type TaskDispatcher interface {
	Enqueue(name string, fn func(ctx context.Context) error) bool
}
