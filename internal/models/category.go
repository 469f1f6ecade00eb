package models

// TransactionType classifies a category as tracking income or expenses
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether the transaction type is a known value.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// CategoryKind distinguishes master-seeded standard categories from
// user-created custom ones
type CategoryKind string

const (
	CategoryKindStandard CategoryKind = "STANDARD"
	CategoryKindCustom   CategoryKind = "CUSTOM"
)

// Category represents a named budget bucket owned by one user. The
// (username, name) pair is unique.
type Category struct {
	Base
	Username string          `gorm:"not null;uniqueIndex:idx_categories_username_name" json:"username"`
	Name     string          `gorm:"not null;uniqueIndex:idx_categories_username_name" json:"name"`
	Type     TransactionType `gorm:"not null" json:"type"`
	Kind     CategoryKind    `gorm:"not null" json:"kind"`
	// Limit is the optional monthly spending limit in cents. It is the
	// template value copied into usage-limit records at their creation time.
	Limit *int64 `gorm:"column:monthly_limit" json:"limit,omitempty"`
}

// LimitCents returns the monthly limit, or zero when none is configured.
func (c *Category) LimitCents() int64 {
	if c.Limit == nil {
		return 0
	}
	return *c.Limit
}
