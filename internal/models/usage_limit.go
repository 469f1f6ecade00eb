package models

// CategoryUsageLimit accumulates one user's spend against one category for
// one calendar month. At most one record exists per
// (username, category_name, year_month).
//
// Limit is a snapshot of the owning category's limit taken when the record
// is created; later category edits do not rewrite past months.
type CategoryUsageLimit struct {
	Base
	Username     string `gorm:"not null;uniqueIndex:idx_usage_limits_user_category_month" json:"username"`
	CategoryName string `gorm:"not null;uniqueIndex:idx_usage_limits_user_category_month" json:"category_name"`
	YearMonth    string `gorm:"not null;uniqueIndex:idx_usage_limits_user_category_month" json:"year_month"`
	Usage        int64  `gorm:"column:usage_amount;not null;default:0" json:"usage"`
	Limit        int64  `gorm:"column:limit_amount;not null;default:0" json:"limit"`
}
