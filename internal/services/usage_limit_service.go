package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "billplan/internal/errors"
	"billplan/internal/logger"
	"billplan/internal/models"
)

// TotalCategoryName is the synthetic category name used for the collapsed
// aggregation record.
const TotalCategoryName = "total"

// usageLimitService tracks per-category, per-month spend against a limit.
type usageLimitService struct {
	db *gorm.DB
	// now supplies the clock for year-month bucketing; overridable in tests.
	now func() time.Time
}

// NewUsageLimitService creates a new UsageLimitServicer.
func NewUsageLimitService(db *gorm.DB) UsageLimitServicer {
	return &usageLimitService{db: db, now: time.Now}
}

// ApplyTransaction accumulates a transaction into the record for the event's
// category and the current month, lazily creating the record with the
// category's current limit and zero usage.
func (s *usageLimitService) ApplyTransaction(event TransactionEvent) (*models.CategoryUsageLimit, error) {
	if event.Username == "" || event.CategoryName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and category name are required")
	}
	if !event.Type.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be INCOME or EXPENSE")
	}

	record, err := s.findOrCreate(event.Username, event.CategoryName, s.currentYearMonth())
	if err != nil {
		return nil, err
	}

	// A category accumulates the magnitude of its own-type transactions.
	record.Usage += abs64(event.Amount)

	updated, err := s.saveVersioned(record)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("usage limit updated",
		"username", updated.Username,
		"category", updated.CategoryName,
		"year_month", updated.YearMonth,
		"usage", updated.Usage,
	)
	return updated, nil
}

// SetLimit overrides the limit of the current month's record, independent of
// usage, with find-or-create semantics.
func (s *usageLimitService) SetLimit(username, categoryName string, newLimit int64) (*models.CategoryUsageLimit, error) {
	if username == "" || categoryName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and category name are required")
	}

	record, err := s.findOrCreate(username, categoryName, s.currentYearMonth())
	if err != nil {
		return nil, err
	}

	record.Limit = newLimit
	return s.saveVersioned(record)
}

// ListUsageLimits returns the usage-limit records of one user for the given
// month ("" means the current month). With total set, the records collapse
// into one synthetic record named "total" carrying the summed usage and
// limit; an empty month yields an empty result, not a zero-valued total.
func (s *usageLimitService) ListUsageLimits(username, yearMonth string, total bool) ([]models.CategoryUsageLimit, error) {
	if yearMonth == "" {
		yearMonth = s.currentYearMonth()
	} else if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "year_month must be formatted like 2024-05")
	}

	var records []models.CategoryUsageLimit
	if err := s.db.
		Where("username = ? AND year_month = ?", username, yearMonth).
		Order("category_name ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !total {
		return records, nil
	}
	return collapseToTotal(records), nil
}

// CreateForCategory creates the current month's record for a category,
// seeding the limit from the category's configuration at this moment. An
// existing record is returned unchanged.
func (s *usageLimitService) CreateForCategory(username, categoryName string) (*models.CategoryUsageLimit, error) {
	return s.findOrCreate(username, categoryName, s.currentYearMonth())
}

// DeleteForCategory removes all usage-limit records of a category, across
// months. It is idempotent.
func (s *usageLimitService) DeleteForCategory(username, categoryName string) error {
	if err := s.db.
		Where("username = ? AND category_name = ?", username, categoryName).
		Delete(&models.CategoryUsageLimit{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *usageLimitService) currentYearMonth() string {
	return s.now().Format("2006-01")
}

// findOrCreate loads the record for (username, categoryName, yearMonth) or
// creates it with zero usage and the owning category's current limit.
func (s *usageLimitService) findOrCreate(username, categoryName, yearMonth string) (*models.CategoryUsageLimit, error) {
	var records []models.CategoryUsageLimit
	if err := s.db.
		Where("username = ? AND category_name = ? AND year_month = ?", username, categoryName, yearMonth).
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(records) > 0 {
		return &records[0], nil
	}

	limit, err := s.categoryLimit(username, categoryName)
	if err != nil {
		return nil, err
	}

	record := &models.CategoryUsageLimit{
		Username:     username,
		CategoryName: categoryName,
		YearMonth:    yearMonth,
		Usage:        0,
		Limit:        limit,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return record, nil
}

// categoryLimit reads the owning category's configured limit at this moment.
// The uniqueness invariant is enforced through the shared cardinality helper.
func (s *usageLimitService) categoryLimit(username, categoryName string) (int64, error) {
	categories, err := findCategories(s.db, username, categoryName)
	if err != nil {
		return 0, err
	}
	category, err := soleCategory(categories)
	if err != nil {
		return 0, err
	}
	return category.LimitCents(), nil
}

// saveVersioned persists the record's usage and limit guarded by its version
// counter. A lost version race surfaces as ErrVersionConflict.
func (s *usageLimitService) saveVersioned(record *models.CategoryUsageLimit) (*models.CategoryUsageLimit, error) {
	res := s.db.Model(&models.CategoryUsageLimit{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(map[string]interface{}{
			"usage_amount": record.Usage,
			"limit_amount": record.Limit,
			"version":      record.Version + 1,
		})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrVersionConflict
	}

	record.Version++
	return record, nil
}

// collapseToTotal reduces the records to one synthetic "total" record with
// summed usage and limit. Empty input stays empty.
func collapseToTotal(records []models.CategoryUsageLimit) []models.CategoryUsageLimit {
	if len(records) == 0 {
		return []models.CategoryUsageLimit{}
	}

	var totalUsage, totalLimit int64
	for _, record := range records {
		totalUsage += record.Usage
		totalLimit += record.Limit
	}

	return []models.CategoryUsageLimit{{
		Username:     records[0].Username,
		CategoryName: TotalCategoryName,
		YearMonth:    records[0].YearMonth,
		Usage:        totalUsage,
		Limit:        totalLimit,
	}}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
