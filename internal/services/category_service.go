package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "billplan/internal/errors"
	"billplan/internal/logger"
	"billplan/internal/messaging"
	"billplan/internal/models"
	"billplan/internal/pagination"
)

// ReplacementFallback is the sentinel category name transactions are
// reassigned to when a category is deleted without a caller-supplied
// replacement.
const ReplacementFallback = "undefined"

// categoryService handles category lifecycle business logic.
type categoryService struct {
	db          *gorm.DB
	usageLimits UsageLimitServicer
	publisher   DeletionPublisher
	dispatcher  TaskDispatcher
	templates   []StandardCategoryTemplate
}

// NewCategoryService creates a new CategoryServicer. The templates slice is
// the master template set for standard-category seeding and is treated as
// immutable.
func NewCategoryService(
	db *gorm.DB,
	usageLimits UsageLimitServicer,
	publisher DeletionPublisher,
	dispatcher TaskDispatcher,
	templates []StandardCategoryTemplate,
) CategoryServicer {
	return &categoryService{
		db:          db,
		usageLimits: usageLimits,
		publisher:   publisher,
		dispatcher:  dispatcher,
		templates:   templates,
	}
}

// CreateCustomCategory creates a user-defined category. A usage-limit record
// for the current month is created off the calling path; its failure is
// logged by the worker, never surfaced here.
func (s *categoryService) CreateCustomCategory(username string, draft CategoryDraft) (*models.Category, error) {
	if username == "" || draft.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and category name are required")
	}
	if !draft.Type.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be INCOME or EXPENSE")
	}

	// Fast-path duplicate check. The UNIQUE (username, name) index is the
	// actual enforcement under concurrent creates.
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("username = ? AND name = ?", username, draft.Name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, categoryExistsError(username, draft.Name)
	}

	category := &models.Category{
		Username: username,
		Name:     draft.Name,
		Type:     draft.Type,
		Kind:     models.CategoryKindCustom,
		Limit:    draft.Limit,
	}

	if err := s.db.Create(category).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, categoryExistsError(username, draft.Name)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatchUsageLimitCreation(category.Username, category.Name)

	return category, nil
}

// FindCategory returns the single category matching (username, name).
func (s *categoryService) FindCategory(username, name string) (*models.Category, error) {
	categories, err := findCategories(s.db, username, name)
	if err != nil {
		return nil, err
	}
	return soleCategory(categories)
}

// ListCategories retrieves a paginated list of categories for a user.
func (s *categoryService) ListCategories(username string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Where("username = ?", username)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateCategory replaces the mutable fields of the category keyed on
// (username, draft.Name). The paired usage-limit record's limit is synced
// off the calling path.
func (s *categoryService) UpdateCategory(username string, draft CategoryDraft) (*models.Category, error) {
	category, err := s.FindCategory(username, draft.Name)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Category{}).
		Where("id = ? AND version = ?", category.ID, category.Version).
		Updates(map[string]interface{}{
			"monthly_limit": draft.Limit,
			"version":       category.Version + 1,
		})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrVersionConflict
	}

	category.Limit = draft.Limit
	category.Version++

	if draft.Limit != nil {
		username, name, limit := category.Username, category.Name, *draft.Limit
		s.dispatcher.Enqueue("usage-limit-sync", func(ctx context.Context) error {
			_, err := s.usageLimits.SetLimit(username, name, limit)
			return err
		})
	}

	return category, nil
}

// DeleteCategory removes the category row and returns. Replacement
// resolution, the deletion event, and usage-limit cleanup run off the
// calling path and are best-effort.
func (s *categoryService) DeleteCategory(username, name string, replacement *string) error {
	category, err := s.FindCategory(username, name)
	if err != nil {
		return err
	}

	res := s.db.Where("username = ? AND name = ?", username, name).Delete(&models.Category{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}

	deleted := *category
	s.dispatcher.Enqueue("category-deletion-reassign", func(ctx context.Context) error {
		return s.reassignDeletedCategory(ctx, &deleted, replacement)
	})

	return nil
}

// reassignDeletedCategory resolves the replacement category, emits the
// deletion event, and removes the deleted category's usage-limit records.
// It runs on the task pool.
func (s *categoryService) reassignDeletedCategory(ctx context.Context, deleted *models.Category, replacement *string) error {
	replacementName := ReplacementFallback
	if replacement != nil && *replacement != "" {
		replacementName = *replacement
	}

	resolvedName, err := s.findOrCreateReplacement(deleted.Username, replacementName, deleted.Type)
	if err != nil {
		return fmt.Errorf("resolve replacement category: %w", err)
	}

	msg := messaging.NewCategoryDeletionMessage(deleted.Username, deleted.Name, resolvedName)
	if err := s.publisher.PublishCategoryDeletion(ctx, msg); err != nil {
		return fmt.Errorf("publish deletion event: %w", err)
	}

	return s.usageLimits.DeleteForCategory(deleted.Username, deleted.Name)
}

// findOrCreateReplacement returns the name of an existing category, creating
// it with the deleted category's transaction type when absent.
func (s *categoryService) findOrCreateReplacement(username, name string, transactionType models.TransactionType) (string, error) {
	existing, err := s.FindCategory(username, name)
	if err == nil {
		return existing.Name, nil
	}
	if !errors.Is(err, apperrors.ErrCategoryNotFound) {
		return "", err
	}

	created, err := s.CreateCustomCategory(username, CategoryDraft{Name: name, Type: transactionType})
	if err != nil {
		return "", err
	}
	logger.Get().Infow("created replacement category",
		"username", username,
		"category", created.Name,
	)
	return created.Name, nil
}

// CreateStandardCategoriesIfNotExists seeds the user with the standard
// categories they are missing from the master template set. It is
// idempotent: once the user has all standard categories, re-invocation
// creates nothing.
func (s *categoryService) CreateStandardCategoriesIfNotExists(username string) ([]models.Category, error) {
	if username == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username is required")
	}

	var existing []models.Category
	if err := s.db.
		Where("username = ? AND kind = ?", username, models.CategoryKindStandard).
		Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existingNames := make(map[string]struct{}, len(existing))
	for _, category := range existing {
		existingNames[category.Name] = struct{}{}
	}

	var missing []models.Category
	for _, template := range s.templates {
		if _, ok := existingNames[template.Name]; ok {
			continue
		}
		missing = append(missing, models.Category{
			Username: username,
			Name:     template.Name,
			Type:     template.Type,
			Kind:     models.CategoryKindStandard,
			Limit:    template.Limit,
		})
	}

	if len(missing) == 0 {
		logger.Get().Infow("no missing standard categories", "username", username)
		return []models.Category{}, nil
	}

	if err := s.db.Create(&missing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	names := make([]string, len(missing))
	for i, category := range missing {
		names[i] = category.Name
		s.dispatchUsageLimitCreation(category.Username, category.Name)
	}
	logger.Get().Infow("missing standard categories added",
		"username", username,
		"count", len(missing),
		"categories", strings.Join(names, ", "),
	)

	return missing, nil
}

// dispatchUsageLimitCreation enqueues the fire-and-forget creation of the
// current month's usage-limit record for a freshly created category.
func (s *categoryService) dispatchUsageLimitCreation(username, categoryName string) {
	s.dispatcher.Enqueue("usage-limit-create", func(ctx context.Context) error {
		_, err := s.usageLimits.CreateForCategory(username, categoryName)
		return err
	})
}

// findCategories loads all categories matching (username, name).
func findCategories(db *gorm.DB, username, name string) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Where("username = ? AND name = ?", username, name).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// soleCategory enforces the uniqueness invariant on a lookup result: zero
// matches is a not-found error, more than one is a data-integrity violation.
// Cardinality enforcement lives here and nowhere else.
func soleCategory(categories []models.Category) (*models.Category, error) {
	switch len(categories) {
	case 0:
		return nil, apperrors.ErrCategoryNotFound
	case 1:
		return &categories[0], nil
	default:
		return nil, apperrors.ErrAmbiguousCategory
	}
}

func categoryExistsError(username, name string) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrCategoryExists,
		fmt.Sprintf("Category with name %s for user with name %s already exists", name, username))
}

// isDuplicateKey reports whether err is a unique-constraint violation. It
// covers GORM's translated error plus the raw Postgres and SQLite messages.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
