package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "billplan/internal/errors"
	"billplan/internal/models"
	"billplan/internal/pagination"
	"billplan/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required,transaction_type"`
	Limit *int64 `json:"limit" binding:"omitempty,min=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Limit *int64 `json:"limit" binding:"omitempty,min=0"`
}

// CreateCategory handles the creation of a new custom category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCustomCategory(username, services.CategoryDraft{
		Name:  req.Name,
		Type:  models.TransactionType(req.Type),
		Limit: req.Limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// ListCategories handles the paginated retrieval of a user's categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categoryService.ListCategories(username, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategory handles the retrieval of one category by name
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.FindCategory(username, c.Param("name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating a category keyed by name
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(username, services.CategoryDraft{
		Name:  c.Param("name"),
		Limit: req.Limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles category deletion with an optional replacement
// category supplied as a query parameter.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var replacement *string
	if value := c.Query("replacement"); value != "" {
		replacement = &value
	}

	if err := h.categoryService.DeleteCategory(username, c.Param("name"), replacement); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SeedStandardCategories creates the standard categories the user is missing
func (h *CategoryHandler) SeedStandardCategories(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.categoryService.CreateStandardCategoriesIfNotExists(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created":    len(created),
		"categories": created,
	})
}
