package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "billplan/internal/errors"
	"billplan/internal/services"
)

// UsageLimitHandler handles usage-limit requests
type UsageLimitHandler struct {
	usageLimitService services.UsageLimitServicer
}

// NewUsageLimitHandler creates a new UsageLimitHandler
func NewUsageLimitHandler(usageLimitService services.UsageLimitServicer) *UsageLimitHandler {
	return &UsageLimitHandler{usageLimitService: usageLimitService}
}

// SetLimitRequest represents the request payload for overriding a limit
type SetLimitRequest struct {
	Limit *int64 `json:"limit" binding:"required,min=0"`
}

// ListUsageLimits returns the user's usage-limit records for a month.
// year_month defaults to the current month; total=true collapses the records
// into a single aggregated one.
func (h *UsageLimitHandler) ListUsageLimits(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total := false
	if value := c.Query("total"); value != "" {
		total, err = strconv.ParseBool(value)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "total must be a boolean"))
			return
		}
	}

	records, err := h.usageLimitService.ListUsageLimits(username, c.Query("year_month"), total)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage_limits": records})
}

// SetLimit overrides the current month's limit for one category
func (h *UsageLimitHandler) SetLimit(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	record, err := h.usageLimitService.SetLimit(username, c.Param("category"), *req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage_limit": record})
}
