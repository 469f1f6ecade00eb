package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "billplan/internal/errors"
	"billplan/internal/models"
	"billplan/internal/services"
)

// TransactionHandler handles direct transaction posting. The AMQP consumer
// drives the same posting path for events arriving from the ledger.
type TransactionHandler struct {
	postingService services.PostingServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(postingService services.PostingServicer) *TransactionHandler {
	return &TransactionHandler{postingService: postingService}
}

// PostTransactionRequest represents the request payload for posting a transaction
type PostTransactionRequest struct {
	CategoryName string `json:"category_name" binding:"required"`
	AmountCents  int64  `json:"amount_cents" binding:"required"`
	Type         string `json:"type" binding:"required,transaction_type"`
}

// PostTransaction records a transaction against the usage limit and balance
func (h *TransactionHandler) PostTransaction(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	balance, err := h.postingService.PostTransaction(services.TransactionEvent{
		Username:     username,
		CategoryName: req.CategoryName,
		Amount:       req.AmountCents,
		Type:         models.TransactionType(req.Type),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
