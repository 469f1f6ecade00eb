// Package worker bridges broker messages into service calls.
package worker

import (
	"context"

	"billplan/internal/logger"
	"billplan/internal/messaging"
	"billplan/internal/models"
	"billplan/internal/services"
)

// TransactionWorker posts incoming transaction events from the broker.
type TransactionWorker struct {
	posting services.PostingServicer
}

// NewTransactionWorker creates a new TransactionWorker.
func NewTransactionWorker(posting services.PostingServicer) *TransactionWorker {
	return &TransactionWorker{posting: posting}
}

// HandleTransactionEvent processes a single transaction event message.
// Malformed events are logged and dropped; requeueing them could never
// succeed.
func (w *TransactionWorker) HandleTransactionEvent(ctx context.Context, msg *messaging.TransactionEventMessage) error {
	transactionType := models.TransactionType(msg.TransactionType)
	if !transactionType.IsValid() {
		logger.Get().Errorw("dropping transaction event with unknown type",
			"username", msg.Username,
			"transaction_type", msg.TransactionType,
		)
		return nil
	}

	event := services.TransactionEvent{
		Username:     msg.Username,
		CategoryName: msg.CategoryName,
		Amount:       msg.AmountCents,
		Type:         transactionType,
	}

	balance, err := w.posting.PostTransaction(event)
	if err != nil {
		return err
	}

	logger.Get().Infow("transaction posted",
		"username", event.Username,
		"category", event.CategoryName,
		"amount_cents", event.Amount,
		"balance", balance.Amount,
	)
	return nil
}
