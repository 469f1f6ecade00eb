package messaging

import (
	"encoding/json"
	"time"
)

// CategoryDeletionMessage notifies downstream systems that a category was
// deleted and which category its transactions were reassigned to.
type CategoryDeletionMessage struct {
	Username                string    `json:"username"`
	DeletedCategoryName     string    `json:"deleted_category_name"`
	ReplacementCategoryName string    `json:"replacement_category_name"`
	Timestamp               time.Time `json:"timestamp"`
}

// NewCategoryDeletionMessage creates a deletion message stamped with the current time.
func NewCategoryDeletionMessage(username, deletedCategoryName, replacementCategoryName string) *CategoryDeletionMessage {
	return &CategoryDeletionMessage{
		Username:                username,
		DeletedCategoryName:     deletedCategoryName,
		ReplacementCategoryName: replacementCategoryName,
		Timestamp:               time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CategoryDeletionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CategoryDeletionMessageFromJSON creates a message from JSON bytes
func CategoryDeletionMessageFromJSON(data []byte) (*CategoryDeletionMessage, error) {
	var msg CategoryDeletionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// TransactionEventMessage is an incoming financial transaction produced by
// the external ledger. AmountCents is signed.
type TransactionEventMessage struct {
	Username        string    `json:"username"`
	CategoryName    string    `json:"category_name"`
	AmountCents     int64     `json:"amount_cents"`
	TransactionType string    `json:"transaction_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
