package messaging

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCategoryDeletionMessage(t *testing.T) {
	t.Run("wire_field_names", func(t *testing.T) {
		msg := NewCategoryDeletionMessage("alice", "coffee", "undefined")

		data, err := msg.ToJSON()
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("failed to unmarshal raw: %v", err)
		}
		for _, key := range []string{"username", "deleted_category_name", "replacement_category_name", "timestamp"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("expected wire field %q, got %v", key, raw)
			}
		}
	})

	t.Run("round_trip", func(t *testing.T) {
		msg := NewCategoryDeletionMessage("alice", "coffee", "drinks")

		data, err := msg.ToJSON()
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		decoded, err := CategoryDeletionMessageFromJSON(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if decoded.Username != "alice" || decoded.DeletedCategoryName != "coffee" || decoded.ReplacementCategoryName != "drinks" {
			t.Errorf("unexpected decoded message: %+v", decoded)
		}
		if decoded.Timestamp.IsZero() {
			t.Error("expected a non-zero timestamp")
		}
	})

	t.Run("stamps_current_time", func(t *testing.T) {
		before := time.Now()
		msg := NewCategoryDeletionMessage("alice", "coffee", "undefined")
		after := time.Now()

		if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
			t.Errorf("timestamp %v outside [%v, %v]", msg.Timestamp, before, after)
		}
	})
}

func TestTransactionEventMessage(t *testing.T) {
	t.Run("decodes_ledger_payload", func(t *testing.T) {
		payload := `{
			"username": "alice",
			"category_name": "groceries",
			"amount_cents": -4500,
			"transaction_type": "EXPENSE",
			"timestamp": "2026-08-15T10:30:00Z"
		}`

		msg, err := TransactionEventMessageFromJSON([]byte(payload))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if msg.Username != "alice" {
			t.Errorf("expected alice, got %s", msg.Username)
		}
		if msg.AmountCents != -4500 {
			t.Errorf("expected -4500, got %d", msg.AmountCents)
		}
		if msg.TransactionType != "EXPENSE" {
			t.Errorf("expected EXPENSE, got %s", msg.TransactionType)
		}
	})

	t.Run("rejects_malformed_payload", func(t *testing.T) {
		_, err := TransactionEventMessageFromJSON([]byte(`{"amount_cents": "not-a-number"}`))
		if err == nil {
			t.Fatal("expected decode error")
		}
	})
}
