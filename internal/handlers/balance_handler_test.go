package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "billplan/internal/errors"
	"billplan/internal/models"
	"billplan/internal/services"
)

// --- mock balance service ---

type mockBalanceService struct {
	getBalanceFn       func(username string) (*models.Balance, error)
	applyTransactionFn func(event services.TransactionEvent) (*models.Balance, error)
}

func (m *mockBalanceService) GetBalance(username string) (*models.Balance, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(username)
	}
	return &models.Balance{}, nil
}

func (m *mockBalanceService) ApplyTransaction(event services.TransactionEvent) (*models.Balance, error) {
	if m.applyTransactionFn != nil {
		return m.applyTransactionFn(event)
	}
	return &models.Balance{}, nil
}

var _ services.BalanceServicer = (*mockBalanceService)(nil)

func setupBalanceRouter(handler *BalanceHandler) *gin.Engine {
	r := gin.New()
	r.GET("/balance", injectUsername("alice"), handler.GetBalance)
	return r
}

// --- tests ---

func TestBalanceHandler_GetBalance(t *testing.T) {
	t.Run("returns 200 with balance", func(t *testing.T) {
		svc := &mockBalanceService{
			getBalanceFn: func(username string) (*models.Balance, error) {
				return &models.Balance{Username: username, Amount: 12345}, nil
			},
		}
		r := setupBalanceRouter(NewBalanceHandler(svc))

		rec := doRequest(r, "GET", "/balance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		balance := result["balance"].(map[string]interface{})
		if balance["amount"] != float64(12345) {
			t.Errorf("expected amount 12345, got %v", balance["amount"])
		}
	})

	t.Run("returns 404 when no balance exists", func(t *testing.T) {
		svc := &mockBalanceService{
			getBalanceFn: func(string) (*models.Balance, error) {
				return nil, apperrors.ErrBalanceNotFound
			},
		}
		r := setupBalanceRouter(NewBalanceHandler(svc))

		rec := doRequest(r, "GET", "/balance", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BALANCE_NOT_FOUND")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewBalanceHandler(&mockBalanceService{})
		r := gin.New()
		r.GET("/balance", handler.GetBalance)

		rec := doRequest(r, "GET", "/balance", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
