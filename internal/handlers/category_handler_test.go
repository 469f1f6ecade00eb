package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "billplan/internal/errors"
	"billplan/internal/middleware"
	"billplan/internal/models"
	"billplan/internal/pagination"
	"billplan/internal/services"
	"billplan/internal/validator"
)

// --- mock category service ---

type mockCategoryService struct {
	createCustomCategoryFn                func(username string, draft services.CategoryDraft) (*models.Category, error)
	findCategoryFn                        func(username, name string) (*models.Category, error)
	listCategoriesFn                      func(username string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	updateCategoryFn                      func(username string, draft services.CategoryDraft) (*models.Category, error)
	deleteCategoryFn                      func(username, name string, replacement *string) error
	createStandardCategoriesIfNotExistsFn func(username string) ([]models.Category, error)
}

func (m *mockCategoryService) CreateCustomCategory(username string, draft services.CategoryDraft) (*models.Category, error) {
	if m.createCustomCategoryFn != nil {
		return m.createCustomCategoryFn(username, draft)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) FindCategory(username, name string) (*models.Category, error) {
	if m.findCategoryFn != nil {
		return m.findCategoryFn(username, name)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories(username string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(username, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) UpdateCategory(username string, draft services.CategoryDraft) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(username, draft)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(username, name string, replacement *string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(username, name, replacement)
	}
	return nil
}

func (m *mockCategoryService) CreateStandardCategoriesIfNotExists(username string) ([]models.Category, error) {
	if m.createStandardCategoriesIfNotExistsFn != nil {
		return m.createStandardCategoriesIfNotExistsFn(username)
	}
	return []models.Category{}, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUsername(username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UsernameKey, username)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUsername("alice"))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.ListCategories)
	auth.POST("/categories/standard", handler.SeedStandardCategories)
	auth.GET("/categories/:name", handler.GetCategory)
	auth.PUT("/categories/:name", handler.UpdateCategory)
	auth.DELETE("/categories/:name", handler.DeleteCategory)
	return r
}

// --- tests ---

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCustomCategoryFn: func(username string, draft services.CategoryDraft) (*models.Category, error) {
				return &models.Category{
					Base:     models.Base{ID: "01", Version: 1},
					Username: username,
					Name:     draft.Name,
					Type:     draft.Type,
					Kind:     models.CategoryKindCustom,
					Limit:    draft.Limit,
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "POST", "/categories",
			`{"name":"coffee","type":"EXPENSE","limit":3000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		cat := result["category"].(map[string]interface{})
		if cat["name"] != "coffee" {
			t.Errorf("expected coffee, got %v", cat["name"])
		}
		if cat["type"] != "EXPENSE" {
			t.Errorf("expected EXPENSE, got %v", cat["type"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{"type":"EXPENSE"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"coffee","type":"TRANSFER"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on negative limit", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"coffee","type":"EXPENSE","limit":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCustomCategoryFn: func(string, services.CategoryDraft) (*models.Category, error) {
				return nil, apperrors.ErrCategoryExists
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "POST", "/categories", `{"name":"coffee","type":"EXPENSE"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_EXISTS")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{})
		r := gin.New()
		r.POST("/categories", handler.CreateCategory)

		rec := doRequest(r, "POST", "/categories", `{"name":"coffee","type":"EXPENSE"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	t.Run("returns 200 with categories", func(t *testing.T) {
		catSvc := &mockCategoryService{
			listCategoriesFn: func(string, pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				resp := pagination.NewPageResponse([]models.Category{
					{Name: "books", Type: models.TransactionTypeExpense},
					{Name: "coffee", Type: models.TransactionTypeExpense},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 categories, got %d", len(data))
		}
	})

	t.Run("passes page parameters through", func(t *testing.T) {
		var captured pagination.PageRequest
		catSvc := &mockCategoryService{
			listCategoriesFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				captured = page
				resp := pagination.NewPageResponse([]models.Category{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		doRequest(r, "GET", "/categories?page=3&page_size=5", "")

		if captured.Page != 3 || captured.PageSize != 5 {
			t.Errorf("expected page 3 size 5, got %+v", captured)
		}
	})
}

func TestCategoryHandler_GetCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			findCategoryFn: func(username, name string) (*models.Category, error) {
				return &models.Category{Username: username, Name: name}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "GET", "/categories/coffee", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		cat := result["category"].(map[string]interface{})
		if cat["name"] != "coffee" {
			t.Errorf("expected coffee, got %v", cat["name"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			findCategoryFn: func(string, string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "GET", "/categories/nope", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			updateCategoryFn: func(_ string, draft services.CategoryDraft) (*models.Category, error) {
				return &models.Category{Name: draft.Name, Limit: draft.Limit}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "PUT", "/categories/coffee", `{"limit":5000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		cat := result["category"].(map[string]interface{})
		if cat["name"] != "coffee" {
			t.Errorf("expected coffee, got %v", cat["name"])
		}
	})

	t.Run("returns 409 on version conflict", func(t *testing.T) {
		catSvc := &mockCategoryService{
			updateCategoryFn: func(string, services.CategoryDraft) (*models.Category, error) {
				return nil, apperrors.ErrVersionConflict
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "PUT", "/categories/coffee", `{"limit":5000}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VERSION_CONFLICT")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "DELETE", "/categories/coffee", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("forwards replacement query parameter", func(t *testing.T) {
		var captured *string
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(_, _ string, replacement *string) error {
				captured = replacement
				return nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		doRequest(r, "DELETE", "/categories/coffee?replacement=drinks", "")

		if captured == nil || *captured != "drinks" {
			t.Errorf("expected replacement drinks, got %v", captured)
		}
	})

	t.Run("omits replacement when absent", func(t *testing.T) {
		called := false
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(_, _ string, replacement *string) error {
				called = true
				if replacement != nil {
					t.Errorf("expected nil replacement, got %v", *replacement)
				}
				return nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		doRequest(r, "DELETE", "/categories/coffee", "")

		if !called {
			t.Fatal("expected delete to be called")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(string, string, *string) error {
				return apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "DELETE", "/categories/nope", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_SeedStandardCategories(t *testing.T) {
	t.Run("returns created count", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createStandardCategoriesIfNotExistsFn: func(username string) ([]models.Category, error) {
				return []models.Category{
					{Username: username, Name: "groceries", Kind: models.CategoryKindStandard},
					{Username: username, Name: "salary", Kind: models.CategoryKindStandard},
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "POST", "/categories/standard", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["created"] != float64(2) {
			t.Errorf("expected created 2, got %v", result["created"])
		}
	})

	t.Run("returns zero when nothing is missing", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories/standard", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["created"] != float64(0) {
			t.Errorf("expected created 0, got %v", result["created"])
		}
	})
}
