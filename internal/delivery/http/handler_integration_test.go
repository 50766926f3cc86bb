package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dramscan/backend/config"
	"github.com/dramscan/backend/internal/domain"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// fakeOfferSearcher is a canned offer service for handler tests
type fakeOfferSearcher struct {
	result     *domain.SearchResult
	err        error
	lastQuery  string
	lastBudget int
}

func (f *fakeOfferSearcher) Search(ctx context.Context, query string, budget int) (*domain.SearchResult, error) {
	f.lastQuery = query
	f.lastBudget = budget
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// setupTestRouter creates a test router over the given offer searcher
func setupTestRouter(offers OfferSearcher) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	handler := NewHandler(offers)
	return SetupRouter(cfg, handler)
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "dramscan-backend" {
			t.Errorf("service = %v, want dramscan-backend", response["service"])
		}
	})
}

func TestSearchOffersEndpoint(t *testing.T) {
	price := 4000
	okResult := &domain.SearchResult{
		Query: "サントリー ウイスキー",
		Items: []domain.OfferGroup{
			{
				Key: "サントリー ウイスキー|700ml|40%|NAS",
				Cheapest: &domain.Listing{
					Source:     domain.SourceRakuten,
					ExternalID: "r1",
					Title:      "サントリー ウイスキー 700ml 40%",
					Price:      &price,
				},
				Offers: []domain.Listing{
					{Source: domain.SourceRakuten, ExternalID: "r1", Title: "サントリー ウイスキー 700ml 40%", Price: &price},
				},
			},
		},
	}

	post := func(router *gin.Engine, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/api/v1/offers/search", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("returns ranked offer groups", func(t *testing.T) {
		fake := &fakeOfferSearcher{result: okResult}
		router := setupTestRouter(fake)

		w := post(router, `{"query": "サントリー ウイスキー", "budget": 5000}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}

		if fake.lastQuery != "サントリー ウイスキー" {
			t.Errorf("service received query %q", fake.lastQuery)
		}
		if fake.lastBudget != 5000 {
			t.Errorf("service received budget %d, want 5000", fake.lastBudget)
		}

		var response domain.SearchResult
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Items) != 1 {
			t.Fatalf("items = %d, want 1", len(response.Items))
		}
		item := response.Items[0]
		if item.Cheapest == nil || item.Cheapest.Price == nil || *item.Cheapest.Price != 4000 {
			t.Error("cheapest listing not serialized correctly")
		}
		if len(item.Offers) != 1 {
			t.Errorf("offers = %d, want 1", len(item.Offers))
		}
	})

	t.Run("budget is optional", func(t *testing.T) {
		fake := &fakeOfferSearcher{result: okResult}
		router := setupTestRouter(fake)

		w := post(router, `{"query": "ウイスキー"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if fake.lastBudget != 0 {
			t.Errorf("budget = %d, want 0", fake.lastBudget)
		}
	})

	t.Run("rejects missing query", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{result: okResult})

		w := post(router, `{"budget": 5000}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects blank query", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{result: okResult})

		w := post(router, `{"query": "   "}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects negative budget", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{result: okResult})

		w := post(router, `{"query": "ウイスキー", "budget": -100}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{result: okResult})

		w := post(router, `{not json`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("maps all-sources-failed to bad gateway", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{
			err: fmt.Errorf("%w: rakuten, yahoo", domain.ErrAllSourcesFailed),
		})

		w := post(router, `{"query": "ウイスキー"}`)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})

	t.Run("maps unexpected errors to internal server error", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{
			err: fmt.Errorf("boom"),
		})

		w := post(router, `{"query": "ウイスキー"}`)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})

	t.Run("reports failed sources in the response", func(t *testing.T) {
		router := setupTestRouter(&fakeOfferSearcher{
			result: &domain.SearchResult{
				Query:         "ウイスキー",
				Items:         []domain.OfferGroup{},
				FailedSources: []domain.Source{domain.SourceYahoo},
			},
		})

		w := post(router, `{"query": "ウイスキー"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response domain.SearchResult
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.FailedSources) != 1 || response.FailedSources[0] != domain.SourceYahoo {
			t.Errorf("FailedSources = %v, want [yahoo]", response.FailedSources)
		}
	})
}
