package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dramscan/backend/internal/domain"
)

// OfferSearcher is the slice of the offer service the handlers depend on
type OfferSearcher interface {
	Search(ctx context.Context, query string, budget int) (*domain.SearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	offers OfferSearcher
}

// NewHandler creates a new HTTP handler
func NewHandler(offers OfferSearcher) *Handler {
	return &Handler{offers: offers}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dramscan-backend",
		"version": "1.0.0",
	})
}

// SearchOffers handles offer aggregation requests.
// Request body: {"query": "...", "budget": 8000}; budget is optional.
func (h *Handler) SearchOffers(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: query is required",
		})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrEmptyQuery.Error(),
		})
		return
	}

	if req.Budget < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "budget must not be negative",
		})
		return
	}

	result, err := h.offers.Search(c.Request.Context(), req.Query, req.Budget)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAllSourcesFailed):
			// Transient upstream failure: the caller may retry
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
