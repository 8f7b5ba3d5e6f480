package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"homesearch/internal/model"
	"homesearch/internal/rentcast"
)

// ListingsFetcher runs a listings search directly
type ListingsFetcher interface {
	FetchListings(ctx context.Context, f model.SearchFilter) model.ToolResult
}

// ListingsHandler exposes the listings gateway without the model
type ListingsHandler struct {
	gateway ListingsFetcher
}

// NewListingsHandler creates a new listings handler
func NewListingsHandler(gateway ListingsFetcher) *ListingsHandler {
	return &ListingsHandler{gateway: gateway}
}

// Fetch handles POST /api/v1/listings. An empty body runs the probe filter.
func (h *ListingsHandler) Fetch(c *gin.Context) {
	filter := rentcast.ProbeFilter()
	if c.Request.ContentLength != 0 {
		filter = model.SearchFilter{}
		if err := c.ShouldBindJSON(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}

	start := time.Now()
	result := h.gateway.FetchListings(c.Request.Context(), filter)

	c.JSON(http.StatusOK, model.ListingsResponse{
		RequestID: requestID(c),
		Result:    result,
		Took:      time.Since(start).Milliseconds(),
	})
}
