package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"homesearch/internal/model"
)

// ToolCallStore reads the tool call audit log
type ToolCallStore interface {
	ToolCallsByRequest(ctx context.Context, requestID string) ([]model.ToolCallLog, error)
}

// AuditHandler serves the tool call audit log
type AuditHandler struct {
	store ToolCallStore
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(store ToolCallStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// ToolCalls handles GET /api/v1/requests/:request_id/tool-calls
func (h *AuditHandler) ToolCalls(c *gin.Context) {
	id := c.Param("request_id")
	entries, err := h.store.ToolCallsByRequest(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tool calls: " + err.Error()})
		return
	}
	if entries == nil {
		entries = []model.ToolCallLog{}
	}
	c.JSON(http.StatusOK, gin.H{"request_id": id, "tool_calls": entries})
}
