package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"homesearch/internal/model"
	"homesearch/internal/service"
	"homesearch/internal/tools"
)

// Chatter runs conversations
type Chatter interface {
	Chat(ctx context.Context, history model.History) (model.History, error)
	Tools() []tools.ToolDescriptor
}

// ChatHandler handles conversation requests
type ChatHandler struct {
	driver Chatter
}

// NewChatHandler creates a new chat handler
func NewChatHandler(driver Chatter) *ChatHandler {
	return &ChatHandler{driver: driver}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	input := append(append(model.History(nil), req.History...), model.UserMessage(req.Prompt))

	history, err := h.driver.Chat(c.Request.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		var modelErr *service.ModelError
		if errors.As(err, &modelErr) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":      "Chat failed: " + err.Error(),
			"request_id": requestID(c),
		})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		RequestID: requestID(c),
		Answer:    history.FinalAnswer(),
		ToolCalls: len(history[len(input):].ToolCalls()),
		History:   history,
		Took:      time.Since(start).Milliseconds(),
	})
}

// Tools handles GET /api/v1/tools
func (h *ChatHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.driver.Tools()})
}
