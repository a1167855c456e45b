package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"github.com/tripfund/payment-backend/services/payment-api/internal/views"
	"go.uber.org/zap"
)

type ChatHandler struct {
	logger  *zap.Logger
	service services.ChatService
}

func NewChatHandler(logger *zap.Logger, svc services.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, service: svc}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

// Chat godoc
// @Summary Ask the travel assistant
// @Tags chat
// @Accept json
// @Produce json
// @Param request body views.ChatRequest true "Conversation"
// @Success 200 {object} pkg.APIResponse
// @Failure 502 {object} pkg.ErrorResponse
// @Failure 503 {object} pkg.ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	var req views.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	messages := make([]services.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, services.ChatMessage{Role: m.Role, Content: m.Content})
	}
	reply, err := h.service.Complete(c.Request.Context(), traceID, messages)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceID,
		Data:    map[string]interface{}{"reply": reply},
	})
}
