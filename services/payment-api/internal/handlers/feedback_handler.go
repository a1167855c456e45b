package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"github.com/tripfund/payment-backend/services/payment-api/internal/views"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	logger  *zap.Logger
	service services.FeedbackService
}

func NewFeedbackHandler(logger *zap.Logger, svc services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, service: svc}
}

func (h *FeedbackHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/feedback", h.Submit)
}

// Submit godoc
// @Summary Submit feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body views.FeedbackRequest true "Feedback"
// @Success 201 {object} pkg.APIResponse
// @Failure 400 {object} pkg.ErrorResponse
// @Router /api/v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	var req views.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	id, err := h.service.Submit(c.Request.Context(), traceID, req.Name, req.Email, req.Message)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusCreated, pkg.APIResponse{
		TraceID: traceID,
		Data:    map[string]interface{}{"feedbackId": id.String()},
	})
}
