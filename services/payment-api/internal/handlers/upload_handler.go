package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"go.uber.org/zap"
)

const profilePicField = "profilePic"

type UploadHandler struct {
	logger   *zap.Logger
	service  services.UploadService
	maxBytes int64
}

func NewUploadHandler(logger *zap.Logger, svc services.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{logger: logger, service: svc, maxBytes: maxBytes}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
}

// Upload godoc
// @Summary Upload a profile picture
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param profilePic formData file true "Image (jpeg, png, gif, webp)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} pkg.ErrorResponse
// @Failure 413 {object} pkg.ErrorResponse
// @Failure 415 {object} pkg.ErrorResponse
// @Router /api/v1/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	// multipart framing adds a little on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	file, err := c.FormFile(profilePicField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrPayloadTooLargeCode, "file too large", err))
			return
		}
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "no file uploaded", err))
		return
	}
	url, err := h.service.SaveProfilePicture(c.Request.Context(), traceID, file)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url, "traceId": traceID})
}
