package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"go.uber.org/zap"
)

// UploadURLPrefix is where stored files are served from.
const UploadURLPrefix = "uploads"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadService interface {
	// SaveProfilePicture stores the image and returns its public relative URL.
	SaveProfilePicture(ctx context.Context, traceID string, file *multipart.FileHeader) (string, error)
}

type UploadServiceImpl struct {
	logger   *zap.Logger
	dir      string
	maxBytes int64
}

func NewUploadService(logger *zap.Logger, dir string, maxBytes int64) (UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadServiceImpl{logger: logger, dir: dir, maxBytes: maxBytes}, nil
}

func (u *UploadServiceImpl) SaveProfilePicture(_ context.Context, traceID string, file *multipart.FileHeader) (string, error) {
	if file.Size > u.maxBytes {
		return "", pkg.NewAppError(pkg.ErrPayloadTooLargeCode, fmt.Sprintf("file exceeds %d bytes", u.maxBytes), nil)
	}
	src, err := file.Open()
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrInvalidInputCode, "cannot read uploaded file", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", pkg.NewAppError(pkg.ErrInvalidInputCode, "cannot read uploaded file", err)
	}
	head = head[:n]
	ext, ok := allowedImageTypes[http.DetectContentType(head)]
	if !ok {
		return "", pkg.NewAppError(pkg.ErrUnsupportedMediaCode, "only jpeg, png, gif and webp images are accepted", nil)
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "cannot store file", err)
	}
	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(src, u.maxBytes-int64(n)+1)))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > u.maxBytes {
		err = pkg.NewAppError(pkg.ErrPayloadTooLargeCode, fmt.Sprintf("file exceeds %d bytes", u.maxBytes), nil)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(u.dir, name))
		if pkg.HasCode(err, pkg.ErrPayloadTooLargeCode) {
			return "", err
		}
		return "", pkg.NewAppError(pkg.ErrServerCode, "cannot store file", err)
	}

	u.logger.Info("profile_picture_stored", zap.String(pkg.TraceId, traceID), zap.String("file", name), zap.Int64("bytes", written))
	return UploadURLPrefix + "/" + name, nil
}
