package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg"
	"go.uber.org/zap/zaptest"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

// fileHeader builds a *multipart.FileHeader the same way gin does for an incoming request.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("profilePic", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["profilePic"][0]
}

func TestUploadService_StoresImage(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewUploadService(zaptest.NewLogger(t), dir, 1<<20)
	require.NoError(t, err)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)
	url, err := svc.SaveProfilePicture(context.Background(), "trace", fileHeader(t, "me.png", content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestUploadService_RejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewUploadService(zaptest.NewLogger(t), dir, 1<<20)
	require.NoError(t, err)

	_, err = svc.SaveProfilePicture(context.Background(), "trace", fileHeader(t, "evil.png", []byte("#!/bin/sh\necho hi\n")))
	assert.True(t, pkg.HasCode(err, pkg.ErrUnsupportedMediaCode))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestUploadService_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewUploadService(zaptest.NewLogger(t), dir, 1024)
	require.NoError(t, err)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 4096)...)
	_, err = svc.SaveProfilePicture(context.Background(), "trace", fileHeader(t, "big.png", content))
	assert.True(t, pkg.HasCode(err, pkg.ErrPayloadTooLargeCode))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
