package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatService interface {
	Complete(ctx context.Context, traceID string, messages []ChatMessage) (string, error)
}

type ChatConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatServiceImpl forwards conversations to an OpenAI compatible chat completion endpoint.
type ChatServiceImpl struct {
	logger *zap.Logger
	cfg    ChatConfig
	client *http.Client
}

func NewChatService(logger *zap.Logger, cfg ChatConfig) ChatService {
	return &ChatServiceImpl{
		logger: logger,
		cfg:    cfg,
		client: utils.NewHTTPClient(utils.WithClientTimeout(cfg.Timeout), utils.WithResponseHeaderTimeout(cfg.Timeout)),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *ChatServiceImpl) Complete(ctx context.Context, traceID string, messages []ChatMessage) (string, error) {
	if utils.IsEmpty(c.cfg.APIKey) {
		return "", pkg.NewAppError(pkg.ErrFeatureDisabledCode, "chat is not configured", nil)
	}

	body, err := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to encode chat request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to build chat request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrUpstreamCode, "chat service unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrUpstreamCode, "chat service unavailable", err)
	}
	if resp.StatusCode != http.StatusOK {
		var ce chatError
		msg := string(raw)
		if json.Unmarshal(raw, &ce) == nil && ce.Error.Message != "" {
			msg = ce.Error.Message
		}
		c.logger.Warn("chat_upstream_rejected", zap.String(pkg.TraceId, traceID), zap.Int("status", resp.StatusCode))
		return "", pkg.NewAppError(pkg.ErrUpstreamCode, "chat service rejected the request", fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", pkg.NewAppError(pkg.ErrUpstreamCode, "chat service returned an invalid response", err)
	}
	if len(cr.Choices) == 0 {
		return "", pkg.NewAppError(pkg.ErrUpstreamCode, "chat service returned no choices", nil)
	}
	return cr.Choices[0].Message.Content, nil
}
