package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.razorpay.com"

// Config is the immutable gateway configuration loaded at startup.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// OrderRequest mirrors the gateway's create-order payload. Amount is in minor units.
type OrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

// Order is the subset of the gateway's order resource this service uses.
type Order struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// APIError is returned for any non-2xx gateway response.
type APIError struct {
	StatusCode  int
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s %s", e.StatusCode, e.Code, e.Description)
}

var ErrEmptyOrderID = errors.New("gateway returned an order without id")

// Client talks to the gateway's REST API using basic auth.
type Client struct {
	logger *zap.Logger
	cfg    Config
	http   *http.Client
}

func NewClient(logger *zap.Logger, cfg Config) *Client {
	if utils.IsEmpty(cfg.BaseURL) {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		logger: logger,
		cfg:    cfg,
		http:   utils.NewHTTPClient(utils.WithClientTimeout(cfg.Timeout), utils.WithResponseHeaderTimeout(cfg.Timeout)),
	}
}

// CreateOrder mints a remote order. It never retries.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if req.PaymentCapture == 0 {
		req.PaymentCapture = 1
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Order{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("read gateway response: %w", err)
	}
	c.logger.Debug("gateway_create_order",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Description = envelope.Error.Description
		}
		return Order{}, apiErr
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return Order{}, fmt.Errorf("decode gateway order: %w", err)
	}
	if utils.IsEmpty(order.ID) {
		return Order{}, ErrEmptyOrderID
	}
	return order, nil
}
