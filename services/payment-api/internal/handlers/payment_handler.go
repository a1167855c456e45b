package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"github.com/tripfund/payment-backend/services/payment-api/internal/views"
	"go.uber.org/zap"
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	maxMinorUnits      = decimal.NewFromInt(math.MaxInt64)

	errFractionalMinorUnits = errors.New("amount has more than two decimal places")
)

type PaymentHandler struct {
	logger  *zap.Logger
	service services.PaymentService
}

func NewPaymentHandler(logger *zap.Logger, svc services.PaymentService) *PaymentHandler {
	return &PaymentHandler{logger: logger, service: svc}
}

// RegisterRoutes registers payment routes on the provided Gin router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/create-order", h.CreateOrder)
	r.POST("/verify-payment", h.VerifyPayment)
	r.GET("/orders/:orderId", h.GetOrder)
}

// toMinorUnits converts a major-unit amount (e.g. 499.50 rupees) into an integer number of paise.
func toMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(minorUnitsPerMajor)
	if !minor.IsInteger() {
		return 0, errFractionalMinorUnits
	}
	if !minor.IsPositive() || minor.GreaterThan(maxMinorUnits) {
		return 0, errors.New("amount must be positive")
	}
	return minor.IntPart(), nil
}

// CreateOrder godoc
// @Summary Create a payment order
// @Description Mints an order at the payment gateway and records it as Pending.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client supplied key; replays are rejected"
// @Param request body views.CreateOrderRequest true "Order"
// @Success 201 {object} pkg.APIResponse
// @Failure 400 {object} pkg.ErrorResponse
// @Failure 409 {object} pkg.ErrorResponse
// @Failure 502 {object} pkg.ErrorResponse
// @Router /api/v1/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}

	var req views.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	amount, err := toMinorUnits(req.Amount)
	if err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, err.Error(), err))
		return
	}

	in := services.CreateOrderInput{
		Amount:         amount,
		Currency:       req.Currency,
		Purpose:        pkg.OrderPurpose(req.Purpose),
		PackageName:    req.PackageName,
		IdempotencyKey: c.GetHeader(pkg.HeaderIdempotencyKey),
	}
	if in.Currency == "" {
		in.Currency = "INR"
	}
	contact := req.Donor
	if req.Traveler != nil {
		contact = req.Traveler
	}
	if contact != nil {
		in.Contact = models.Contact{Name: contact.Name, Email: contact.Email, Phone: contact.Phone}
	}
	if in.Purpose == "" {
		in.Purpose = pkg.OrderPurposeDonation
		if req.Traveler != nil {
			in.Purpose = pkg.OrderPurposeTravel
		}
	}

	order, err := h.service.CreateOrder(c.Request.Context(), traceID, in)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"orderId":  order.OrderID,
			"amount":   order.Amount,
			"currency": order.Currency,
		},
	})
}

var verificationResponses = map[services.VerificationResult]struct {
	status  int
	message string
}{
	services.Verified:          {http.StatusOK, "payment verified successfully"},
	services.AlreadyVerified:   {http.StatusOK, "payment was already verified"},
	services.SignatureMismatch: {http.StatusBadRequest, "payment verification failed"},
	services.UnknownOrder:      {http.StatusNotFound, "invalid order"},
}

// VerifyPayment godoc
// @Summary Verify a payment confirmation
// @Description Checks the gateway signature and marks the order Paid exactly once.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body views.VerifyPaymentRequest true "Gateway confirmation"
// @Success 200 {object} views.VerifyPaymentResponse
// @Failure 400 {object} views.VerifyPaymentResponse
// @Failure 404 {object} views.VerifyPaymentResponse
// @Failure 500 {object} pkg.ErrorResponse
// @Router /api/v1/verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}

	var req views.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	orderID, paymentID, signature, missing := req.Resolve()
	if len(missing) > 0 {
		badRequest(c, h.logger, traceID, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), traceID, orderID, paymentID, signature)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	out := verificationResponses[result]
	c.JSON(out.status, views.VerifyPaymentResponse{
		TraceID: traceID,
		Status:  string(result),
		OrderID: orderID,
		Message: out.message,
	})
}

// GetOrder godoc
// @Summary Get an order's payment status
// @Tags payments
// @Produce json
// @Param orderId path string true "Gateway order id"
// @Success 200 {object} views.OrderResponse
// @Failure 404 {object} pkg.ErrorResponse
// @Router /api/v1/orders/{orderId} [get]
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), traceID, c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.OrderResponse{
		OrderID:       order.OrderID,
		Purpose:       string(order.Purpose),
		PackageName:   order.PackageName,
		Amount:        order.Amount,
		Currency:      order.Currency,
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
	})
}
