package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/razorpay"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const seedPassword = "seed-password-1"

var packages = []string{"Goa Beach Escape", "Kerala Backwaters", "Ladakh Road Trip", "Rajasthan Heritage Tour"}

type seedUser struct {
	Name  string
	Email string
}

type stats struct {
	sent     atomic.Int64
	ok       atomic.Int64
	fail     atomic.Int64
	verified atomic.Int64
}

type Seeder struct {
	apiURL       string
	minAmount    float64
	maxAmount    float64
	donationRate float64

	workers    int
	limiter    *rate.Limiter
	httpClient *http.Client
	signer     *razorpay.Signer
	ctx        context.Context
	logger     *zap.Logger

	stats stats
}

// SeedUsers signs up n users sequentially. Users that already exist are reused.
func (s *Seeder) SeedUsers(n int) []seedUser {
	users := make([]seedUser, 0, n)
	for i := 0; i < n; i++ {
		u := seedUser{Name: fmt.Sprintf("Seed User %d", i+1), Email: fmt.Sprintf("seed.user.%d@tripfund.test", i+1)}
		if err := s.limiter.Wait(s.ctx); err != nil {
			s.logger.Warn("limiter_wait_interrupted", zap.Error(err))
			return users
		}
		status, _, err := s.post("/api/v1/signup", map[string]string{"email": u.Email, "password": seedPassword}, "")
		switch {
		case err != nil:
			s.logger.Error("signup_failed", zap.String("email", u.Email), zap.Error(err))
			continue
		case status == http.StatusCreated, status == http.StatusConflict:
			users = append(users, u)
		default:
			s.logger.Error("signup_failed", zap.String("email", u.Email), zap.Int("status_code", status))
		}
	}
	return users
}

// SeedOrders spreads total orders across users through a bounded worker pool.
func (s *Seeder) SeedOrders(total int, users []seedUser) {
	if len(users) == 0 {
		return
	}
	jobs := make(chan seedUser, min(total, 1000))

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for u := range jobs {
				if err := s.limiter.Wait(s.ctx); err != nil {
					s.logger.Warn("limiter_wait_interrupted", zap.Error(err))
					return
				}
				s.createOrder(u)
			}
		}()
	}

enqueue:
	for i := 0; i < total; i++ {
		select {
		case <-s.ctx.Done():
			break enqueue
		case jobs <- users[i%len(users)]:
		}
	}
	close(jobs)
	wg.Wait()
}

func (s *Seeder) createOrder(u seedUser) {
	amount := decimal.NewFromFloat(rand.Float64()*(s.maxAmount-s.minAmount) + s.minAmount).Round(2)
	contact := map[string]string{"name": u.Name, "email": u.Email}
	body := map[string]interface{}{"amount": amount, "currency": "INR"}
	if rand.Float64() < s.donationRate {
		body["purpose"] = string(pkg.OrderPurposeDonation)
		body["donor"] = contact
	} else {
		body["purpose"] = string(pkg.OrderPurposeTravel)
		body["packageName"] = packages[rand.Intn(len(packages))]
		body["traveler"] = contact
	}

	start := time.Now()
	s.stats.sent.Add(1)
	status, resp, err := s.post("/api/v1/create-order", body, uuid.NewString())
	if err != nil || status != http.StatusCreated {
		s.stats.fail.Add(1)
		s.logger.Error("create_order_failed", zap.Int("status_code", status), zap.Error(err))
		return
	}
	s.stats.ok.Add(1)

	var created pkg.APIResponse
	if err := json.Unmarshal(resp, &created); err != nil {
		s.logger.Error("decode_create_order_failed", zap.Error(err))
		return
	}
	orderID, _ := created.Data["orderId"].(string)
	s.logger.Info("order_created",
		zap.String(pkg.OrderId, orderID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Duration("latency", time.Since(start)),
	)

	if s.signer != nil && orderID != "" {
		s.verifyOrder(orderID)
	}
}

func (s *Seeder) verifyOrder(orderID string) {
	paymentID := "pay_seed" + uuid.NewString()[:14]
	status, _, err := s.post("/api/v1/verify-payment", map[string]string{
		"orderId":   orderID,
		"paymentId": paymentID,
		"signature": s.signer.Sign(orderID, paymentID),
	}, "")
	if err != nil || status != http.StatusOK {
		s.logger.Error("verify_payment_failed", zap.String(pkg.OrderId, orderID), zap.Int("status_code", status), zap.Error(err))
		return
	}
	s.stats.verified.Add(1)
}

func (s *Seeder) post(path string, body interface{}, idempotencyKey string) (int, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.apiURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pkg.HeaderRequestId, uuid.NewString())
	if idempotencyKey != "" {
		req.Header.Set(pkg.HeaderIdempotencyKey, idempotencyKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, out, err
}
