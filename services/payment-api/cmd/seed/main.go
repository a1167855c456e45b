// Seeder for local development. Signs up users, then creates orders through the API
// with per-second throttling, and optionally confirms each order with a locally
// signed payment so the verify flow and the receipt worker get traffic too.
//
// Example:
//
//	go run ./services/payment-api/cmd/seed \
//	  -noOfUsers=20 \
//	  -noOfOrders=500 \
//	  -maxConcurrentRequests=20 \
//	  -rps=50 \
//	  -verify \
//	  -apiUrl=http://localhost:8080
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/razorpay"
	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	noOfUsers             = flag.Int("noOfUsers", 10, "Number of users to sign up")
	noOfOrders            = flag.Int("noOfOrders", 100, "Total number of orders to create")
	maxConcurrentRequests = flag.Int("maxConcurrentRequests", 10, "Max in-flight HTTP requests (worker pool size)")
	minOrderAmount        = flag.Float64("minOrderAmount", 500, "Min order amount in major units")
	maxOrderAmount        = flag.Float64("maxOrderAmount", 25000, "Max order amount in major units")
	donationRate          = flag.Float64("donationRate", 0.3, "Share of orders created as donations")
	apiURL                = flag.String("apiUrl", "http://localhost:8080", "Payment API base URL")
	rps                   = flag.Int("rps", 50, "Global requests-per-second limit")
	rpsBurst              = flag.Int("rpsBurst", 0, "Burst size for the limiter (0 => equals rps)")
	httpClientTimeoutMs   = flag.Int("httpClientTimeoutMs", 15000, "Total HTTP client timeout (ms)")
	verify                = flag.Bool("verify", false, "Confirm each created order with a signed payment (reads APP_RAZORPAY_SECRET)")
)

func main() {
	flag.Parse()

	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	if *rps <= 0 {
		logger.Fatal("rps_must_be_positive")
	}
	burst := *rpsBurst
	if burst <= 0 {
		burst = *rps
	}
	minA, maxA := *minOrderAmount, *maxOrderAmount
	if minA > maxA {
		minA, maxA = maxA, minA
	}

	var signer *razorpay.Signer
	if *verify {
		secret := os.Getenv("APP_RAZORPAY_SECRET")
		if utils.IsEmpty(secret) {
			logger.Fatal("verify_requires_APP_RAZORPAY_SECRET")
		}
		signer = razorpay.NewSigner(secret)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seeder := &Seeder{
		apiURL:       *apiURL,
		minAmount:    minA,
		maxAmount:    maxA,
		donationRate: *donationRate,
		workers:      *maxConcurrentRequests,
		limiter:      rate.NewLimiter(rate.Limit(*rps), burst),
		httpClient: utils.NewHTTPClient(
			utils.WithClientTimeout(time.Duration(*httpClientTimeoutMs)*time.Millisecond),
			utils.WithMaxConnsPerHost(*maxConcurrentRequests),
		),
		signer: signer,
		ctx:    ctx,
		logger: logger,
	}

	start := time.Now()
	logger.Info("start_seeding",
		zap.Int("no_of_users", *noOfUsers),
		zap.Int("no_of_orders", *noOfOrders),
		zap.Int("workers", seeder.workers),
		zap.Int("rps", *rps),
		zap.Bool("verify", *verify),
	)

	users := seeder.SeedUsers(*noOfUsers)
	if len(users) == 0 && *noOfUsers > 0 {
		logger.Error("no_users_created")
		os.Exit(1)
	}
	seeder.SeedOrders(*noOfOrders, users)

	logger.Info("seeding_completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("sent", seeder.stats.sent.Load()),
		zap.Int64("success", seeder.stats.ok.Load()),
		zap.Int64("failed", seeder.stats.fail.Load()),
		zap.Int64("verified", seeder.stats.verified.Load()),
	)
}
