package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/cache"
	"github.com/tripfund/payment-backend/pkg/database"
	middleware "github.com/tripfund/payment-backend/pkg/middlewares"
	"github.com/tripfund/payment-backend/pkg/razorpay"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"github.com/tripfund/payment-backend/pkg/utils"
	"github.com/tripfund/payment-backend/services/payment-api/configs"
	_ "github.com/tripfund/payment-backend/services/payment-api/docs"
	"github.com/tripfund/payment-backend/services/payment-api/internal/handlers"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "idempotency"

// redisPinger adapts a redis client to handlers.HealthChecker.
type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	aesKey, err := utils.DecodeString(cfg.AesKey)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	}
	if !utils.IsEmpty(cfg.ReadDbAddr) {
		dbConfig.ReadDSNs = []string{cfg.ReadDbAddr}
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	rdb, redisCloser, err := cache.New(ctx, cache.Config{Addr: cfg.RedisAddr})
	if err != nil {
		disconnect()
		return nil, nil, err
	}

	publisher, err := newEventPublisher(ctx, logger, cfg)
	if err != nil {
		redisCloser()
		disconnect()
		return nil, nil, err
	}

	// The ledger reads through the primary so a verification never sees a stale Pending row.
	orderRepo := repositories.NewOrderRepository(db.Primary(), aesKey)
	// Users read their own writes (login right after signup), so they stay on the primary too.
	userRepo := repositories.NewUserRepository(db.Primary())
	feedbackRepo := repositories.NewFeedbackRepository(db.Primary())

	gateway := razorpay.NewClient(logger, razorpay.Config{
		BaseURL:   cfg.RazorpayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		Timeout:   cfg.GatewayTimeout,
	})

	paymentService := services.NewPaymentService(services.PaymentServiceConfig{
		Logger:      logger,
		Gateway:     gateway,
		Verifier:    razorpay.NewSigner(cfg.RazorpaySecret),
		OrderRepo:   orderRepo,
		Publisher:   publisher,
		Idempotency: cache.NewIdempotencyStore(rdb, idempotencyKeyPrefix, cfg.IdempotencyTTL),
		Currencies:  cfg.Currencies(),
	})
	uploadService, err := services.NewUploadService(logger, cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		publisher.Close()
		redisCloser()
		disconnect()
		return nil, nil, err
	}
	chatService := services.NewChatService(logger, services.ChatConfig{
		URL:     cfg.ChatAPIURL,
		APIKey:  cfg.ChatAPIKey,
		Model:   cfg.ChatModel,
		Timeout: cfg.ChatTimeout,
	})

	loginLimiter := pkg.NewDistributedLimiter(rdb, "ratelimit:login", cfg.MaxReplicaRateLimit, cfg.MaxReplicaRateLimit,
		cfg.LoginRateLimitPerWindow, cfg.LoginRateLimitWindow, logger)

	baseHandler := handlers.NewBaseHandler(logger, map[string]handlers.HealthChecker{
		"postgres": db,
		"redis":    redisPinger{rdb: rdb},
	})
	paymentHandler := handlers.NewPaymentHandler(logger, paymentService)
	authHandler := handlers.NewAuthHandler(logger, services.NewAuthService(logger, userRepo), middleware.RateLimit(logger, loginLimiter))
	uploadHandler := handlers.NewUploadHandler(logger, uploadService, cfg.MaxUploadBytes)
	feedbackHandler := handlers.NewFeedbackHandler(logger, services.NewFeedbackService(logger, feedbackRepo))
	chatHandler := handlers.NewChatHandler(logger, chatService)

	// Router
	r := gin.Default()
	// ClientIP keys the login throttle, so X-Forwarded-For is only read from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		publisher.Close()
		redisCloser()
		disconnect()
		return nil, nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static("/"+services.UploadURLPrefix, cfg.UploadDir)

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	paymentHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)
	uploadHandler.RegisterRoutes(api)
	feedbackHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(api)
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		// flush pending payment events before the pools go away
		publisher.Close()
		redisCloser()
		disconnect()
	}

	return srv, cleanup, nil
}

func newEventPublisher(ctx context.Context, logger *zap.Logger, cfg *configs.Config) (services.EventPublisher, error) {
	switch cfg.EventsBroker {
	case configs.BrokerKafka:
		return services.NewKafkaEventPublisher(ctx, logger, cfg)
	case configs.BrokerAMQP:
		return services.NewAmqpEventPublisher(logger, cfg)
	default:
		logger.Warn("payment_events_disabled", zap.String("broker", cfg.EventsBroker))
		return services.NewNoopEventPublisher(logger), nil
	}
}
