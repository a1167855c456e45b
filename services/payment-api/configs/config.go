package configs

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
)

const (
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"
	BrokerNone  = "none"
)

// Config holds application configuration for payment-api.
type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReadDbAddr    string `mapstructure:"READ_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`
	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required"`
	AesKey        string `mapstructure:"AES_KEY" validate:"required"`

	// Gateway. KEY_SECRET authenticates API calls, SECRET verifies payment signatures.
	RazorpayKeyID       string        `mapstructure:"RAZORPAY_KEY_ID" validate:"required"`
	RazorpayKeySecret   string        `mapstructure:"RAZORPAY_KEY_SECRET" validate:"required"`
	RazorpaySecret      string        `mapstructure:"RAZORPAY_SECRET" validate:"required"`
	RazorpayBaseURL     string        `mapstructure:"RAZORPAY_BASE_URL" validate:"required,url"`
	GatewayTimeout      time.Duration `mapstructure:"GATEWAY_TIMEOUT" validate:"required"`
	SupportedCurrencies string        `mapstructure:"SUPPORTED_CURRENCIES" validate:"required"`
	IdempotencyTTL      time.Duration `mapstructure:"IDEMPOTENCY_TTL" validate:"required"`

	UploadDir      string `mapstructure:"UPLOAD_DIR" validate:"required"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES" validate:"min=1"`

	// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is honoured. Empty trusts none.
	TrustedProxies          string        `mapstructure:"TRUSTED_PROXIES"`
	LoginRateLimitPerWindow int64         `mapstructure:"LOGIN_RATE_LIMIT_PER_WINDOW" validate:"min=0"`
	LoginRateLimitWindow    time.Duration `mapstructure:"LOGIN_RATE_LIMIT_WINDOW" validate:"required"`
	MaxReplicaRateLimit     int           `mapstructure:"MAX_REPLICA_RATE_LIMIT" validate:"min=0"`

	EventsBroker          string        `mapstructure:"EVENTS_BROKER" validate:"oneof=kafka amqp none"`
	KafkaBrokers          string        `mapstructure:"KAFKA_BROKERS" validate:"required_if=EventsBroker kafka"`
	KafkaPaymentTopic     string        `mapstructure:"KAFKA_PAYMENT_TOPIC" validate:"required_if=EventsBroker kafka"`
	KafkaPartition        int           `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaPaymentRetention time.Duration `mapstructure:"KAFKA_PAYMENT_RETENTION"`
	AmqpURL               string        `mapstructure:"AMQP_URL" validate:"required_if=EventsBroker amqp"`
	AmqpExchange          string        `mapstructure:"AMQP_EXCHANGE" validate:"required_if=EventsBroker amqp"`

	ChatAPIURL  string        `mapstructure:"CHAT_API_URL" validate:"required,url"`
	ChatAPIKey  string        `mapstructure:"CHAT_API_KEY"`
	ChatModel   string        `mapstructure:"CHAT_MODEL" validate:"required"`
	ChatTimeout time.Duration `mapstructure:"CHAT_TIMEOUT" validate:"required"`
}

// TrustedProxyList returns the trusted proxies, or nil when none are configured.
func (c *Config) TrustedProxyList() []string {
	out := utils.SplitCSV(c.TrustedProxies)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Currencies returns the supported currency codes, upper-cased.
func (c *Config) Currencies() []string {
	out := utils.SplitCSV(c.SupportedCurrencies)
	for i := range out {
		out[i] = strings.ToUpper(out[i])
	}
	return out
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")
	viper.SetDefault("SUPPORTED_CURRENCIES", "INR")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("LOGIN_RATE_LIMIT_PER_WINDOW", "10")
	viper.SetDefault("LOGIN_RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("MAX_REPLICA_RATE_LIMIT", "50")
	viper.SetDefault("EVENTS_BROKER", BrokerKafka)
	viper.SetDefault("KAFKA_PAYMENT_TOPIC", "payments-verified")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_PAYMENT_RETENTION", "168h")
	viper.SetDefault("AMQP_EXCHANGE", "payments")
	viper.SetDefault("CHAT_API_URL", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("CHAT_MODEL", "gpt-4o-mini")
	viper.SetDefault("CHAT_TIMEOUT", "30s")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running_in_test_mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running_in_development_mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/payment-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
