package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
)

// Config holds application configuration for receipt-worker.
type Config struct {
	MetricsAddr        string        `mapstructure:"METRICS_ADDR" validate:"required"`
	PrimaryDbAddr      string        `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	MaxDbCons          int32         `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons          int32         `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`
	KafkaBrokers       string        `mapstructure:"KAFKA_BROKERS" validate:"required"`
	KafkaPartition     int           `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaPaymentTopic  string        `mapstructure:"KAFKA_PAYMENT_TOPIC" validate:"required"`
	KafkaConsumerGroup string        `mapstructure:"KAFKA_CONSUMER_GROUP" validate:"required"`
	KafkaDLQTopic      string        `mapstructure:"KAFKA_DLQ_TOPIC" validate:"required"`
	KafkaDLQRetention  time.Duration `mapstructure:"KAFKA_DLQ_RETENTION" validate:"required"`
	RetryBaseBackoff   time.Duration `mapstructure:"RETRY_BASE_BACKOFF" validate:"required"`
	MaxRetryBackoff    time.Duration `mapstructure:"MAX_RETRY_BACKOFF" validate:"required"`
	MaxRetryCount      int           `mapstructure:"MAX_RETRY_COUNT" validate:"min=1,max=10"`
	MaxConcurrentJobs  int           `mapstructure:"MAX_CONCURRENT_JOBS" validate:"min=1"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("METRICS_ADDR", ":9091")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_PAYMENT_TOPIC", "payments-verified")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "receipt-worker")
	viper.SetDefault("KAFKA_DLQ_TOPIC", "payments-verified-dlq")
	viper.SetDefault("KAFKA_DLQ_RETENTION", "336h")
	viper.SetDefault("RETRY_BASE_BACKOFF", "200ms")
	viper.SetDefault("MAX_RETRY_BACKOFF", "5s")
	viper.SetDefault("MAX_RETRY_COUNT", "5")
	viper.SetDefault("MAX_CONCURRENT_JOBS", "8")

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
	viper.AddConfigPath("./services/receipt-worker/configs")
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
