package configs

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoad_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viper.Reset()
	t.Setenv("APP_PRIMARY_DB_ADDR", "postgres:postgres@localhost:5432/payments")
	t.Setenv("APP_KAFKA_BROKERS", "localhost:9092")

	cfg, err := Load(zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, "payments-verified", cfg.KafkaPaymentTopic)
	assert.Equal(t, "receipt-worker", cfg.KafkaConsumerGroup)
	assert.Equal(t, 5, cfg.MaxRetryCount)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBaseBackoff)
}

func TestLoad_RejectsRetryCountOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viper.Reset()
	t.Setenv("APP_PRIMARY_DB_ADDR", "postgres:postgres@localhost:5432/payments")
	t.Setenv("APP_KAFKA_BROKERS", "localhost:9092")
	t.Setenv("APP_MAX_RETRY_COUNT", "50")

	_, err := Load(zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_RETRY_COUNT")
}

func TestLoad_RequiresDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viper.Reset()
	t.Setenv("APP_KAFKA_BROKERS", "localhost:9092")

	_, err := Load(zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIMARY_DB_ADDR")
}
