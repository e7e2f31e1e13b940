package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8003", cfg.HTTPAddr)
	assert.Equal(t, "payments", cfg.PaymentsCollection)
	assert.Equal(t, "orders", cfg.OrdersCollection)
	assert.Equal(t, "cart", cfg.CartCollection)
	assert.Equal(t, "outbox", cfg.OutboxCollection)
	assert.True(t, cfg.MongoTransactions)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 5*time.Second, cfg.CartTimeout)
	assert.Equal(t, "https://api.razorpay.com", cfg.RazorpayBaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_TRANSACTIONS", "false")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("PROCESSOR_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092")

	cfg := Load()
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 3*time.Second, cfg.ProcessorTimeout)
	assert.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	err := Load().Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "RAZORPAY_KEY_ID")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test")
	t.Setenv("RAZORPAY_KEY_SECRET", "shh")
	assert.NoError(t, Load().Validate())
}

func validConfig() *Config {
	cfg := Load()
	cfg.JWTSecret = "s3cret"
	cfg.RazorpayKeyID = "rzp_test"
	cfg.RazorpayKeySecret = "shh"
	return cfg
}

func TestValidate_RedisRequired(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "REDIS_ADDR")
}

func TestValidateStore(t *testing.T) {
	cfg := Load()
	cfg.JWTSecret = ""
	assert.NoError(t, cfg.ValidateStore(), "store checks ignore serving settings")

	cfg = validConfig()
	cfg.MongoDBName = ""
	cfg.OrdersCollection = ""
	err := cfg.ValidateStore()
	require.Error(t, err)
	assert.ErrorContains(t, err, "MONGO_DB_NAME")
	assert.ErrorContains(t, err, "collection names")

	// serving checks include the store checks
	assert.ErrorContains(t, cfg.Validate(), "MONGO_DB_NAME")
}
