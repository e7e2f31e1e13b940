package config

import (
	"errors"
	"time"

	pkgconfig "github.com/sanketp1/ecommerce-microservices/pkg/config"
)

type Config struct {
	HTTPAddr           string
	MongoURI           string
	MongoDBName        string
	PaymentsCollection string
	OrdersCollection   string
	CartCollection     string
	OutboxCollection   string
	MongoTransactions  bool
	CartServiceURL     string
	CartTimeout        time.Duration
	RazorpayBaseURL    string
	RazorpayKeyID      string
	RazorpayKeySecret  string
	ProcessorTimeout   time.Duration
	Currency           string
	KafkaBrokers       []string
	RedisAddr          string
	RedisPassword      string
	JWTSecret          string
	LogLevel           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads settings without validating them; commands that serve
// traffic call Validate.
func Load() *Config {
	v := pkgconfig.New(map[string]any{
		"HTTP_ADDR":           ":8003",
		"MONGO_URI":           "mongodb://localhost:27017",
		"MONGO_DB_NAME":       "ecommerce",
		"PAYMENTS_COLLECTION": "payments",
		"ORDERS_COLLECTION":   "orders",
		"CART_COLLECTION":     "cart",
		"OUTBOX_COLLECTION":   "outbox",
		"MONGO_TRANSACTIONS":  true,
		"CART_SERVICE_URL":    "http://localhost:8001",
		"CART_TIMEOUT":        "5s",
		"RAZORPAY_BASE_URL":   "https://api.razorpay.com",
		"RAZORPAY_KEY_ID":     "",
		"RAZORPAY_KEY_SECRET": "",
		"PROCESSOR_TIMEOUT":   "10s",
		"CURRENCY":            "INR",
		"KAFKA_BROKERS":       "",
		"REDIS_ADDR":          "localhost:6379",
		"REDIS_PASSWORD":      "",
		"JWT_SECRET":          "",
		"LOG_LEVEL":           "info",
		"REQUEST_TIMEOUT":     "15s",
		"SHUTDOWN_TIMEOUT":    "10s",
	})

	return &Config{
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDBName:        v.GetString("MONGO_DB_NAME"),
		PaymentsCollection: v.GetString("PAYMENTS_COLLECTION"),
		OrdersCollection:   v.GetString("ORDERS_COLLECTION"),
		CartCollection:     v.GetString("CART_COLLECTION"),
		OutboxCollection:   v.GetString("OUTBOX_COLLECTION"),
		MongoTransactions:  v.GetBool("MONGO_TRANSACTIONS"),
		CartServiceURL:     v.GetString("CART_SERVICE_URL"),
		CartTimeout:        v.GetDuration("CART_TIMEOUT"),
		RazorpayBaseURL:    v.GetString("RAZORPAY_BASE_URL"),
		RazorpayKeyID:      v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  v.GetString("RAZORPAY_KEY_SECRET"),
		ProcessorTimeout:   v.GetDuration("PROCESSOR_TIMEOUT"),
		Currency:           v.GetString("CURRENCY"),
		KafkaBrokers:       pkgconfig.SplitCSV(v.GetString("KAFKA_BROKERS")),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
}

// ValidateStore checks the settings every command needs to reach the
// payment store.
func (c *Config) ValidateStore() error {
	var errs []error
	if c.MongoURI == "" || c.MongoDBName == "" {
		errs = append(errs, errors.New("MONGO_URI and MONGO_DB_NAME are required"))
	}
	if c.PaymentsCollection == "" || c.OrdersCollection == "" || c.CartCollection == "" || c.OutboxCollection == "" {
		errs = append(errs, errors.New("collection names must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	errs := []error{c.ValidateStore()}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required"))
	}
	if c.CartTimeout <= 0 || c.ProcessorTimeout <= 0 {
		errs = append(errs, errors.New("CART_TIMEOUT and PROCESSOR_TIMEOUT must be positive"))
	}
	if c.Currency == "" {
		errs = append(errs, errors.New("CURRENCY is required"))
	}
	return errors.Join(errs...)
}
