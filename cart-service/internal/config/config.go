package config

import (
	"errors"
	"time"

	pkgconfig "github.com/sanketp1/ecommerce-microservices/pkg/config"
)

type Config struct {
	HTTPAddr          string
	MongoURI          string
	MongoDBName       string
	CartCollection    string
	RedisAddr         string
	RedisPassword     string
	ProductServiceURL string
	CatalogTimeout    time.Duration
	KafkaBrokers      []string
	JWTSecret         string
	LogLevel          string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	v := pkgconfig.New(map[string]any{
		"HTTP_ADDR":           ":8001",
		"MONGO_URI":           "mongodb://localhost:27017",
		"MONGO_DB_NAME":       "ecommerce",
		"CART_COLLECTION":     "cart",
		"REDIS_ADDR":          "localhost:6379",
		"REDIS_PASSWORD":      "",
		"PRODUCT_SERVICE_URL": "http://localhost:8000",
		"CATALOG_TIMEOUT":     "5s",
		"KAFKA_BROKERS":       "",
		"JWT_SECRET":          "",
		"LOG_LEVEL":           "info",
		"REQUEST_TIMEOUT":     "10s",
		"SHUTDOWN_TIMEOUT":    "10s",
	})

	cfg := &Config{
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDBName:       v.GetString("MONGO_DB_NAME"),
		CartCollection:    v.GetString("CART_COLLECTION"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		ProductServiceURL: v.GetString("PRODUCT_SERVICE_URL"),
		CatalogTimeout:    v.GetDuration("CATALOG_TIMEOUT"),
		KafkaBrokers:      pkgconfig.SplitCSV(v.GetString("KAFKA_BROKERS")),
		JWTSecret:         v.GetString("JWT_SECRET"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.CatalogTimeout <= 0 {
		return nil, errors.New("CATALOG_TIMEOUT must be positive")
	}
	return cfg, nil
}
