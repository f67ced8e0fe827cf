// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the canteen API.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"canteen"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	StaffUsername string        `env:"STAFF_USERNAME" envDefault:"admin123"`
	StaffPassword string        `env:"STAFF_PASSWORD" envDefault:"1234"`

	TaxRateBps        int64         `env:"TAX_RATE_BPS" envDefault:"500"`
	OrderPollInterval time.Duration `env:"ORDER_POLL_INTERVAL" envDefault:"10s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	CartClearAttempts int           `env:"CART_CLEAR_ATTEMPTS" envDefault:"3"`

	UPIID                string `env:"UPI_ID"`
	UPIName              string `env:"UPI_NAME" envDefault:"Canteen"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	PaymentMode          string `env:"PAYMENT_MODE" envDefault:"production"`

	RabbitMQURL    string `env:"RABBITMQ_URL"`
	OrdersExchange string `env:"ORDERS_EXCHANGE" envDefault:"orders_fanout"`
	PaymentsQueue  string `env:"PAYMENTS_QUEUE" envDefault:"payments.resolved"`
	RabbitPrefetch int    `env:"RABBITMQ_PREFETCH" envDefault:"10"`

	UploadDir       string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	BackupDir       string        `env:"BACKUP_DIR" envDefault:"./backup/uploads"`
	BackupRetention time.Duration `env:"BACKUP_RETENTION" envDefault:"96h"`
	BackupHour      int           `env:"BACKUP_HOUR" envDefault:"2"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	FrontendBaseURL string        `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional dotenv file and parses the environment into a Config.
// A missing default .env is not an error; a missing explicitly named file is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.TaxRateBps < 0 || c.TaxRateBps > 10000 {
		return fmt.Errorf("config: TAX_RATE_BPS %d out of range", c.TaxRateBps)
	}
	if c.OrderPollInterval <= 0 {
		return errors.New("config: ORDER_POLL_INTERVAL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	if c.CartClearAttempts < 1 {
		return errors.New("config: CART_CLEAR_ATTEMPTS must be at least 1")
	}
	return nil
}

// DSN returns DATABASE_URL or a key/value DSN assembled from the DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// PaymentSandbox reports whether webhook signatures are skipped.
func (c Config) PaymentSandbox() bool {
	return c.PaymentMode == "sandbox" || c.PaymentMode == "dev"
}
