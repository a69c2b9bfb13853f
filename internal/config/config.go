package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string
	DatabaseURI   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	Environment   string
	LogLevel      string

	JWTSecret string
	TokenTTL  time.Duration

	FrontendURL    string
	PublicURL      string
	CORSOrigins    []string
	RequestTimeout time.Duration

	RateLimitFile   string
	LimiterShards   int
	LimiterCapacity int

	DepositCap int64

	InventoryPollInterval time.Duration
	InventoryBatch        int
	InventoryMaxAttempts  int
	WorkerPoolSize        int
	ShutdownTimeout       time.Duration

	NotifyRate    float64
	NotifyTimeout time.Duration

	MoMo  MoMoConfig
	VNPay VNPayConfig
	SMTP  SMTPConfig
}

// MoMoConfig holds MoMo merchant credentials. Empty secrets disable the gateway.
type MoMoConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
}

// VNPayConfig holds VNPay merchant credentials. Empty secrets disable the gateway.
type VNPayConfig struct {
	PayURL     string
	TmnCode    string
	HashSecret string
}

// SMTPConfig configures the email notification channel. Empty host disables it.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Production reports whether the service runs with production safeguards.
func (c *Config) Production() bool {
	return c.Environment == EnvironmentProduction
}

// Development reports whether development conveniences were explicitly
// enabled. Any other environment name gets none of them.
func (c *Config) Development() bool {
	return c.Environment == EnvironmentDevelopment
}

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

const (
	defaultRunAddress            = ":8080"
	defaultEnvironment           = EnvironmentProduction
	defaultLogLevel              = "info"
	defaultJWTSecret             = "change-me-in-production"
	defaultTokenTTL              = 7 * 24 * time.Hour
	defaultFrontendURL           = "http://localhost:3000"
	defaultPublicURL             = "http://localhost:8080"
	defaultRequestTimeout        = 15 * time.Second
	defaultLimiterShards         = 64
	defaultLimiterCapacity       = 4096
	defaultDepositCap            = 3_000_000
	defaultInventoryPollInterval = 3 * time.Second
	defaultInventoryBatch        = 32
	defaultInventoryMaxAttempts  = 5
	defaultWorkerPoolSize        = 4
	defaultShutdownTimeout       = 10 * time.Second
	defaultNotifyRate            = 20
	defaultNotifyTimeout         = 10 * time.Second
	defaultMoMoEndpoint          = "https://test-payment.momo.vn"
	defaultVNPayURL              = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	defaultSMTPPort              = 587
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		RedisAddress:          getString(lookup, "REDIS_ADDRESS", ""),
		RedisPassword:         getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:               getInt(lookup, "REDIS_DB", 0),
		Environment:           strings.ToLower(getString(lookup, "APP_ENV", defaultEnvironment)),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		FrontendURL:           getString(lookup, "FRONTEND_URL", defaultFrontendURL),
		PublicURL:             getString(lookup, "PUBLIC_URL", defaultPublicURL),
		CORSOrigins:           getList(lookup, "CORS_ORIGINS"),
		RequestTimeout:        getDuration(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout),
		RateLimitFile:         getString(lookup, "RATE_LIMIT_FILE", ""),
		LimiterShards:         getInt(lookup, "LIMITER_SHARDS", defaultLimiterShards),
		LimiterCapacity:       getInt(lookup, "LIMITER_SHARD_CAPACITY", defaultLimiterCapacity),
		DepositCap:            int64(getInt(lookup, "DEPOSIT_CAP", defaultDepositCap)),
		InventoryPollInterval: getDuration(lookup, "INVENTORY_POLL_INTERVAL", defaultInventoryPollInterval),
		InventoryBatch:        getInt(lookup, "INVENTORY_BATCH_SIZE", defaultInventoryBatch),
		InventoryMaxAttempts:  getInt(lookup, "INVENTORY_MAX_ATTEMPTS", defaultInventoryMaxAttempts),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		NotifyRate:            getFloat(lookup, "NOTIFY_RATE", defaultNotifyRate),
		NotifyTimeout:         getDuration(lookup, "NOTIFY_TIMEOUT", defaultNotifyTimeout),
		MoMo: MoMoConfig{
			Endpoint:    getString(lookup, "MOMO_ENDPOINT", defaultMoMoEndpoint),
			PartnerCode: getString(lookup, "MOMO_PARTNER_CODE", ""),
			AccessKey:   getString(lookup, "MOMO_ACCESS_KEY", ""),
			SecretKey:   getString(lookup, "MOMO_SECRET_KEY", ""),
		},
		VNPay: VNPayConfig{
			PayURL:     getString(lookup, "VNPAY_URL", defaultVNPayURL),
			TmnCode:    getString(lookup, "VNPAY_TMN_CODE", ""),
			HashSecret: getString(lookup, "VNPAY_HASH_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:     getString(lookup, "SMTP_HOST", ""),
			Port:     getInt(lookup, "SMTP_PORT", defaultSMTPPort),
			Username: getString(lookup, "SMTP_USERNAME", ""),
			Password: getString(lookup, "SMTP_PASSWORD", ""),
			From:     getString(lookup, "SMTP_FROM", ""),
		},
	}

	fs := flag.NewFlagSet("evshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.InventoryPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for shared limiter and OTP state")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "Deployment environment")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing session tokens")
	fs.StringVar(&cfg.RateLimitFile, "rate-limits", cfg.RateLimitFile, "YAML file overriding rate limit tiers")
	fs.Int64Var(&cfg.DepositCap, "deposit-cap", cfg.DepositCap, "Maximum deposit amount in VND")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent inventory workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between inventory outbox polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.InventoryBatch, "poll-batch", cfg.InventoryBatch, "Maximum adjustments per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.InventoryPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	secrets := []struct {
		env string
		dst *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"REDIS_PASSWORD_FILE", &cfg.RedisPassword},
		{"MOMO_ACCESS_KEY_FILE", &cfg.MoMo.AccessKey},
		{"MOMO_SECRET_KEY_FILE", &cfg.MoMo.SecretKey},
		{"VNPAY_HASH_SECRET_FILE", &cfg.VNPay.HashSecret},
		{"SMTP_PASSWORD_FILE", &cfg.SMTP.Password},
	}
	for _, s := range secrets {
		if err := readSecretFile(lookup, s.env, s.dst); err != nil {
			return nil, err
		}
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.InventoryBatch <= 0 {
		cfg.InventoryBatch = defaultInventoryBatch
	}

	if cfg.InventoryMaxAttempts <= 0 {
		cfg.InventoryMaxAttempts = defaultInventoryMaxAttempts
	}

	if cfg.InventoryPollInterval <= 0 {
		cfg.InventoryPollInterval = defaultInventoryPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.LimiterShards <= 0 {
		cfg.LimiterShards = defaultLimiterShards
	}

	if cfg.LimiterCapacity <= 0 {
		cfg.LimiterCapacity = defaultLimiterCapacity
	}

	if cfg.NotifyRate <= 0 {
		cfg.NotifyRate = defaultNotifyRate
	}

	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	if cfg.DepositCap < 0 {
		return nil, fmt.Errorf("deposit cap must not be negative")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.Production() && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("jwt secret must be set in production")
	}

	return cfg, nil
}

func readSecretFile(lookup envLookup, key string, dst *string) error {
	path, ok := lookup(key)
	if !ok || path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(key, "_FILE")), err)
	}
	*dst = strings.TrimSpace(string(content))
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
