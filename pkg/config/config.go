package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"skybridge/pkg/client"
	"skybridge/pkg/logger"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	refPrefixRegex  = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

type XenditConfig struct {
	APIURL          string
	SecretKey       string
	CallbackToken   string
	InvoiceDuration time.Duration
	Timeout         time.Duration
	SuccessURL      string
	FailureURL      string
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
}

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	TaxRate                float64
	BookingRefPrefix       string
	BookingRefMaxAttempts  int
	CancellationNoticeDays int
	PaymentTolerance       float64
	ServiceAreaCity        string

	Xendit XenditConfig
	SMTP   SMTPConfig

	BookingEventsTopic string
	NotifierGroupID    string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the configuration from the environment and exits the process
// when it is invalid.
func Load(serviceName string) *Config {
	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func FromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		TaxRate:                getEnvFloat(EnvTaxRate, DefaultTaxRate),
		BookingRefPrefix:       getEnvStr(EnvBookingRefPrefix, DefaultBookingRefPrefix),
		BookingRefMaxAttempts:  getEnvNum(EnvBookingRefMaxAttempts, DefaultBookingRefMaxAttempts),
		CancellationNoticeDays: getEnvNum(EnvCancellationNoticeDays, DefaultCancellationNoticeDays),
		PaymentTolerance:       getEnvFloat(EnvPaymentTolerance, DefaultPaymentTolerance),
		ServiceAreaCity:        getEnvStr(EnvServiceAreaCity, DefaultServiceAreaCity),

		Xendit: XenditConfig{
			APIURL:          getEnvStr(EnvXenditAPIURL, DefaultXenditAPIURL),
			SecretKey:       getEnvStr(EnvXenditSecretKey, ""),
			CallbackToken:   getEnvStr(EnvXenditCallbackToken, ""),
			InvoiceDuration: getEnvDuration(EnvXenditInvoiceDuration, DefaultXenditInvoiceDuration),
			Timeout:         getEnvDuration(EnvXenditTimeout, DefaultXenditTimeout),
			SuccessURL:      getEnvStr(EnvPaymentSuccessURL, ""),
			FailureURL:      getEnvStr(EnvPaymentFailureURL, ""),
		},
		SMTP: SMTPConfig{
			Host:      getEnvStr(EnvSMTPHost, ""),
			Port:      getEnvNum(EnvSMTPPort, DefaultSMTPPort),
			User:      getEnvStr(EnvSMTPUser, ""),
			Password:  getEnvStr(EnvSMTPPassword, ""),
			FromEmail: getEnvStr(EnvSMTPFromEmail, DefaultSMTPFromEmail),
		},

		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		NotifierGroupID:    getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"XenditInvoiceDuration", cfg.Xendit.InvoiceDuration},
		{"XenditTimeout", cfg.Xendit.Timeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.TaxRate < 0 || cfg.TaxRate > 1 {
		errors = append(errors, fmt.Sprintf("TaxRate must be between 0 and 1, got: %v", cfg.TaxRate))
	}
	if !refPrefixRegex.MatchString(cfg.BookingRefPrefix) {
		errors = append(errors, fmt.Sprintf("BookingRefPrefix must be 2-5 uppercase letters, got: %s", cfg.BookingRefPrefix))
	}
	if cfg.BookingRefMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("BookingRefMaxAttempts must be at least 1, got: %d", cfg.BookingRefMaxAttempts))
	}
	if cfg.CancellationNoticeDays < 0 {
		errors = append(errors, fmt.Sprintf("CancellationNoticeDays cannot be negative, got: %d", cfg.CancellationNoticeDays))
	}
	if cfg.PaymentTolerance < 0 {
		errors = append(errors, fmt.Sprintf("PaymentTolerance cannot be negative, got: %v", cfg.PaymentTolerance))
	}

	if u, err := url.Parse(cfg.Xendit.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("XenditAPIURL must be an absolute URL, got: %s", cfg.Xendit.APIURL))
	}

	if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTP.Port))
	}
	if !strings.Contains(cfg.SMTP.FromEmail, "@") {
		errors = append(errors, fmt.Sprintf("SMTPFromEmail must be an email address, got: %s", cfg.SMTP.FromEmail))
	}

	if cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty")
	}
	if cfg.NotifierGroupID == "" {
		errors = append(errors, "NotifierGroupID cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"tax_rate", cfg.TaxRate,
		"booking_ref_prefix", cfg.BookingRefPrefix,
		"booking_ref_max_attempts", cfg.BookingRefMaxAttempts,
		"cancellation_notice_days", cfg.CancellationNoticeDays,
		"payment_tolerance", cfg.PaymentTolerance,
		"service_area_city", cfg.ServiceAreaCity,
		"xendit_api_url", cfg.Xendit.APIURL,
		"xendit_secret_set", cfg.Xendit.SecretKey != "",
		"xendit_callback_token_set", cfg.Xendit.CallbackToken != "",
		"xendit_invoice_duration", cfg.Xendit.InvoiceDuration,
		"smtp_host", cfg.SMTP.Host,
		"smtp_port", cfg.SMTP.Port,
		"smtp_password_set", cfg.SMTP.Password != "",
		"smtp_from", cfg.SMTP.FromEmail,
		"booking_events_topic", cfg.BookingEventsTopic,
		"notifier_group_id", cfg.NotifierGroupID,
	)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPaginationPageLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
