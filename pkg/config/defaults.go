package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "skybridge"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit     = 100
	DefaultPaginationPageLimit = 10

	DefaultTaxRate                = 0.12
	DefaultBookingRefPrefix       = "GEM"
	DefaultBookingRefMaxAttempts  = 5
	DefaultCancellationNoticeDays = 7
	DefaultPaymentTolerance       = 1.0
	DefaultServiceAreaCity        = "Cordova, Cebu"

	DefaultXenditAPIURL          = "https://api.xendit.co"
	DefaultXenditInvoiceDuration = 24 * time.Hour
	DefaultXenditTimeout         = 10 * time.Second

	DefaultSMTPPort      = 587
	DefaultSMTPFromEmail = "bookings@skybridge.local"

	DefaultBookingEventsTopic = "booking-events"
	DefaultBookingEventsDLQ   = "dlq-booking-events"
	DefaultNotifierGroupID    = "skybridge-notifier"
	DefaultNotifierDLQ        = "dlq-notifier"
)
