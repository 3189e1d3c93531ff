package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTaxRate                = "TAX_RATE"
	EnvBookingRefPrefix       = "BOOKING_REF_PREFIX"
	EnvBookingRefMaxAttempts  = "BOOKING_REF_MAX_ATTEMPTS"
	EnvCancellationNoticeDays = "CANCELLATION_NOTICE_DAYS"
	EnvPaymentTolerance       = "PAYMENT_TOLERANCE"
	EnvServiceAreaCity        = "SERVICE_AREA_CITY"

	EnvXenditAPIURL          = "XENDIT_API_URL"
	EnvXenditSecretKey       = "XENDIT_SECRET_KEY"
	EnvXenditCallbackToken   = "XENDIT_CALLBACK_TOKEN"
	EnvXenditInvoiceDuration = "XENDIT_INVOICE_DURATION"
	EnvXenditTimeout         = "XENDIT_TIMEOUT"
	EnvPaymentSuccessURL     = "PAYMENT_SUCCESS_URL"
	EnvPaymentFailureURL     = "PAYMENT_FAILURE_URL"

	EnvSMTPHost      = "SMTP_HOST"
	EnvSMTPPort      = "SMTP_PORT"
	EnvSMTPUser      = "SMTP_USER"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvSMTPFromEmail = "SMTP_FROM_EMAIL"

	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"
	EnvNotifierGroupID    = "NOTIFIER_GROUP_ID"
)
