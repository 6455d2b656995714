package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotLockTTL     = "SLOT_LOCK_TTL"
	EnvMaxOverlapCheck = "MAX_OVERLAP_CHECK"

	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID       = "NOTIFIER_GROUP_ID"

	EnvMobileMoneyEnabled = "ENABLE_MOBILE_MONEY_PAYMENTS"
	EnvPaymentCurrency    = "PAYMENT_CURRENCY"
	EnvMTNBaseURL         = "MTN_MOBILE_MONEY_API_URL"
	EnvMTNAPIKey          = "MTN_API_KEY"
	EnvAirtelBaseURL      = "AIRTEL_MOBILE_MONEY_API_URL"
	EnvAirtelAPIKey       = "AIRTEL_API_KEY"
)
