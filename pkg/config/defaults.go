package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "spacebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL     = 10 * time.Second
	DefaultMaxOverlapCheck = 30

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100

	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "spacebook-notifier"

	DefaultMobileMoneyEnabled = false
	DefaultPaymentCurrency    = "UGX"
	DefaultMTNBaseURL         = "https://sandbox.momodeveloper.mtn.com"
	DefaultAirtelBaseURL      = "https://openapiuat.airtel.africa"
)
