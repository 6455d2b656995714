package main

import (
	bookinghandler "spacebook/internal/bookings/handler"
	bookingrepo "spacebook/internal/bookings/repository"
	bookingservice "spacebook/internal/bookings/service"
	"spacebook/internal/bookings/validator"
	"spacebook/internal/notifications"
	paymenthandler "spacebook/internal/payments/handler"
	"spacebook/internal/payments/provider"
	paymentservice "spacebook/internal/payments/service"
	spacerepo "spacebook/internal/spaces/repository"
	"spacebook/pkg/app"
	"spacebook/pkg/client"
	"spacebook/pkg/config"
	"spacebook/pkg/contracts"
	"spacebook/pkg/kafka"
	kafkaconfig "spacebook/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting bookings service")

	publisher := initPublisher(cfg)
	defer func() {
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				cfg.Log.Warn("Failed to close event publisher", "error", err)
			}
		}
	}()
	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()

	cfg.GracefulShutdown()
}

// initPublisher is best-effort: without a broker the service runs with
// notifications disabled rather than refusing to start.
func initPublisher(cfg *config.Config) notifications.Publisher {
	kafkaCfg := kafkaconfig.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Booking events disabled, producer init failed", "error", err)
		return nil
	}
	return notifications.NewKafkaPublisher(producer, ServiceName)
}

func initHandlers(cfg *config.Config, publisher notifications.Publisher) []contracts.Handler {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)
	spaceRepo := spacerepo.NewMongoSpaceRepository(cfg)

	bookingSvc := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		spaceRepo,
		bookingValidator,
		publisher,
		cfg,
	)

	providers := map[string]provider.Provider{
		provider.NameMTN:    provider.NewMTN(client.NewHttpClient(cfg.MTNBaseURL), cfg.MTNAPIKey),
		provider.NameAirtel: provider.NewAirtel(client.NewHttpClient(cfg.AirtelBaseURL), cfg.AirtelAPIKey),
	}
	paymentSvc := paymentservice.NewPaymentService(bookingRepo, providers, publisher, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookinghandler.NewBookingHandler(bookingSvc, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentSvc, cfg.Log),
	}
}
