package main

import (
	"skybridge/internal/bookings/events"
	bookinghandler "skybridge/internal/bookings/handler"
	bookingrepo "skybridge/internal/bookings/repository"
	bookingservice "skybridge/internal/bookings/service"
	bookingvalidator "skybridge/internal/bookings/validator"
	"skybridge/internal/payments/gateway"
	paymenthandler "skybridge/internal/payments/handler"
	paymentrepo "skybridge/internal/payments/repository"
	paymentservice "skybridge/internal/payments/service"
	propertyhandler "skybridge/internal/properties/handler"
	propertyrepo "skybridge/internal/properties/repository"
	propertyservice "skybridge/internal/properties/service"
	propertyvalidator "skybridge/internal/properties/validator"
	roomtypehandler "skybridge/internal/roomtypes/handler"
	roomtyperepo "skybridge/internal/roomtypes/repository"
	roomtypeservice "skybridge/internal/roomtypes/service"
	roomtypevalidator "skybridge/internal/roomtypes/validator"
	"skybridge/pkg/app"
	"skybridge/pkg/config"
	"skybridge/pkg/contracts"
	"skybridge/pkg/kafka"
	kafka_config "skybridge/pkg/kafka/config"
	kafka_middleware "skybridge/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	producer, metrics := initProducer(cfg)
	handlers := initHandlers(cfg, producer)

	serverApp := app.NewApplication(cfg, handlers, producer)
	serverApp.Run()

	published, _ := metrics.Snapshot()
	for eventType, c := range published {
		cfg.Log.Info("Published events",
			"event_type", eventType,
			"succeeded", c.Succeeded,
			"failed", c.Failed,
			"avg_duration", c.AvgDuration(),
		)
	}
}

func initProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kcfg, cfg.BookingEventsTopic, config.DefaultBookingEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}
	return producer, metrics
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) contracts.Handlers {
	emitter := events.NewEmitter(producer, ServiceName, cfg.Log)

	propertyRepo := propertyrepo.NewMongoPropertyRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewInventoryLockRepository(cfg)
	roomTypeRepo := roomtyperepo.NewMongoRoomTypeRepository(cfg)
	paymentRepo := paymentrepo.NewMongoPaymentRepository(cfg)

	propertyService := propertyservice.NewPropertyService(
		propertyRepo,
		roomTypeRepo,
		propertyvalidator.NewPropertyValidator(cfg.Log),
		producer,
		ServiceName,
		cfg,
	)
	roomTypeService := roomtypeservice.NewRoomTypeService(
		roomTypeRepo,
		bookingRepo,
		propertyRepo,
		roomtypevalidator.NewRoomTypeValidator(),
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		roomTypeRepo,
		propertyRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		emitter,
		cfg,
	)
	paymentService := paymentservice.NewPaymentService(
		paymentRepo,
		bookingRepo,
		gateway.NewXenditGateway(cfg.Xendit, cfg.Log),
		emitter,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return contracts.Handlers{
		propertyhandler.NewPropertyHandler(propertyService, cfg.Log),
		roomtypehandler.NewRoomTypeHandler(roomTypeService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, cfg.Xendit.CallbackToken, cfg.Log),
	}
}
