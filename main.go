package main

import (
	"log"

	"github.com/courtease/booking-service/config"
	"github.com/courtease/booking-service/internal/consumer"
	"github.com/courtease/booking-service/internal/handler"
	"github.com/courtease/booking-service/internal/middleware"
	"github.com/courtease/booking-service/internal/payment"
	"github.com/courtease/booking-service/internal/repository"
	"github.com/courtease/booking-service/internal/service"
	"github.com/courtease/booking-service/pkg/database"
	"github.com/courtease/booking-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	courtRepo := repository.NewCourtRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo, courtRepo)
	gateway := payment.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	reconciler := payment.NewReconciler(bookingRepo, gateway, publisher)

	// RabbitMQ consumer: relayed payment notifications drive reconciliation
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewPaymentConsumer(reconciler).Start(msgs)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewCourtHandler(courtRepo).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(reconciler).RegisterRoutes(e)

	log.Printf("Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
