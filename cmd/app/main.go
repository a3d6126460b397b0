package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bepeace/telemed/api"
	"github.com/bepeace/telemed/config"
	"github.com/bepeace/telemed/internal/auth"
	"github.com/bepeace/telemed/internal/cache"
	"github.com/bepeace/telemed/internal/gateway/cashfree"
	"github.com/bepeace/telemed/internal/kafka"
	"github.com/bepeace/telemed/internal/metrics"
	"github.com/bepeace/telemed/internal/repository"
	"github.com/bepeace/telemed/internal/service/orders"
	"github.com/bepeace/telemed/internal/service/queue"
	"github.com/bepeace/telemed/internal/service/slots"
	"github.com/bepeace/telemed/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level)

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	bookingRepo := repository.NewBookingRepository(pool)
	orderRepo := repository.NewPaymentOrderRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	marksRepo := repository.NewUnavailabilityRepository(pool)

	gateway := cashfree.NewClient(cfg.Cashfree)

	slotsService := slots.NewSlotsService(bookingRepo, marksRepo, redisCache, loc)
	ordersService := orders.NewOrdersService(
		orderRepo, bookingRepo, queueRepo, marksRepo, redisCache, gateway, producer, logger,
		orders.Config{
			MeetingBaseURL: cfg.Booking.MeetingBaseURL,
			ReturnURL:      cfg.Booking.ReturnURL,
			NotifyURL:      cfg.Booking.NotifyURL,
			LockTTL:        time.Duration(cfg.Booking.LockTTLMinutes) * time.Minute,
			StaleAfter:     time.Duration(cfg.Booking.StaleOrderMinutes) * time.Minute,
			Location:       loc,
		},
		orders.WithMetrics(m),
		orders.WithPaymentsTopic(cfg.Kafka.PaymentsTopic),
		orders.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	queueService := queue.NewQueueService(queueRepo, orderRepo, bookingRepo, logger, loc)

	authManager := auth.NewManager(cfg.Doctor.JWTSecret, time.Duration(cfg.Doctor.TokenTTLHours)*time.Hour)

	router := api.NewRouter(api.Handlers{
		Slots:  api.NewSlotsHandler(slotsService),
		Orders: api.NewOrdersHandler(ordersService),
		Queue:  api.NewQueueHandler(queueService),
		Doctor: api.NewDoctorHandler(slotsService, authManager, cfg.Doctor),
	}, authManager, registry)

	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
