package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/bepeace/telemed/config"
	"github.com/bepeace/telemed/internal/cache"
	"github.com/bepeace/telemed/internal/email"
	"github.com/bepeace/telemed/internal/gateway/cashfree"
	"github.com/bepeace/telemed/internal/kafka"
	"github.com/bepeace/telemed/internal/receipt"
	"github.com/bepeace/telemed/internal/repository"
	"github.com/bepeace/telemed/internal/service/orders"
	"github.com/bepeace/telemed/pkg/logging"
)

// The worker owns everything that must not block a request: notification
// mail off the payments topic and the periodic sweep that reconciles
// orders whose webhook never arrived.
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

	bookingRepo := repository.NewBookingRepository(pool)
	orderRepo := repository.NewPaymentOrderRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	marksRepo := repository.NewUnavailabilityRepository(pool)

	ordersService := orders.NewOrdersService(
		orderRepo, bookingRepo, queueRepo, marksRepo, redisCache,
		cashfree.NewClient(cfg.Cashfree), producer, logger,
		orders.Config{
			MeetingBaseURL: cfg.Booking.MeetingBaseURL,
			ReturnURL:      cfg.Booking.ReturnURL,
			NotifyURL:      cfg.Booking.NotifyURL,
			LockTTL:        time.Duration(cfg.Booking.LockTTLMinutes) * time.Minute,
			StaleAfter:     time.Duration(cfg.Booking.StaleOrderMinutes) * time.Minute,
			Location:       loc,
		},
		orders.WithPaymentsTopic(cfg.Kafka.PaymentsTopic),
		orders.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	var sender email.Sender
	if sg := email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("no sendgrid api key, emails will be logged only")
		sender = email.NewStubSender(logger)
	}

	dispatcher := &dispatcher{
		sender:     sender,
		receipts:   receipt.NewPDFGenerator(),
		adminEmail: cfg.Email.AdminEmail,
		logger:     logger,
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.PaymentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode event failed, skipping", "error", err)
				return nil
			}
			dispatcher.handle(ctx, event)
			return nil
		}); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", "error", err)
			stop()
		}
	}()

	ticker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer ticker.Stop()

	logger.Info("worker started", "sweep_minutes", cfg.Worker.SweepMinutes)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case <-ticker.C:
			moved, err := ordersService.ReconcileStale(ctx)
			if err != nil {
				logger.Error("reconcile sweep failed", "error", err)
				continue
			}
			if moved > 0 {
				logger.Info("reconcile sweep moved orders", "count", moved)
			}
		}
	}
}

type dispatcher struct {
	sender     email.Sender
	receipts   receipt.Generator
	adminEmail string
	logger     *logging.Logger
}

func (d *dispatcher) handle(ctx context.Context, event kafka.PaymentEvent) {
	details := email.BookingDetails{
		OrderID:     event.OrderID,
		Name:        event.Name,
		Email:       event.Email,
		Phone:       event.Phone,
		Date:        event.Date,
		Slot:        event.Slot,
		Amount:      event.Amount,
		Currency:    event.Currency,
		MeetingLink: event.MeetingLink,
	}

	switch event.Type {
	case kafka.EventBookingConfirmed:
		msg := email.ConfirmationMessage(details)
		if pdf, err := d.receipts.Generate(receipt.Details{
			OrderID:  event.OrderID,
			Name:     event.Name,
			Email:    event.Email,
			Date:     event.Date,
			Slot:     event.Slot,
			Amount:   event.Amount,
			Currency: event.Currency,
			PaidAt:   time.Now(),
		}); err != nil {
			d.logger.Warn("receipt generation failed, sending without attachment", "order_id", event.OrderID, "error", err)
		} else {
			msg.Attachments = append(msg.Attachments, email.Attachment{
				Filename:    "receipt_" + event.OrderID + ".pdf",
				ContentType: "application/pdf",
				Data:        pdf,
			})
		}
		d.send(ctx, msg)
		if d.adminEmail != "" {
			d.send(ctx, email.AdminAlertMessage(d.adminEmail, details))
		}

	case kafka.EventPaymentFailed:
		d.send(ctx, email.FailureMessage(details))

	default:
		// order_created needs no mail.
	}
}

func (d *dispatcher) send(ctx context.Context, msg email.Message) {
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("send email failed", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
