package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bepeace/telemed/internal/calendar"
	"github.com/bepeace/telemed/internal/domain"
	"github.com/bepeace/telemed/internal/gateway/cashfree"
	"github.com/bepeace/telemed/internal/kafka"
	"github.com/bepeace/telemed/internal/metrics"
	"github.com/bepeace/telemed/internal/repository"
	"github.com/bepeace/telemed/pkg/logging"
)

type OrdersUseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error)
	HandleWebhook(ctx context.Context, body []byte) error
	Verify(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	ReconcileStale(ctx context.Context) (int, error)
}

// Cache is the slice of the redis layer this service needs: the checkout
// lock around a slot.
type Cache interface {
	AcquireSlotLock(ctx context.Context, date, slot, holder string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, date, slot string) error
	LockHolder(ctx context.Context, date, slot string) (string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type CreateOrderInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Concern string  `json:"concern"`
	Date    string  `json:"date"`
	Slot    string  `json:"slot"`
	Amount  float64 `json:"amount"`
}

type CreateOrderOutput struct {
	Order            *domain.PaymentOrder `json:"order"`
	PaymentSessionID string               `json:"payment_session_id"`
}

type OrdersService struct {
	orders             repository.PaymentOrderRepository
	bookings           repository.BookingRepository
	queue              repository.QueueRepository
	marks              repository.UnavailabilityRepository
	cache              Cache
	gateway            cashfree.Gateway
	producer           Producer
	metrics            *metrics.Metrics
	logger             *logging.Logger
	paymentsTopic      string
	notificationsTopic string
	meetingBase        string
	returnURL          string
	notifyURL          string
	lockTTL            time.Duration
	staleAfter         time.Duration
	loc                *time.Location
	now                func() time.Time
}

type OrdersServiceOption func(*OrdersService)

// WithNow overrides the clock. Used by tests.
func WithNow(now func() time.Time) OrdersServiceOption {
	return func(s *OrdersService) {
		s.now = now
	}
}

func WithMetrics(m *metrics.Metrics) OrdersServiceOption {
	return func(s *OrdersService) {
		s.metrics = m
	}
}

func WithPaymentsTopic(topic string) OrdersServiceOption {
	return func(s *OrdersService) {
		s.paymentsTopic = topic
	}
}

// WithNotificationsTopic mirrors every payment event onto the topic the
// notification worker consumes.
func WithNotificationsTopic(topic string) OrdersServiceOption {
	return func(s *OrdersService) {
		s.notificationsTopic = topic
	}
}

type Config struct {
	MeetingBaseURL string
	ReturnURL      string
	NotifyURL      string
	LockTTL        time.Duration
	StaleAfter     time.Duration
	Location       *time.Location
}

func NewOrdersService(
	orders repository.PaymentOrderRepository,
	bookings repository.BookingRepository,
	queue repository.QueueRepository,
	marks repository.UnavailabilityRepository,
	cache Cache,
	gateway cashfree.Gateway,
	producer Producer,
	logger *logging.Logger,
	cfg Config,
	opts ...OrdersServiceOption,
) *OrdersService {
	if logger == nil {
		logger = logging.Default()
	}
	service := &OrdersService{
		orders:      orders,
		bookings:    bookings,
		queue:       queue,
		marks:       marks,
		cache:       cache,
		gateway:     gateway,
		producer:    producer,
		logger:      logger,
		meetingBase: cfg.MeetingBaseURL,
		returnURL:   cfg.ReturnURL,
		notifyURL:   cfg.NotifyURL,
		lockTTL:     cfg.LockTTL,
		staleAfter:  cfg.StaleAfter,
		loc:         cfg.Location,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateOrder validates the request, takes the checkout lock on the slot
// and registers the order with the payment gateway. The slot is held for
// lockTTL; if the payment never resolves the lock simply expires.
func (s *OrdersService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if input.Name == "" || input.Email == "" || input.Phone == "" {
		return nil, fmt.Errorf("%w: name, email and phone are required", domain.ErrValidation)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if _, err := calendar.ParseDate(input.Date, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	slot, err := calendar.NormalizeSlot(input.Slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hour, _ := calendar.ParseSlot(slot)
	start, err := calendar.SlotStart(input.Date, hour, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if start.Before(s.now().In(s.loc)) {
		s.metrics.SlotConflict("past")
		return nil, fmt.Errorf("%w: slot is in the past", domain.ErrValidation)
	}

	offSlots, wholeDayOff, err := s.marks.Marks(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	if wholeDayOff || offSlots[slot] {
		s.metrics.SlotConflict("unavailable")
		return nil, domain.ErrSlotUnavailable
	}

	if _, err := s.bookings.Find(ctx, input.Date, slot); err == nil {
		s.metrics.SlotConflict("booked")
		return nil, domain.ErrSlotBooked
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	orderID := "ORDER_" + uuid.NewString()

	locked, err := s.cache.AcquireSlotLock(ctx, input.Date, slot, orderID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		s.metrics.SlotConflict("held")
		return nil, domain.ErrSlotHeld
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, cashfree.CreateOrderRequest{
		OrderID:       orderID,
		Amount:        input.Amount,
		Currency:      "INR",
		CustomerName:  input.Name,
		CustomerEmail: input.Email,
		CustomerPhone: normalizePhone(input.Phone),
		ReturnURL:     s.returnURL,
		NotifyURL:     s.notifyURL,
	})
	if err != nil {
		_ = s.cache.ReleaseSlotLock(ctx, input.Date, slot)
		return nil, err
	}

	order := &domain.PaymentOrder{
		OrderID:      orderID,
		PatientName:  input.Name,
		PatientEmail: input.Email,
		PatientPhone: normalizePhone(input.Phone),
		Concern:      input.Concern,
		Date:         input.Date,
		Slot:         slot,
		Amount:       input.Amount,
		Currency:     "INR",
		Status:       domain.OrderStatusCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		_ = s.cache.ReleaseSlotLock(ctx, input.Date, slot)
		return nil, err
	}

	s.metrics.OrderCreated()
	s.publish(ctx, kafka.EventOrderCreated, order, "")

	return &CreateOrderOutput{Order: order, PaymentSessionID: gwOrder.PaymentSessionID}, nil
}

// webhookPayload accepts both shapes the gateway sends: the flat legacy
// form and the 2023-08-01 envelope under data.order / data.payment.
type webhookPayload struct {
	OrderID       string `json:"order_id"`
	OrderIDAlt    string `json:"orderId"`
	TxStatus      string `json:"txStatus"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
	Data          struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

func (p webhookPayload) orderID() string {
	for _, id := range []string{p.Data.Order.OrderID, p.OrderID, p.OrderIDAlt} {
		if id != "" {
			return id
		}
	}
	return ""
}

func (p webhookPayload) status() string {
	for _, st := range []string{p.Data.Payment.PaymentStatus, p.OrderStatus, p.TxStatus, p.PaymentStatus} {
		if st != "" {
			return st
		}
	}
	return ""
}

// HandleWebhook processes one gateway delivery. The rules: an
// unparseable body is the caller's fault (ErrValidation); a storage
// failure before the status is durably recorded must surface so the
// gateway retries; everything else, including replays and deliveries for
// unknown orders, is acknowledged so the gateway stops resending.
func (s *OrdersService) HandleWebhook(ctx context.Context, body []byte) error {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.metrics.Webhook("error")
		return fmt.Errorf("%w: malformed webhook body: %v", domain.ErrValidation, err)
	}

	orderID := payload.orderID()
	if orderID == "" {
		s.logger.Warn("webhook without order id, acknowledging", "body_len", len(body))
		s.metrics.Webhook("ignored")
		return nil
	}

	status, ok := domain.NormalizeOrderStatus(payload.status())
	if !ok {
		s.logger.Warn("webhook with unknown status, acknowledging", "order_id", orderID, "status", payload.status())
		s.metrics.Webhook("ignored")
		return nil
	}

	order, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("webhook for unknown order, acknowledging", "order_id", orderID)
		s.metrics.Webhook("ignored")
		return nil
	}
	if err != nil {
		s.metrics.Webhook("error")
		return err
	}

	if err := s.orders.RecordStatus(ctx, orderID, status, body); err != nil {
		s.metrics.Webhook("error")
		return err
	}

	if status == order.Status {
		s.logger.Info("webhook repeats recorded status, acknowledging", "order_id", orderID, "status", status)
		s.metrics.WebhookReplay()
		s.metrics.Webhook("ignored")
		return nil
	}

	if err := s.applyStatus(ctx, order, status); err != nil {
		s.metrics.Webhook("error")
		return err
	}
	return nil
}

// Verify pulls the order state from the gateway and applies it through
// the same transition the webhook uses. It backs up the webhook when a
// patient returns from checkout before the webhook lands.
func (s *OrdersService) Verify(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusPaid && order.BookingSaved {
		return order, nil
	}

	gwOrder, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status, ok := domain.NormalizeOrderStatus(gwOrder.Status)
	if !ok || status == order.Status {
		return order, nil
	}

	if err := s.orders.RecordStatus(ctx, orderID, status, nil); err != nil {
		return nil, err
	}
	if err := s.applyStatus(ctx, order, status); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID)
}

// ReconcileStale re-checks CREATED orders older than staleAfter against
// the gateway. It catches webhooks that never arrived. Returns the
// number of orders whose status moved.
func (s *OrdersService) ReconcileStale(ctx context.Context) (int, error) {
	stale, err := s.orders.ListStaleCreated(ctx, s.now().Add(-s.staleAfter), 50)
	if err != nil {
		return 0, err
	}

	moved := 0
	for i := range stale {
		order := &stale[i]
		gwOrder, err := s.gateway.GetOrder(ctx, order.OrderID)
		if err != nil {
			s.logger.Warn("reconcile: gateway lookup failed", "order_id", order.OrderID, "error", err)
			continue
		}
		status, ok := domain.NormalizeOrderStatus(gwOrder.Status)
		if !ok || status == domain.OrderStatusCreated {
			continue
		}
		if err := s.orders.RecordStatus(ctx, order.OrderID, status, nil); err != nil {
			s.logger.Error("reconcile: record status failed", "order_id", order.OrderID, "error", err)
			continue
		}
		if err := s.applyStatus(ctx, order, status); err != nil {
			s.logger.Error("reconcile: apply status failed", "order_id", order.OrderID, "error", err)
			continue
		}
		moved++
	}
	return moved, nil
}

// applyStatus is the single transition shared by webhook, verify and the
// reconciler, so a status can never take effect twice no matter which
// path reports it first.
func (s *OrdersService) applyStatus(ctx context.Context, order *domain.PaymentOrder, status domain.OrderStatus) error {
	order.Status = status
	switch status {
	case domain.OrderStatusPaid:
		won, err := s.orders.TryBeginFulfillment(ctx, order.OrderID)
		if err != nil {
			return err
		}
		if !won {
			s.logger.Info("payment already fulfilled, skipping", "order_id", order.OrderID)
			s.metrics.WebhookReplay()
			s.metrics.Webhook("paid")
			return nil
		}
		return s.fulfill(ctx, order)

	case domain.OrderStatusFailed, domain.OrderStatusCancelled:
		s.releaseOwnLock(ctx, order)
		s.metrics.Webhook("failed")
		s.publish(ctx, kafka.EventPaymentFailed, order, "")
		return nil

	default:
		s.metrics.Webhook("ignored")
		return nil
	}
}

// fulfill runs exactly once per paid order, guarded by the
// TryBeginFulfillment flip.
func (s *OrdersService) fulfill(ctx context.Context, order *domain.PaymentOrder) error {
	link := domain.MeetingLink(s.meetingBase, order.OrderID, order.Date, order.Slot, order.PatientName)

	booking := &domain.Booking{
		OrderID:      order.OrderID,
		PatientName:  order.PatientName,
		PatientEmail: order.PatientEmail,
		PatientPhone: order.PatientPhone,
		Concern:      order.Concern,
		Date:         order.Date,
		Slot:         order.Slot,
		Amount:       order.Amount,
		Currency:     order.Currency,
		Status:       domain.BookingStatusPaid,
		MeetingLink:  link,
	}

	inserted, err := s.bookings.UpsertConfirmed(ctx, booking)
	if err != nil {
		return err
	}
	if !inserted {
		// A different order won the slot while this payment was in
		// flight. The payment stands; staff resolve it manually.
		s.logger.Error("paid order lost its slot", "order_id", order.OrderID, "date", order.Date, "slot", order.Slot)
		s.metrics.SlotConflict("booked")
	}

	s.releaseOwnLock(ctx, order)

	if inserted {
		entry := &domain.QueueEntry{
			OrderID:      order.OrderID,
			PatientName:  order.PatientName,
			PatientEmail: order.PatientEmail,
			PatientPhone: order.PatientPhone,
		}
		if _, err := s.queue.Insert(ctx, entry); err != nil {
			s.logger.Warn("queue enqueue failed", "order_id", order.OrderID, "error", err)
		}
	}

	s.metrics.BookingConfirmed()
	s.metrics.Webhook("paid")
	s.publish(ctx, kafka.EventBookingConfirmed, order, link)
	return nil
}

// releaseOwnLock frees the checkout lock only while this order still
// holds it. By the time a payment resolves the lock may have expired
// and been claimed by a newer checkout, which must not lose it.
func (s *OrdersService) releaseOwnLock(ctx context.Context, order *domain.PaymentOrder) {
	holder, err := s.cache.LockHolder(ctx, order.Date, order.Slot)
	if err != nil {
		s.logger.Warn("slot lock lookup failed", "order_id", order.OrderID, "error", err)
		return
	}
	if holder != order.OrderID {
		return
	}
	if err := s.cache.ReleaseSlotLock(ctx, order.Date, order.Slot); err != nil {
		s.logger.Warn("release slot lock failed", "order_id", order.OrderID, "error", err)
	}
}

func (s *OrdersService) publish(ctx context.Context, eventType string, order *domain.PaymentOrder, meetingLink string) {
	if s.producer == nil || s.paymentsTopic == "" {
		return
	}
	event := kafka.PaymentEvent{
		Type:        eventType,
		OrderID:     order.OrderID,
		Name:        order.PatientName,
		Email:       order.PatientEmail,
		Phone:       order.PatientPhone,
		Date:        order.Date,
		Slot:        order.Slot,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Status:      string(order.Status),
		MeetingLink: meetingLink,
	}
	if err := s.producer.Publish(ctx, s.paymentsTopic, order.OrderID, event); err != nil {
		s.logger.Warn("publish event failed", "type", eventType, "order_id", order.OrderID, "error", err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, order.OrderID, event); err != nil {
			s.logger.Warn("publish notification failed", "type", eventType, "order_id", order.OrderID, "error", err)
		}
	}
}

// normalizePhone maps bare 10-digit Indian numbers onto E.164.
func normalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case strings.HasPrefix(phone, "+"):
		return "+" + cleaned
	case len(cleaned) == 10:
		return "+91" + cleaned
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	default:
		return phone
	}
}

var _ OrdersUseCase = (*OrdersService)(nil)
