package queue

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bepeace/telemed/internal/domain"
	"github.com/bepeace/telemed/internal/repository"
	"github.com/bepeace/telemed/pkg/logging"
)

type QueueUseCase interface {
	Join(ctx context.Context, orderID string) (*StatusOutput, error)
	Status(ctx context.Context, orderID string) (*StatusOutput, error)
	Start(ctx context.Context, orderID string) (*domain.QueueEntry, error)
	End(ctx context.Context, orderID string) (*domain.QueueEntry, error)
	ListActive(ctx context.Context) ([]domain.QueueEntry, error)
	Summary(ctx context.Context) (*Summary, error)
}

type StatusOutput struct {
	Entry       *domain.QueueEntry `json:"entry"`
	Position    int                `json:"position,omitempty"`
	MeetingLink string             `json:"meeting_link,omitempty"`
}

// Summary is the doctor dashboard day view.
type Summary struct {
	Waiting        int     `json:"waiting"`
	Consulting     int     `json:"consulting"`
	CompletedToday int     `json:"completed_today"`
	RevenueToday   float64 `json:"revenue_today"`
}

type QueueService struct {
	queue    repository.QueueRepository
	orders   repository.PaymentOrderRepository
	bookings repository.BookingRepository
	logger   *logging.Logger
	loc      *time.Location
	now      func() time.Time
}

type QueueServiceOption func(*QueueService)

// WithNow overrides the clock. Used by tests.
func WithNow(now func() time.Time) QueueServiceOption {
	return func(s *QueueService) {
		s.now = now
	}
}

func NewQueueService(
	queue repository.QueueRepository,
	orders repository.PaymentOrderRepository,
	bookings repository.BookingRepository,
	logger *logging.Logger,
	loc *time.Location,
	opts ...QueueServiceOption,
) *QueueService {
	if logger == nil {
		logger = logging.Default()
	}
	service := &QueueService{
		queue:    queue,
		orders:   orders,
		bookings: bookings,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Join puts a paid order into the waiting line. Joining again returns
// the existing entry, never a second one.
func (s *QueueService) Join(ctx context.Context, orderID string) (*StatusOutput, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPaid {
		return nil, domain.ErrNotPaid
	}

	entry := &domain.QueueEntry{
		OrderID:      order.OrderID,
		PatientName:  order.PatientName,
		PatientEmail: order.PatientEmail,
		PatientPhone: order.PatientPhone,
	}
	inserted, err := s.queue.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !inserted {
		entry, err = s.queue.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
	}
	return s.statusOutput(ctx, entry)
}

func (s *QueueService) Status(ctx context.Context, orderID string) (*StatusOutput, error) {
	entry, err := s.queue.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.statusOutput(ctx, entry)
}

// Start calls the next patient in: the entry moves to consulting and
// gets a fresh room name.
func (s *QueueService) Start(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	room, err := roomName(orderID)
	if err != nil {
		return nil, err
	}
	return s.queue.StartConsult(ctx, orderID, room)
}

// End closes the consultation and marks the underlying booking
// completed. The booking update is best effort; the queue state is the
// source of truth for the day.
func (s *QueueService) End(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	entry, err := s.queue.EndConsult(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatusByOrderID(ctx, orderID, domain.BookingStatusCompleted); err != nil {
		s.logger.Warn("mark booking completed failed", "order_id", orderID, "error", err)
	}
	return entry, nil
}

func (s *QueueService) ListActive(ctx context.Context) ([]domain.QueueEntry, error) {
	return s.queue.ListActive(ctx)
}

func (s *QueueService) Summary(ctx context.Context) (*Summary, error) {
	localNow := s.now().In(s.loc)
	dayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	waiting, err := s.queue.CountByStatus(ctx, domain.QueueStatusWaiting)
	if err != nil {
		return nil, err
	}
	consulting, err := s.queue.CountByStatus(ctx, domain.QueueStatusConsulting)
	if err != nil {
		return nil, err
	}
	completed, err := s.queue.CountCompletedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.RevenueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Waiting:        waiting,
		Consulting:     consulting,
		CompletedToday: completed,
		RevenueToday:   revenue,
	}, nil
}

// statusOutput decorates an entry with its line position and the
// meeting link from the confirmed booking, so the waiting page has
// everything the patient needs.
func (s *QueueService) statusOutput(ctx context.Context, entry *domain.QueueEntry) (*StatusOutput, error) {
	out := &StatusOutput{Entry: entry}
	if entry.Status == domain.QueueStatusWaiting {
		position, err := s.queue.Position(ctx, entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		out.Position = position
	}

	booking, err := s.bookings.FindByOrderID(ctx, entry.OrderID)
	switch {
	case err == nil:
		out.MeetingLink = booking.MeetingLink
	case errors.Is(err, domain.ErrNotFound):
	default:
		s.logger.Warn("booking lookup failed", "order_id", entry.OrderID, "error", err)
	}
	return out, nil
}

func roomName(orderID string) (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("queue: generate room name: %w", err)
	}
	return fmt.Sprintf("BEPEACE_%s_%s", orderID, hex.EncodeToString(suffix)), nil
}

var _ QueueUseCase = (*QueueService)(nil)
