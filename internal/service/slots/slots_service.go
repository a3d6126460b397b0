package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/bepeace/telemed/internal/calendar"
	"github.com/bepeace/telemed/internal/domain"
	"github.com/bepeace/telemed/internal/repository"
)

type SlotsUseCase interface {
	DaySchedule(ctx context.Context, date string) ([]calendar.SlotInfo, error)
	SetUnavailable(ctx context.Context, date, slot, reason string) error
	RemoveUnavailable(ctx context.Context, date, slot string) error
	ListPatientBookings(ctx context.Context, email string) ([]domain.Booking, error)
	ListDoctorBookings(ctx context.Context, fromDate, toDate string) ([]domain.Booking, error)
}

// Cache is the slice of the redis layer this service reads.
type Cache interface {
	HeldSlots(ctx context.Context, date string) (map[string]bool, error)
}

type SlotsService struct {
	bookings repository.BookingRepository
	marks    repository.UnavailabilityRepository
	cache    Cache
	loc      *time.Location
	now      func() time.Time
}

type SlotsServiceOption func(*SlotsService)

// WithNow overrides the clock. Used by tests.
func WithNow(now func() time.Time) SlotsServiceOption {
	return func(s *SlotsService) {
		s.now = now
	}
}

func NewSlotsService(
	bookings repository.BookingRepository,
	marks repository.UnavailabilityRepository,
	cache Cache,
	loc *time.Location,
	opts ...SlotsServiceOption,
) *SlotsService {
	service := &SlotsService{
		bookings: bookings,
		marks:    marks,
		cache:    cache,
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// DaySchedule merges confirmed bookings, live checkout locks and doctor
// unavailability into the classified 24-slot grid for a date.
func (s *SlotsService) DaySchedule(ctx context.Context, date string) ([]calendar.SlotInfo, error) {
	if _, err := calendar.ParseDate(date, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	booked, err := s.bookings.BookedSlots(ctx, date)
	if err != nil {
		return nil, err
	}

	var locked map[string]bool
	if s.cache != nil {
		locked, err = s.cache.HeldSlots(ctx, date)
		if err != nil {
			return nil, err
		}
	}

	unavailable, wholeDayOff, err := s.marks.Marks(ctx, date)
	if err != nil {
		return nil, err
	}

	return calendar.Classify(date, s.now(), s.loc, booked, locked, unavailable, wholeDayOff)
}

// SetUnavailable marks one slot off, or the whole day when slot is empty.
func (s *SlotsService) SetUnavailable(ctx context.Context, date, slot, reason string) error {
	if _, err := calendar.ParseDate(date, s.loc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if slot != "" {
		normalized, err := calendar.NormalizeSlot(slot)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		slot = normalized
	}
	return s.marks.Set(ctx, date, slot, reason)
}

func (s *SlotsService) RemoveUnavailable(ctx context.Context, date, slot string) error {
	if _, err := calendar.ParseDate(date, s.loc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if slot != "" {
		normalized, err := calendar.NormalizeSlot(slot)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		slot = normalized
	}
	return s.marks.Remove(ctx, date, slot)
}

func (s *SlotsService) ListPatientBookings(ctx context.Context, email string) ([]domain.Booking, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.bookings.ListByEmail(ctx, email)
}

func (s *SlotsService) ListDoctorBookings(ctx context.Context, fromDate, toDate string) ([]domain.Booking, error) {
	if _, err := calendar.ParseDate(fromDate, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if _, err := calendar.ParseDate(toDate, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return s.bookings.ListConfirmedBetween(ctx, fromDate, toDate)
}

var _ SlotsUseCase = (*SlotsService)(nil)
