package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bepeace/telemed/internal/calendar"
	"github.com/bepeace/telemed/internal/domain"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) UpsertConfirmed(ctx context.Context, b *domain.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) Find(ctx context.Context, date, slot string) (*domain.Booking, error) {
	args := m.Called(ctx, date, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Booking, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) BookedSlots(ctx context.Context, date string) (map[string]bool, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListConfirmedBetween(ctx context.Context, fromDate, toDate string) ([]domain.Booking, error) {
	args := m.Called(ctx, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatusByOrderID(ctx context.Context, orderID string, status domain.BookingStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type MockUnavailabilityRepository struct {
	mock.Mock
}

func (m *MockUnavailabilityRepository) Set(ctx context.Context, date, slot, reason string) error {
	args := m.Called(ctx, date, slot, reason)
	return args.Error(0)
}

func (m *MockUnavailabilityRepository) Remove(ctx context.Context, date, slot string) error {
	args := m.Called(ctx, date, slot)
	return args.Error(0)
}

func (m *MockUnavailabilityRepository) Marks(ctx context.Context, date string) (map[string]bool, bool, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(map[string]bool), args.Bool(1), args.Error(2)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) HeldSlots(ctx context.Context, date string) (map[string]bool, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func fixedNow() time.Time {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	return time.Date(2025, 6, 1, 14, 5, 0, 0, loc)
}

func newService(bookings *MockBookingRepository, marks *MockUnavailabilityRepository, cache Cache) *SlotsService {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	return NewSlotsService(bookings, marks, cache, loc, WithNow(fixedNow))
}

func statusOf(t *testing.T, schedule []calendar.SlotInfo, label string) calendar.Status {
	t.Helper()
	for _, s := range schedule {
		if s.Time == label {
			return s.Status
		}
	}
	t.Fatalf("slot %q not in schedule", label)
	return ""
}

func TestDaySchedule_MergesAllSources(t *testing.T) {
	bookings := new(MockBookingRepository)
	marks := new(MockUnavailabilityRepository)
	cache := new(MockCache)

	bookings.On("BookedSlots", mock.Anything, "2025-06-02").Return(map[string]bool{"10:00 AM": true}, nil)
	cache.On("HeldSlots", mock.Anything, "2025-06-02").Return(map[string]bool{"11:00 AM": true}, nil)
	marks.On("Marks", mock.Anything, "2025-06-02").Return(map[string]bool{"04:00 PM": true}, false, nil)

	schedule, err := newService(bookings, marks, cache).DaySchedule(context.Background(), "2025-06-02")
	require.NoError(t, err)
	require.Len(t, schedule, calendar.SlotsPerDay)

	assert.Equal(t, calendar.StatusBooked, statusOf(t, schedule, "10:00 AM"))
	assert.Equal(t, calendar.StatusBooked, statusOf(t, schedule, "11:00 AM"))
	assert.Equal(t, calendar.StatusUnavailable, statusOf(t, schedule, "04:00 PM"))
	assert.Equal(t, calendar.StatusAvailable, statusOf(t, schedule, "09:00 AM"))
}

func TestDaySchedule_PastSlotsOnlyToday(t *testing.T) {
	bookings := new(MockBookingRepository)
	marks := new(MockUnavailabilityRepository)
	cache := new(MockCache)

	bookings.On("BookedSlots", mock.Anything, "2025-06-01").Return(map[string]bool{}, nil)
	cache.On("HeldSlots", mock.Anything, "2025-06-01").Return(map[string]bool{}, nil)
	marks.On("Marks", mock.Anything, "2025-06-01").Return(map[string]bool{}, false, nil)

	schedule, err := newService(bookings, marks, cache).DaySchedule(context.Background(), "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, calendar.StatusPast, statusOf(t, schedule, "02:00 PM"))
	assert.Equal(t, calendar.StatusAvailable, statusOf(t, schedule, "03:00 PM"))
}

func TestDaySchedule_NilCache(t *testing.T) {
	bookings := new(MockBookingRepository)
	marks := new(MockUnavailabilityRepository)

	bookings.On("BookedSlots", mock.Anything, "2025-06-02").Return(map[string]bool{}, nil)
	marks.On("Marks", mock.Anything, "2025-06-02").Return(map[string]bool{}, false, nil)

	schedule, err := newService(bookings, marks, nil).DaySchedule(context.Background(), "2025-06-02")
	require.NoError(t, err)
	require.Len(t, schedule, calendar.SlotsPerDay)
}

func TestDaySchedule_InvalidDate(t *testing.T) {
	svc := newService(new(MockBookingRepository), new(MockUnavailabilityRepository), nil)

	_, err := svc.DaySchedule(context.Background(), "01-06-2025")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSetUnavailable_NormalizesSlot(t *testing.T) {
	marks := new(MockUnavailabilityRepository)
	marks.On("Set", mock.Anything, "2025-06-02", "10:00 AM", "surgery").Return(nil)

	svc := newService(new(MockBookingRepository), marks, nil)
	require.NoError(t, svc.SetUnavailable(context.Background(), "2025-06-02", " 10:00 am", "surgery"))
	marks.AssertExpectations(t)
}

func TestSetUnavailable_WholeDay(t *testing.T) {
	marks := new(MockUnavailabilityRepository)
	marks.On("Set", mock.Anything, "2025-06-02", "", "leave").Return(nil)

	svc := newService(new(MockBookingRepository), marks, nil)
	require.NoError(t, svc.SetUnavailable(context.Background(), "2025-06-02", "", "leave"))
	marks.AssertExpectations(t)
}

func TestSetUnavailable_BadSlot(t *testing.T) {
	svc := newService(new(MockBookingRepository), new(MockUnavailabilityRepository), nil)

	err := svc.SetUnavailable(context.Background(), "2025-06-02", "10:30 AM", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestListPatientBookings_RequiresEmail(t *testing.T) {
	svc := newService(new(MockBookingRepository), new(MockUnavailabilityRepository), nil)

	_, err := svc.ListPatientBookings(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestListDoctorBookings(t *testing.T) {
	bookings := new(MockBookingRepository)
	expected := []domain.Booking{{OrderID: "ORDER_1", Date: "2025-06-02", Slot: "10:00 AM"}}
	bookings.On("ListConfirmedBetween", mock.Anything, "2025-06-01", "2025-06-07").Return(expected, nil)

	got, err := newService(bookings, new(MockUnavailabilityRepository), nil).
		ListDoctorBookings(context.Background(), "2025-06-01", "2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
