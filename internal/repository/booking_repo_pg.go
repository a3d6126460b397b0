package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bepeace/telemed/internal/calendar"
	"github.com/bepeace/telemed/internal/domain"
)

type BookingRepository interface {
	// UpsertConfirmed inserts the booking if its (date, slot) is free of
	// active bookings. Returns false without error when another booking
	// already occupies the slot: the caller must skip its side effects.
	UpsertConfirmed(ctx context.Context, b *domain.Booking) (bool, error)
	Find(ctx context.Context, date, slot string) (*domain.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Booking, error)
	BookedSlots(ctx context.Context, date string) (map[string]bool, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	ListConfirmedBetween(ctx context.Context, fromDate, toDate string) ([]domain.Booking, error)
	UpdateStatusByOrderID(ctx context.Context, orderID string, status domain.BookingStatus) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, order_id, patient_name, patient_email, patient_phone, concern, consult_date, slot, amount, currency, status, meeting_link, created_at, updated_at`

// UpsertConfirmed relies on the partial unique index over active
// (consult_date, slot) pairs: the INSERT is the atomic insert-if-absent,
// so concurrent confirmations of the same slot produce exactly one row.
func (r *PGBookingRepository) UpsertConfirmed(ctx context.Context, b *domain.Booking) (bool, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings
		(order_id, patient_name, patient_email, patient_phone, concern, consult_date, slot, amount, currency, status, meeting_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, updated_at`,
		b.OrderID, b.PatientName, b.PatientEmail, b.PatientPhone, b.Concern,
		b.Date, b.Slot, b.Amount, b.Currency, b.Status, b.MeetingLink).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGBookingRepository) Find(ctx context.Context, date, slot string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE consult_date=$1 AND slot=$2 AND status IN ($3, $4)`,
		date, slot, domain.BookingStatusPending, domain.BookingStatusPaid)
	return scanBooking(row)
}

func (r *PGBookingRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE order_id=$1`, orderID)
	return scanBooking(row)
}

// BookedSlots returns the canonical labels of taken slots on a date.
// Status matching goes through domain.IsBookedStatus so legacy rows with
// SUCCESS/CONFIRMED/BOOKED spellings still block the slot.
func (r *PGBookingRepository) BookedSlots(ctx context.Context, date string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT slot, status FROM bookings WHERE consult_date=$1`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make(map[string]bool)
	for rows.Next() {
		var slot, status string
		if err := rows.Scan(&slot, &status); err != nil {
			return nil, err
		}
		if !domain.IsBookedStatus(status) {
			continue
		}
		if label, err := calendar.NormalizeSlot(slot); err == nil {
			booked[label] = true
		}
	}
	return booked, rows.Err()
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE patient_email=$1 ORDER BY consult_date DESC, slot`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListConfirmedBetween(ctx context.Context, fromDate, toDate string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status=$1 AND consult_date BETWEEN $2 AND $3
		ORDER BY consult_date, slot`, domain.BookingStatusPaid, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) UpdateStatusByOrderID(ctx context.Context, orderID string, status domain.BookingStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE order_id=$2`, status, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.OrderID, &b.PatientName, &b.PatientEmail, &b.PatientPhone, &b.Concern,
		&b.Date, &b.Slot, &b.Amount, &b.Currency, &b.Status, &b.MeetingLink, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.OrderID, &b.PatientName, &b.PatientEmail, &b.PatientPhone, &b.Concern,
			&b.Date, &b.Slot, &b.Amount, &b.Currency, &b.Status, &b.MeetingLink, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
