package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bepeace/telemed/internal/domain"
)

type QueueRepository interface {
	// Insert adds a waiting entry unless the order already has a
	// non-done entry. Returns false when the entry already existed.
	Insert(ctx context.Context, e *domain.QueueEntry) (bool, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.QueueEntry, error)
	// Position is the 1-based place in the waiting line for an entry
	// that joined at createdAt.
	Position(ctx context.Context, createdAt time.Time) (int, error)
	StartConsult(ctx context.Context, orderID, roomName string) (*domain.QueueEntry, error)
	EndConsult(ctx context.Context, orderID string) (*domain.QueueEntry, error)
	ListActive(ctx context.Context) ([]domain.QueueEntry, error)
	CountByStatus(ctx context.Context, status domain.QueueStatus) (int, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type PGQueueRepository struct {
	db *pgxpool.Pool
}

func NewQueueRepository(db *pgxpool.Pool) QueueRepository {
	return &PGQueueRepository{db: db}
}

const queueColumns = `id, order_id, patient_name, patient_email, patient_phone, status, room_name, created_at, called_at, completed_at`

// Insert is idempotent per order through the partial unique index over
// non-done order_id values: a replayed join is swallowed by ON CONFLICT
// and reported as not-inserted.
func (r *PGQueueRepository) Insert(ctx context.Context, e *domain.QueueEntry) (bool, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO queue_entries
		(order_id, patient_name, patient_email, patient_phone, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at`,
		e.OrderID, e.PatientName, e.PatientEmail, e.PatientPhone, domain.QueueStatusWaiting).
		Scan(&e.ID, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	e.Status = domain.QueueStatusWaiting
	return true, nil
}

// GetByOrderID returns the most recent entry for the order, done or not.
func (r *PGQueueRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+queueColumns+` FROM queue_entries
		WHERE order_id=$1 ORDER BY created_at DESC LIMIT 1`, orderID)
	return scanQueueEntry(row)
}

func (r *PGQueueRepository) Position(ctx context.Context, createdAt time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM queue_entries
		WHERE status=$1 AND created_at <= $2`, domain.QueueStatusWaiting, createdAt).Scan(&n)
	return n, err
}

// StartConsult moves a waiting entry to consulting and stamps the room.
// The WHERE clause is the state guard: a second concurrent start, or a
// start against an entry already consulting or done, affects no row.
func (r *PGQueueRepository) StartConsult(ctx context.Context, orderID, roomName string) (*domain.QueueEntry, error) {
	row := r.db.QueryRow(ctx, `UPDATE queue_entries
		SET status=$1, room_name=$2, called_at=now()
		WHERE order_id=$3 AND status=$4
		RETURNING `+queueColumns,
		domain.QueueStatusConsulting, roomName, orderID, domain.QueueStatusWaiting)
	e, err := scanQueueEntry(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotWaiting
	}
	return e, err
}

func (r *PGQueueRepository) EndConsult(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	row := r.db.QueryRow(ctx, `UPDATE queue_entries
		SET status=$1, completed_at=now()
		WHERE order_id=$2 AND status=$3
		RETURNING `+queueColumns,
		domain.QueueStatusDone, orderID, domain.QueueStatusConsulting)
	e, err := scanQueueEntry(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotConsulting
	}
	return e, err
}

// ListActive returns waiting and consulting entries in join order.
func (r *PGQueueRepository) ListActive(ctx context.Context) ([]domain.QueueEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+queueColumns+` FROM queue_entries
		WHERE status IN ($1, $2) ORDER BY created_at`,
		domain.QueueStatusWaiting, domain.QueueStatusConsulting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.QueueEntry, 0)
	for rows.Next() {
		e, err := scanQueueEntryFrom(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *PGQueueRepository) CountByStatus(ctx context.Context, status domain.QueueStatus) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM queue_entries WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *PGQueueRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM queue_entries
		WHERE status=$1 AND completed_at >= $2 AND completed_at < $3`,
		domain.QueueStatusDone, from, to).Scan(&n)
	return n, err
}

func scanQueueEntry(row pgx.Row) (*domain.QueueEntry, error) {
	e, err := scanQueueEntryFrom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func scanQueueEntryFrom(row pgx.Row) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	err := row.Scan(&e.ID, &e.OrderID, &e.PatientName, &e.PatientEmail, &e.PatientPhone,
		&e.Status, &e.RoomName, &e.CreatedAt, &e.CalledAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

var _ QueueRepository = (*PGQueueRepository)(nil)
