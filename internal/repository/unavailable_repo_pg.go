package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bepeace/telemed/internal/calendar"
	"github.com/bepeace/telemed/internal/domain"
)

type UnavailabilityRepository interface {
	// Set marks a slot off, or the whole day when slot is empty.
	Set(ctx context.Context, date, slot, reason string) error
	Remove(ctx context.Context, date, slot string) error
	// Marks returns the per-slot marks for a date and whether the whole
	// day is off.
	Marks(ctx context.Context, date string) (map[string]bool, bool, error)
}

type PGUnavailabilityRepository struct {
	db *pgxpool.Pool
}

func NewUnavailabilityRepository(db *pgxpool.Pool) UnavailabilityRepository {
	return &PGUnavailabilityRepository{db: db}
}

func (r *PGUnavailabilityRepository) Set(ctx context.Context, date, slot, reason string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO unavailable_marks (consult_date, slot, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (consult_date, slot) DO UPDATE SET reason=EXCLUDED.reason`,
		date, slot, reason)
	return err
}

func (r *PGUnavailabilityRepository) Remove(ctx context.Context, date, slot string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM unavailable_marks WHERE consult_date=$1 AND slot=$2`, date, slot)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUnavailabilityRepository) Marks(ctx context.Context, date string) (map[string]bool, bool, error) {
	rows, err := r.db.Query(ctx, `SELECT slot FROM unavailable_marks WHERE consult_date=$1`, date)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	slots := make(map[string]bool)
	wholeDay := false
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, false, err
		}
		if slot == "" {
			wholeDay = true
			continue
		}
		if label, err := calendar.NormalizeSlot(slot); err == nil {
			slots[label] = true
		}
	}
	return slots, wholeDay, rows.Err()
}

var _ UnavailabilityRepository = (*PGUnavailabilityRepository)(nil)
