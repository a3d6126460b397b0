package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bepeace/telemed/internal/domain"
)

type PaymentOrderRepository interface {
	Create(ctx context.Context, o *domain.PaymentOrder) error
	Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	RecordStatus(ctx context.Context, orderID string, status domain.OrderStatus, raw []byte) error
	// TryBeginFulfillment flips booking_saved false->true and reports
	// whether this caller made the flip. Exactly one of any number of
	// concurrent webhook deliveries for the same order gets true.
	TryBeginFulfillment(ctx context.Context, orderID string) (bool, error)
	ListStaleCreated(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentOrder, error)
	RevenueBetween(ctx context.Context, from, to time.Time) (float64, error)
}

type PGPaymentOrderRepository struct {
	db *pgxpool.Pool
}

func NewPaymentOrderRepository(db *pgxpool.Pool) PaymentOrderRepository {
	return &PGPaymentOrderRepository{db: db}
}

const orderColumns = `order_id, patient_name, patient_email, patient_phone, concern, consult_date, slot, amount, currency, status, booking_saved, gateway_raw, created_at, updated_at`

func (r *PGPaymentOrderRepository) Create(ctx context.Context, o *domain.PaymentOrder) error {
	return r.db.QueryRow(ctx, `INSERT INTO payment_orders
		(order_id, patient_name, patient_email, patient_phone, concern, consult_date, slot, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		o.OrderID, o.PatientName, o.PatientEmail, o.PatientPhone, o.Concern,
		o.Date, o.Slot, o.Amount, o.Currency, o.Status).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGPaymentOrderRepository) Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM payment_orders WHERE order_id=$1`, orderID)
	return scanOrder(row)
}

// RecordStatus persists the latest gateway-reported status and payload.
// It runs before any fulfillment side effect so a crash mid-webhook
// leaves a durable record for the reconciler to finish from.
func (r *PGPaymentOrderRepository) RecordStatus(ctx context.Context, orderID string, status domain.OrderStatus, raw []byte) error {
	cmd, err := r.db.Exec(ctx, `UPDATE payment_orders
		SET status=$1, gateway_raw=COALESCE($2, gateway_raw), updated_at=now()
		WHERE order_id=$3`, status, raw, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGPaymentOrderRepository) TryBeginFulfillment(ctx context.Context, orderID string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE payment_orders
		SET booking_saved=true, updated_at=now()
		WHERE order_id=$1 AND booking_saved=false`, orderID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *PGPaymentOrderRepository) ListStaleCreated(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM payment_orders
		WHERE status=$1 AND booking_saved=false AND created_at < $2
		ORDER BY created_at LIMIT $3`, domain.OrderStatusCreated, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.PaymentOrder, 0)
	for rows.Next() {
		o, err := scanOrderFrom(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PGPaymentOrderRepository) RevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payment_orders
		WHERE status=$1 AND created_at >= $2 AND created_at < $3`,
		domain.OrderStatusPaid, from, to).Scan(&total)
	return total, err
}

func scanOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	o, err := scanOrderFrom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return o, err
}

func scanOrderFrom(row pgx.Row) (*domain.PaymentOrder, error) {
	var o domain.PaymentOrder
	err := row.Scan(&o.OrderID, &o.PatientName, &o.PatientEmail, &o.PatientPhone, &o.Concern,
		&o.Date, &o.Slot, &o.Amount, &o.Currency, &o.Status, &o.BookingSaved, &o.GatewayRaw,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

var _ PaymentOrderRepository = (*PGPaymentOrderRepository)(nil)
