package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PaymentOrder correlates a gateway order with one booking attempt.
// Orders are never deleted; abandoned ones stay CREATED for audit.
type PaymentOrder struct {
	OrderID      string      `json:"order_id"`
	PatientName  string      `json:"patient_name"`
	PatientEmail string      `json:"patient_email"`
	PatientPhone string      `json:"patient_phone"`
	Concern      string      `json:"concern,omitempty"`
	Date         string      `json:"date"`
	Slot         string      `json:"slot"`
	Amount       float64     `json:"amount"`
	Currency     string      `json:"currency"`
	Status       OrderStatus `json:"status"`
	BookingSaved bool        `json:"booking_saved"`
	GatewayRaw   []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Terminal reports whether no further transitions are expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed || s == OrderStatusCancelled
}

// NormalizeOrderStatus maps the raw status strings observed from the
// gateway (webhooks, verify responses, legacy records) onto the closed
// enum. Unknown strings return ok=false and must not drive transitions.
func NormalizeOrderStatus(raw string) (OrderStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PAID", "SUCCESS":
		return OrderStatusPaid, true
	case "FAILED", "FAILURE":
		return OrderStatusFailed, true
	case "CANCELLED", "CANCELED", "USER_DROPPED", "EXPIRED":
		return OrderStatusCancelled, true
	case "CREATED", "ACTIVE", "PENDING":
		return OrderStatusCreated, true
	default:
		return "", false
	}
}
