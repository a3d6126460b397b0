package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking is a confirmed, paid consultation appointment. At most one
// booking with status PENDING or PAID may exist per (date, slot).
type Booking struct {
	ID           int64         `json:"id"`
	OrderID      string        `json:"order_id"`
	PatientName  string        `json:"patient_name"`
	PatientEmail string        `json:"patient_email"`
	PatientPhone string        `json:"patient_phone"`
	Concern      string        `json:"concern,omitempty"`
	Date         string        `json:"date"` // YYYY-MM-DD
	Slot         string        `json:"slot"` // canonical label, e.g. "10:00 AM"
	Amount       float64       `json:"amount"`
	Currency     string        `json:"currency"`
	Status       BookingStatus `json:"status"`
	MeetingLink  string        `json:"meeting_link,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Active reports whether the booking still occupies its slot.
func (b BookingStatus) Active() bool {
	return b == BookingStatusPending || b == BookingStatusPaid
}

// legacyBookedStatuses are the status strings historical records used
// interchangeably for a confirmed slot.
var legacyBookedStatuses = map[string]struct{}{
	"PAID":      {},
	"SUCCESS":   {},
	"BOOKED":    {},
	"CONFIRMED": {},
}

// IsBookedStatus matches a stored status string against the set of values
// that mean "this slot is taken", case- and whitespace-insensitively.
func IsBookedStatus(s string) bool {
	_, ok := legacyBookedStatuses[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// MeetingLink derives the consultation room URL for a confirmed booking.
func MeetingLink(baseURL, orderID, date, slot, patientName string) string {
	if baseURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("room", orderID)
	q.Set("date", date)
	q.Set("slot", slot)
	if patientName != "" {
		q.Set("name", patientName)
	}
	return fmt.Sprintf("%s?%s", baseURL, q.Encode())
}
