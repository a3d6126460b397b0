package domain

import "time"

type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "waiting"
	QueueStatusConsulting QueueStatus = "consulting"
	QueueStatusDone       QueueStatus = "done"
)

// QueueEntry is a paid patient waiting for, or in, a live consultation.
// At most one non-done entry exists per order; done entries are retained
// for the daily summary.
type QueueEntry struct {
	ID           int64       `json:"id"`
	OrderID      string      `json:"order_id"`
	PatientName  string      `json:"patient_name"`
	PatientEmail string      `json:"patient_email"`
	PatientPhone string      `json:"patient_phone"`
	Status       QueueStatus `json:"status"`
	RoomName     string      `json:"room_name,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	CalledAt     *time.Time  `json:"called_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}
