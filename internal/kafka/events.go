package kafka

// Event types carried on the payments and notifications topics.
const (
	EventOrderCreated     = "order_created"
	EventBookingConfirmed = "booking_confirmed"
	EventPaymentFailed    = "payment_failed"
)

// PaymentEvent is the message the API publishes and the worker consumes
// to drive patient and staff notifications.
type PaymentEvent struct {
	Type        string  `json:"type"`
	OrderID     string  `json:"order_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Date        string  `json:"date"`
	Slot        string  `json:"slot"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	MeetingLink string  `json:"meeting_link,omitempty"`
}
