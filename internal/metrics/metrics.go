// Package metrics exposes Prometheus counters for the booking pipeline.
// All record methods are nil-safe so wiring metrics stays optional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ordersCreated     prometheus.Counter
	slotConflicts     *prometheus.CounterVec
	webhooks          *prometheus.CounterVec
	webhookReplays    prometheus.Counter
	bookingsConfirmed prometheus.Counter
	emails            *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "telemed_orders_created_total",
			Help: "Payment orders created.",
		}),
		slotConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telemed_slot_conflicts_total",
			Help: "Order attempts rejected for a taken slot.",
		}, []string{"reason"}),
		webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telemed_payment_webhooks_total",
			Help: "Payment webhook deliveries by outcome.",
		}, []string{"result"}),
		webhookReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "telemed_payment_webhook_replays_total",
			Help: "Webhook deliveries that found fulfillment already done.",
		}),
		bookingsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telemed_bookings_confirmed_total",
			Help: "Bookings confirmed after successful payment.",
		}),
		emails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telemed_emails_total",
			Help: "Notification emails by delivery status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// SlotConflict records a rejected order attempt; reason is one of
// "booked", "held", "unavailable", "past".
func (m *Metrics) SlotConflict(reason string) {
	if m == nil {
		return
	}
	m.slotConflicts.WithLabelValues(reason).Inc()
}

// Webhook records a delivery outcome; result is one of "paid",
// "failed", "ignored", "error".
func (m *Metrics) Webhook(result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(result).Inc()
}

func (m *Metrics) WebhookReplay() {
	if m == nil {
		return
	}
	m.webhookReplays.Inc()
}

func (m *Metrics) BookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *Metrics) EmailSent(status string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(status).Inc()
}
