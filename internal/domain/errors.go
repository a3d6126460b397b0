package domain

import "errors"

var (
	// ErrValidation covers missing or malformed client input. No state
	// is mutated when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrSlotHeld means another checkout currently holds the slot lock;
	// the slot may free up when the lock expires.
	ErrSlotHeld = errors.New("slot is held by another checkout")

	// ErrSlotBooked means a confirmed booking occupies the slot.
	ErrSlotBooked = errors.New("slot is already booked")

	// ErrSlotUnavailable means the doctor marked the slot (or day) off.
	ErrSlotUnavailable = errors.New("slot is unavailable")

	// ErrGateway wraps payment-provider call failures.
	ErrGateway = errors.New("payment gateway error")

	ErrNotFound      = errors.New("not found")
	ErrNotPaid       = errors.New("payment not confirmed")
	ErrNotWaiting    = errors.New("patient is not waiting")
	ErrNotConsulting = errors.New("patient is not in consultation")
)
