package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewPaymentOrderRepository(pool))
	assert.NotNil(t, NewQueueRepository(pool))
	assert.NotNil(t, NewUnavailabilityRepository(pool))
}
