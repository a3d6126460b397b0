package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/domain"
)

// writeError maps domain errors onto HTTP statuses. Slot conflicts get a
// machine-readable code so the booking page can tell a live checkout
// hold apart from a confirmed booking.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrSlotHeld):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "held"})
	case errors.Is(err, domain.ErrSlotBooked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "booked"})
	case errors.Is(err, domain.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "unavailable"})
	case errors.Is(err, domain.ErrNotPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "not_paid"})
	case errors.Is(err, domain.ErrNotWaiting), errors.Is(err, domain.ErrNotConsulting):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
