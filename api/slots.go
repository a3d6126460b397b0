package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/service/slots"
)

type SlotsHandler struct {
	service slots.SlotsUseCase
}

func NewSlotsHandler(service slots.SlotsUseCase) *SlotsHandler {
	return &SlotsHandler{service: service}
}

func (h *SlotsHandler) Register(router *gin.RouterGroup) {
	router.GET("/slots", h.daySchedule)
	router.GET("/bookings", h.patientBookings)
}

func (h *SlotsHandler) daySchedule(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	schedule, err := h.service.DaySchedule(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "slots": schedule})
}

func (h *SlotsHandler) patientBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	bookings, err := h.service.ListPatientBookings(c.Request.Context(), email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
