package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/config"
	"github.com/bepeace/telemed/internal/auth"
	"github.com/bepeace/telemed/internal/service/slots"
)

type DoctorHandler struct {
	slots slots.SlotsUseCase
	auth  *auth.Manager
	cfg   config.DoctorConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type unavailableRequest struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Reason string `json:"reason"`
}

func NewDoctorHandler(slotsService slots.SlotsUseCase, authManager *auth.Manager, cfg config.DoctorConfig) *DoctorHandler {
	return &DoctorHandler{slots: slotsService, auth: authManager, cfg: cfg}
}

func (h *DoctorHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/doctor/login", h.login)
}

func (h *DoctorHandler) RegisterDoctor(router *gin.RouterGroup) {
	router.GET("/doctor/bookings", h.bookings)
	router.POST("/doctor/unavailable", h.setUnavailable)
	router.DELETE("/doctor/unavailable", h.removeUnavailable)
}

func (h *DoctorHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !emailOK || !passwordOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.IssueDoctorToken(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *DoctorHandler) bookings(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}

	bookings, err := h.slots.ListDoctorBookings(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *DoctorHandler) setUnavailable(c *gin.Context) {
	var req unavailableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.slots.SetUnavailable(c.Request.Context(), req.Date, req.Slot, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DoctorHandler) removeUnavailable(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	if err := h.slots.RemoveUnavailable(c.Request.Context(), date, c.Query("slot")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
