package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/service/orders"
)

type OrdersHandler struct {
	service orders.OrdersUseCase
}

type createOrderRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Concern string  `json:"concern"`
	Date    string  `json:"date"`
	Slot    string  `json:"slot"`
	Amount  float64 `json:"amount"`
}

type orderResponse struct {
	OrderID          string  `json:"order_id"`
	Status           string  `json:"status"`
	Date             string  `json:"date"`
	Slot             string  `json:"slot"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	BookingSaved     bool    `json:"booking_saved"`
	PaymentSessionID string  `json:"payment_session_id,omitempty"`
}

func NewOrdersHandler(service orders.OrdersUseCase) *OrdersHandler {
	return &OrdersHandler{service: service}
}

func (h *OrdersHandler) Register(router *gin.RouterGroup) {
	router.POST("/orders", h.create)
	router.GET("/orders/:id/verify", h.verify)
	router.POST("/webhooks/payment", h.webhook)
}

func (h *OrdersHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.service.CreateOrder(c.Request.Context(), orders.CreateOrderInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Concern: req.Concern,
		Date:    req.Date,
		Slot:    req.Slot,
		Amount:  req.Amount,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderResponse{
		OrderID:          out.Order.OrderID,
		Status:           string(out.Order.Status),
		Date:             out.Order.Date,
		Slot:             out.Order.Slot,
		Amount:           out.Order.Amount,
		Currency:         out.Order.Currency,
		PaymentSessionID: out.PaymentSessionID,
	})
}

func (h *OrdersHandler) verify(c *gin.Context) {
	order, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderResponse{
		OrderID:      order.OrderID,
		Status:       string(order.Status),
		Date:         order.Date,
		Slot:         order.Slot,
		Amount:       order.Amount,
		Currency:     order.Currency,
		BookingSaved: order.BookingSaved,
	})
}
