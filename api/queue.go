package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/service/queue"
)

type QueueHandler struct {
	service queue.QueueUseCase
}

type queueOrderRequest struct {
	OrderID string `json:"order_id"`
}

func NewQueueHandler(service queue.QueueUseCase) *QueueHandler {
	return &QueueHandler{service: service}
}

func (h *QueueHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/queue/join", h.join)
	router.GET("/queue/status", h.status)
}

func (h *QueueHandler) RegisterDoctor(router *gin.RouterGroup) {
	router.GET("/queue", h.listActive)
	router.POST("/queue/start", h.start)
	router.POST("/queue/end", h.end)
	router.GET("/queue/summary", h.summary)
}

func (h *QueueHandler) join(c *gin.Context) {
	var req queueOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.service.Join(c.Request.Context(), req.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *QueueHandler) status(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id query parameter is required"})
		return
	}

	out, err := h.service.Status(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *QueueHandler) listActive(c *gin.Context) {
	entries, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *QueueHandler) start(c *gin.Context) {
	var req queueOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Start(c.Request.Context(), req.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *QueueHandler) end(c *gin.Context) {
	var req queueOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.End(c.Request.Context(), req.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *QueueHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
