package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/domain"
)

// webhook acknowledges with 200 whenever the delivery has been durably
// handled, even if nothing changed, so the gateway stops retrying. 400
// means the body was unparseable; 500 means a storage failure before
// the status was recorded, which the gateway should retry.
func (h *OrdersHandler) webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), body); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
