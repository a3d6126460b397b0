package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bepeace/telemed/internal/auth"
)

type Handlers struct {
	Slots  *SlotsHandler
	Orders *OrdersHandler
	Queue  *QueueHandler
	Doctor *DoctorHandler
}

// NewRouter wires all routes. Doctor routes sit behind the bearer-token
// middleware; everything else is public.
func NewRouter(h Handlers, authManager *auth.Manager, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	public := router.Group("/api")
	h.Slots.Register(public)
	h.Orders.Register(public)
	h.Queue.RegisterPublic(public)
	h.Doctor.RegisterPublic(public)

	doctor := router.Group("/api", RequireDoctor(authManager))
	h.Queue.RegisterDoctor(doctor)
	h.Doctor.RegisterDoctor(doctor)

	return router
}
