package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"nyamalink/internal/models"
	"nyamalink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users         *service.UserService
	inventory     *service.InventoryService
	orders        *service.OrderService
	purchases     *service.PurchaseService
	payments      *service.PaymentService
	notifications *service.NotificationService
	jwtSecret     string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	inventory *service.InventoryService,
	orders *service.OrderService,
	purchases *service.PurchaseService,
	payments *service.PaymentService,
	notifications *service.NotificationService,
	jwtSecret string,
) *Handler {
	return &Handler{
		users:         users,
		inventory:     inventory,
		orders:        orders,
		purchases:     purchases,
		payments:      payments,
		notifications: notifications,
		jwtSecret:     jwtSecret,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.register)
	}

	// webhook authenticates via HMAC signature, not a bearer token
	payment := router.Group("/api/payment")
	{
		payment.POST("/webhook", h.paystackWebhook)
	}

	agent := router.Group("/api/agent", protect(h.jwtSecret), requireRole(models.RoleAgent))
	{
		agent.POST("/inventory", h.addStock)
		agent.GET("/inventory", h.ownStock)
		agent.PUT("/inventory/:id", h.updateStock)
		agent.DELETE("/inventory/:id", h.deleteStock)
		agent.GET("/market", h.agentMarket)
		agent.GET("/purchases/incoming", h.incomingPurchases)
		agent.PUT("/purchases/:id/status", h.updatePurchaseStatus)
		agent.POST("/purchases", h.placePurchase)
		agent.GET("/purchases", h.ownPurchases)
		agent.PUT("/purchases/:id/confirm", h.confirmPurchase)
	}

	butcher := router.Group("/api/butcher", protect(h.jwtSecret), requireRole(models.RoleButcher))
	{
		butcher.POST("/inventory", h.addStock)
		butcher.GET("/inventory", h.ownStock)
		butcher.PUT("/inventory/:id", h.updateStock)
		butcher.DELETE("/inventory/:id", h.deleteStock)
		butcher.GET("/market", h.agentMarket)
		butcher.POST("/purchases", h.placePurchase)
		butcher.GET("/purchases", h.ownPurchases)
		butcher.PUT("/purchases/:id/confirm", h.confirmPurchase)
		butcher.GET("/orders", h.incomingOrders)
		butcher.PUT("/orders/:id/status", h.updateOrderStatus)
	}

	customer := router.Group("/api/customer", protect(h.jwtSecret), requireRole(models.RoleCustomer))
	{
		customer.GET("/market", h.butcherMarket)
		customer.POST("/orders", h.placeOrder)
		customer.GET("/orders", h.ownOrders)
		customer.GET("/orders/:id", h.getOrder)
		customer.PUT("/orders/:id/confirm", h.confirmDelivery)
		customer.PUT("/orders/:id/cancel", h.cancelOrder)
	}

	purchase := router.Group("/api/purchase", protect(h.jwtSecret), requireRole(models.RoleAgent, models.RoleButcher))
	{
		purchase.GET("/:id", h.getPurchase)
	}

	admin := router.Group("/api/admin", protect(h.jwtSecret), requireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.listUsers)
		admin.GET("/stats", h.platformStats)
	}

	notification := router.Group("/api/notification", protect(h.jwtSecret))
	{
		notification.GET("", h.listNotifications)
		notification.PUT("/:id/read", h.markNotificationRead)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service sentinels onto the HTTP error taxonomy with a
// JSON {message} body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrBadSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}
