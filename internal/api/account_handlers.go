package api

import (
	"io"
	"net/http"

	"nyamalink/internal/service"

	"github.com/gin-gonic/gin"
)

// register creates a new account. The auth gateway issues tokens against it.
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// paystackWebhook applies a gateway event. The signature covers the raw
// body, so it is read before any decoding.
func (h *Handler) paystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if err := h.payments.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// listNotifications retrieves the caller's notifications
func (h *Handler) listNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListForUser(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// markNotificationRead flags one of the caller's notifications as read
func (h *Handler) markNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), id, callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}

// listUsers retrieves accounts for the admin dashboard
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// platformStats returns per-role account counts
func (h *Handler) platformStats(c *gin.Context) {
	counts, err := h.users.PlatformCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_counts": counts})
}
