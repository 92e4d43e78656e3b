package api

import (
	"net/http"

	"nyamalink/internal/service"

	"github.com/gin-gonic/gin"
)

// placeOrder handles customer order placement
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ownOrders lists the calling customer's orders
func (h *Handler) ownOrders(c *gin.Context) {
	orders, err := h.orders.ListForCustomer(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder retrieves a single order visible to the caller
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// incomingOrders lists orders against the calling butcher's stock
func (h *Handler) incomingOrders(c *gin.Context) {
	orders, err := h.orders.ListForButcher(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// updateOrderStatus advances an order along the transition graph
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type confirmRequest struct {
	ReceivedBy string `json:"received_by" binding:"required"`
}

// confirmDelivery lets the customer close out an arrived order
func (h *Handler) confirmDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "received_by is required"})
		return
	}

	order, err := h.orders.ConfirmDelivery(c.Request.Context(), id, callerID(c), req.ReceivedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// cancelOrder lets the customer cancel a still-pending order
func (h *Handler) cancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
