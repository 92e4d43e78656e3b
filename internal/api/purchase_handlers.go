package api

import (
	"net/http"

	"nyamalink/internal/service"

	"github.com/gin-gonic/gin"
)

// placePurchase handles wholesale purchase placement by butchers and agents
func (h *Handler) placePurchase(c *gin.Context) {
	var req service.PlacePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	purchase, err := h.purchases.PlacePurchase(c.Request.Context(), callerRole(c), callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// ownPurchases lists purchases the caller placed as buyer
func (h *Handler) ownPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListForBuyer(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// incomingPurchases lists purchases against the calling agent's stock
func (h *Handler) incomingPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListForAgent(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// getPurchase retrieves a single purchase visible to the caller
func (h *Handler) getPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	purchase, err := h.purchases.GetPurchase(c.Request.Context(), id, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// updatePurchaseStatus advances a purchase along the transition graph
func (h *Handler) updatePurchaseStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.PurchaseStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	purchase, err := h.purchases.UpdateStatus(c.Request.Context(), id, callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// confirmPurchase lets the buyer confirm reception of an arrived purchase
func (h *Handler) confirmPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "received_by is required"})
		return
	}

	purchase, err := h.purchases.ConfirmReception(c.Request.Context(), id, callerID(c), req.ReceivedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
