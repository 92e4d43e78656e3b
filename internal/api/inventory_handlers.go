package api

import (
	"net/http"

	"nyamalink/internal/models"
	"nyamalink/internal/service"

	"github.com/gin-gonic/gin"
)

// ownerType maps the caller's role onto the inventory owner type.
func ownerType(c *gin.Context) string {
	if callerRole(c) == models.RoleAgent {
		return models.OwnerTypeAgent
	}
	return models.OwnerTypeButcher
}

// addStock handles stock creation for the calling agent or butcher
func (h *Handler) addStock(c *gin.Context) {
	var req service.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	inv, err := h.inventory.AddStock(c.Request.Context(), ownerType(c), callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// ownStock lists the caller's stock records
func (h *Handler) ownStock(c *gin.Context) {
	items, err := h.inventory.OwnStock(c.Request.Context(), ownerType(c), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

// updateStock edits one of the caller's stock records
func (h *Handler) updateStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	inv, err := h.inventory.UpdateStock(c.Request.Context(), id, ownerType(c), callerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// deleteStock removes one of the caller's stock records
func (h *Handler) deleteStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteStock(c.Request.Context(), id, ownerType(c), callerID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "inventory deleted"})
}

// agentMarket lists public agent stock for wholesale buyers
func (h *Handler) agentMarket(c *gin.Context) {
	items, err := h.inventory.Market(c.Request.Context(), models.OwnerTypeAgent, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

// butcherMarket lists public butcher stock for customers
func (h *Handler) butcherMarket(c *gin.Context) {
	items, err := h.inventory.Market(c.Request.Context(), models.OwnerTypeButcher, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}
