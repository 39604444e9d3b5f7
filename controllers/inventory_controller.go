package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-service/models"
)

func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.Catalog.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateInventoryItem(c *gin.Context) {
	defer recordOperation(c, "inventory_create")

	var req models.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Catalog.AddInventoryItem(c.Request.Context(), req.Name, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	defer recordOperation(c, "inventory_update")

	id, ok := paramID(c)
	if !ok {
		return
	}
	var req models.InventoryQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Catalog.UpdateInventoryItem(c.Request.Context(), id, *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory updated", "id": id, "quantity": *req.Quantity})
}

func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	defer recordOperation(c, "inventory_delete")

	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteInventoryItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted", "id": id})
}
