package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-service/models"
)

func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.Catalog.ListMenuItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	defer recordOperation(c, "menu_create")

	var req models.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Catalog.AddMenuItem(c.Request.Context(), req.Name, req.Price, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	defer recordOperation(c, "menu_update")

	id, ok := paramID(c)
	if !ok {
		return
	}
	var req models.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Catalog.UpdateMenuItem(c.Request.Context(), id, req.Name, req.Price, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	defer recordOperation(c, "menu_delete")

	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted", "id": id})
}
