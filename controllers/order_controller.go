package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-service/middlewares"
	"canteen-service/models"
)

func (h *Handler) GetCart(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Orders.Cart(c.Request.Context(), s))
}

func (h *Handler) AddCartLine(c *gin.Context) {
	defer recordOperation(c, "cart_add")

	s, ok := session(c)
	if !ok {
		return
	}

	var req models.AddCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.Orders.AddLineToCart(c.Request.Context(), s, req.MenuItemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RecordReservation(line.Quantity)
	c.JSON(http.StatusCreated, line)
}

func (h *Handler) DiscardCart(c *gin.Context) {
	defer recordOperation(c, "cart_discard")

	s, ok := session(c)
	if !ok {
		return
	}
	if !h.discardCart(c, s) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart discarded"})
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	defer recordOperation(c, "place_order")

	s, ok := session(c)
	if !ok {
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), s, req.CustomerName, req.CustomerPhone)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.ObserveOrderAmount(order.TotalPrice)
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	defer recordOperation(c, "list_orders")

	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrderItems(c *gin.Context) {
	defer recordOperation(c, "order_items")

	id, ok := paramID(c)
	if !ok {
		return
	}
	items, err := h.Orders.GetOrderLineItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	defer recordOperation(c, "update_status")

	id, ok := paramID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Orders.SetOrderStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": id, "status": req.Status})
}
