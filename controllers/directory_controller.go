package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-service/models"
)

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.Directory.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	defer recordOperation(c, "customer_create")

	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.Directory.AddCustomer(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	defer recordOperation(c, "customer_update")

	id, ok := paramID(c)
	if !ok {
		return
	}
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.Directory.UpdateCustomer(c.Request.Context(), id, req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	defer recordOperation(c, "customer_delete")

	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Directory.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted", "id": id})
}

func (h *Handler) GetCustomerOrders(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	orders, err := h.Orders.GetCustomerOrders(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.Directory.ListStaff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	defer recordOperation(c, "staff_create")

	var req models.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := h.Directory.AddStaff(c.Request.Context(), req.Name, req.Role, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	defer recordOperation(c, "staff_update")

	id, ok := paramID(c)
	if !ok {
		return
	}
	var req models.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := h.Directory.UpdateStaff(c.Request.Context(), id, req.Name, req.Role, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	defer recordOperation(c, "staff_delete")

	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Directory.DeleteStaff(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff deleted", "id": id})
}
