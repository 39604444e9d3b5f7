package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canteen-service/middlewares"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.RequestLogger(),
		middlewares.PrometheusMiddleware(),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.HealthCheck)

	public := r.Group("/api/auth")
	{
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(h.JWTSecret))
	admin := middlewares.AdminOnly()
	{
		api.POST("/auth/logout", h.Logout)

		api.GET("/menu", h.ListMenu)
		api.POST("/menu", admin, h.CreateMenuItem)
		api.PUT("/menu/:id", admin, h.UpdateMenuItem)
		api.DELETE("/menu/:id", admin, h.DeleteMenuItem)

		api.GET("/inventory", admin, h.ListInventory)
		api.POST("/inventory", admin, h.CreateInventoryItem)
		api.PUT("/inventory/:id", admin, h.UpdateInventoryItem)
		api.DELETE("/inventory/:id", admin, h.DeleteInventoryItem)

		api.GET("/customers", h.ListCustomers)
		api.POST("/customers", h.CreateCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)
		api.DELETE("/customers/:id", h.DeleteCustomer)
		api.GET("/customers/:id/orders", h.GetCustomerOrders)

		api.GET("/staff", admin, h.ListStaff)
		api.POST("/staff", admin, h.CreateStaff)
		api.PUT("/staff/:id", admin, h.UpdateStaff)
		api.DELETE("/staff/:id", admin, h.DeleteStaff)

		api.GET("/cart", h.GetCart)
		api.POST("/cart/lines", h.AddCartLine)
		api.DELETE("/cart", h.DiscardCart)

		api.POST("/orders", h.PlaceOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id/items", h.GetOrderItems)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	return r
}
