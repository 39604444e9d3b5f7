package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses is the fixed display list. Any status may follow any other.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"customer_id"`
	CustomerName string      `json:"customer_name,omitempty"`
	OrderDate    time.Time   `json:"order_date"`
	TotalPrice   float64     `json:"total_price"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items,omitempty"`
}

// OrderItem is the stored line item: which menu item and how many.
type OrderItem struct {
	ID         int64 `json:"id"`
	OrderID    int64 `json:"order_id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// OrderItemDetail joins a line item with the menu row it points at.
// ItemName and Price are empty when the menu item was deleted later.
type OrderItemDetail struct {
	ID         int64   `json:"id"`
	MenuItemID int64   `json:"menu_item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Subtotal   float64 `json:"subtotal"`
}

type PlaceOrderRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=Pending Processing Completed Cancelled"`
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Total      float64     `json:"total"`
	Items      int         `json:"items"`
	Occurred   time.Time   `json:"occurred"`
}
