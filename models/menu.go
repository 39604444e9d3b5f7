package models

type MenuItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"item_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Quantity fields are pointers so an omitted quantity is rejected instead of read as zero.
type MenuItemRequest struct {
	Name     string  `json:"item_name" binding:"required"`
	Price    float64 `json:"price"`
	Quantity *int    `json:"quantity" binding:"required,min=0"`
}

// InventoryItem is the manual stock register. It is never reconciled with menu stock.
type InventoryItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

type InventoryItemRequest struct {
	Name     string `json:"item_name" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required,min=0"`
}

type InventoryQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}
