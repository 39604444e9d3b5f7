package models

import "time"

// CartLine snapshots the menu item's name and price at the moment it was added.
type CartLine struct {
	MenuItemID int64   `json:"menu_item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AddCartLineRequest struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required"`
	Quantity   int   `json:"quantity"`
}
