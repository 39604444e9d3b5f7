package repository

import (
	"context"

	"canteen-service/models"
)

func (r *SQLRepository) CreateInventoryItem(ctx context.Context, item models.InventoryItem) (int64, error) {
	return r.insert(ctx, r.db,
		"INSERT INTO inventory (item_name, quantity) VALUES (?, ?)",
		item.Name, item.Quantity,
	)
}

func (r *SQLRepository) SetInventoryQuantity(ctx context.Context, id int64, qty int) error {
	return r.execOne(ctx, r.db, "UPDATE inventory SET quantity = ? WHERE id = ?", qty, id)
}

func (r *SQLRepository) DeleteInventoryItem(ctx context.Context, id int64) error {
	return r.execOne(ctx, r.db, "DELETE FROM inventory WHERE id = ?", id)
}

func (r *SQLRepository) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, item_name, quantity FROM inventory ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	items := []models.InventoryItem{}
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
