package repository

import (
	"context"
	"errors"

	"canteen-service/models"
)

func (r *SQLRepository) CreateMenuItem(ctx context.Context, item models.MenuItem) (int64, error) {
	return r.insert(ctx, r.db,
		"INSERT INTO menu (item_name, price, quantity) VALUES (?, ?, ?)",
		item.Name, item.Price, item.Quantity,
	)
}

func (r *SQLRepository) UpdateMenuItem(ctx context.Context, item models.MenuItem) error {
	return r.execOne(ctx, r.db,
		"UPDATE menu SET item_name = ?, price = ?, quantity = ? WHERE id = ?",
		item.Name, item.Price, item.Quantity, item.ID,
	)
}

func (r *SQLRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	return r.execOne(ctx, r.db, "DELETE FROM menu WHERE id = ?", id)
}

func (r *SQLRepository) GetMenuItem(ctx context.Context, id int64) (models.MenuItem, error) {
	var m models.MenuItem
	err := r.db.QueryRowContext(ctx,
		r.q("SELECT id, item_name, price, quantity FROM menu WHERE id = ?"), id,
	).Scan(&m.ID, &m.Name, &m.Price, &m.Quantity)
	return m, translate(err)
}

func (r *SQLRepository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, item_name, price, quantity FROM menu ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	items := []models.MenuItem{}
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Quantity); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *SQLRepository) ReserveStock(ctx context.Context, id int64, qty int) error {
	err := r.execOne(ctx, r.db,
		"UPDATE menu SET quantity = quantity - ? WHERE id = ? AND quantity >= ?",
		qty, id, qty,
	)
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	// Nothing matched: either the item is gone or it has too little stock.
	if _, getErr := r.GetMenuItem(ctx, id); getErr != nil {
		return getErr
	}
	return ErrInsufficientStock
}

func (r *SQLRepository) RestoreStock(ctx context.Context, id int64, qty int) error {
	return r.execOne(ctx, r.db, "UPDATE menu SET quantity = quantity + ? WHERE id = ?", qty, id)
}
