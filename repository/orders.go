package repository

import (
	"context"
	"database/sql"
	"fmt"

	"canteen-service/models"
)

// CreateOrder writes the customer (when new), the order and its line items in one transaction.
func (r *SQLRepository) CreateOrder(ctx context.Context, no NewOrder) (order models.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	customerID := no.Customer.ID
	if customerID == 0 {
		customerID, err = r.insert(ctx, tx,
			"INSERT INTO customers (name, phone) VALUES (?, ?)",
			no.Customer.Name, no.Customer.Phone,
		)
		if err != nil {
			return models.Order{}, fmt.Errorf("failed to create customer: %w", err)
		}
	}

	orderID, err := r.insert(ctx, tx,
		"INSERT INTO orders (customer_id, order_date, total_price, status) VALUES (?, ?, ?, ?)",
		customerID, no.OrderDate, no.Total, string(no.Status),
	)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]models.OrderItem, 0, len(no.Items))
	for _, item := range no.Items {
		var itemID int64
		itemID, err = r.insert(ctx, tx,
			"INSERT INTO order_items (order_id, menu_id, quantity) VALUES (?, ?, ?)",
			orderID, item.MenuItemID, item.Quantity,
		)
		if err != nil {
			return models.Order{}, fmt.Errorf("failed to add order item %d: %w", item.MenuItemID, err)
		}
		item.ID = itemID
		item.OrderID = orderID
		items = append(items, item)
	}

	if err = tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("transaction commit failed: %w", err)
	}

	return models.Order{
		ID:           orderID,
		CustomerID:   customerID,
		CustomerName: no.Customer.Name,
		OrderDate:    no.OrderDate,
		TotalPrice:   no.Total,
		Status:       no.Status,
		Items:        items,
	}, nil
}

func (r *SQLRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return r.execOne(ctx, r.db, "UPDATE orders SET status = ? WHERE id = ?", string(status), id)
}

func (r *SQLRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	return r.listOrders(ctx, `
		SELECT o.id, o.customer_id, COALESCE(c.name, ''), o.order_date, o.total_price, o.status
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		ORDER BY o.id`)
}

func (r *SQLRepository) ListCustomerOrders(ctx context.Context, customerID int64) ([]models.Order, error) {
	return r.listOrders(ctx, `
		SELECT o.id, o.customer_id, COALESCE(c.name, ''), o.order_date, o.total_price, o.status
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.customer_id = ?
		ORDER BY o.id`, customerID)
}

func (r *SQLRepository) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	orders := []models.Order{}
	for rows.Next() {
		var (
			o      models.Order
			status string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.OrderDate, &o.TotalPrice, &status); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrderItems joins line items with the menu for name and current price.
// Lines whose menu item is gone keep an empty name and zero price.
func (r *SQLRepository) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT oi.id, oi.menu_id, m.item_name, oi.quantity, m.price
		FROM order_items oi
		LEFT JOIN menu m ON m.id = oi.menu_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`), orderID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	items := []models.OrderItemDetail{}
	for rows.Next() {
		var (
			d     models.OrderItemDetail
			name  sql.NullString
			price sql.NullFloat64
		)
		if err := rows.Scan(&d.ID, &d.MenuItemID, &name, &d.Quantity, &price); err != nil {
			return nil, err
		}
		d.ItemName = name.String
		d.Price = price.Float64
		d.Subtotal = d.Price * float64(d.Quantity)
		items = append(items, d)
	}
	return items, rows.Err()
}

// OrderExists reports whether an order row with that id is present.
func (r *SQLRepository) OrderExists(ctx context.Context, id int64) (bool, error) {
	n, err := r.count(ctx, "SELECT COUNT(*) FROM orders WHERE id = ?", id)
	return n > 0, err
}
