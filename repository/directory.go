package repository

import (
	"context"
	"database/sql"

	"canteen-service/models"
)

func (r *SQLRepository) CreateCustomer(ctx context.Context, c models.Customer) (int64, error) {
	return r.insert(ctx, r.db, "INSERT INTO customers (name, phone) VALUES (?, ?)", c.Name, c.Phone)
}

func (r *SQLRepository) UpdateCustomer(ctx context.Context, c models.Customer) error {
	return r.execOne(ctx, r.db, "UPDATE customers SET name = ?, phone = ? WHERE id = ?", c.Name, c.Phone, c.ID)
}

func (r *SQLRepository) DeleteCustomer(ctx context.Context, id int64) error {
	return r.execOne(ctx, r.db, "DELETE FROM customers WHERE id = ?", id)
}

func (r *SQLRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, phone FROM customers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *SQLRepository) CountCustomerOrders(ctx context.Context, customerID int64) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM orders WHERE customer_id = ?", customerID)
}

// FindCustomerByPhone returns the oldest customer with that phone.
func (r *SQLRepository) FindCustomerByPhone(ctx context.Context, phone string) (models.Customer, error) {
	var c models.Customer
	err := r.db.QueryRowContext(ctx,
		r.q("SELECT id, name, phone FROM customers WHERE phone = ? ORDER BY id LIMIT 1"), phone,
	).Scan(&c.ID, &c.Name, &c.Phone)
	return c, translate(err)
}

func (r *SQLRepository) CreateStaff(ctx context.Context, s models.Staff) (int64, error) {
	return r.insert(ctx, r.db,
		"INSERT INTO staff (name, role, phone) VALUES (?, ?, ?)",
		s.Name, s.Role, s.Phone,
	)
}

func (r *SQLRepository) UpdateStaff(ctx context.Context, s models.Staff) error {
	return r.execOne(ctx, r.db,
		"UPDATE staff SET name = ?, role = ?, phone = ? WHERE id = ?",
		s.Name, s.Role, s.Phone, s.ID,
	)
}

func (r *SQLRepository) DeleteStaff(ctx context.Context, id int64) error {
	return r.execOne(ctx, r.db, "DELETE FROM staff WHERE id = ?", id)
}

func (r *SQLRepository) ListStaff(ctx context.Context) ([]models.Staff, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, role, phone FROM staff ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	staff := []models.Staff{}
	for rows.Next() {
		var (
			s     models.Staff
			phone sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &phone); err != nil {
			return nil, err
		}
		s.Phone = phone.String
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (r *SQLRepository) CountStaff(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM staff")
}
