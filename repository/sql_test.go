package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-service/database"
	"canteen-service/models"
)

func newMockRepo(t *testing.T, dialect database.Dialect) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(&database.DB{DB: db, Dialect: dialect}), mock
}

func TestCreateOrder_CommitsCustomerOrderAndItems(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	when := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO customers (name, phone) VALUES (?, ?)")).
		WithArgs("Ann", "1234567890").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (customer_id, order_date, total_price, status) VALUES (?, ?, ?, ?)")).
		WithArgs(int64(7), when, 13.0, "Pending").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items (order_id, menu_id, quantity) VALUES (?, ?, ?)")).
		WithArgs(int64(11), int64(1), 2).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items (order_id, menu_id, quantity) VALUES (?, ?, ?)")).
		WithArgs(int64(11), int64(2), 1).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectCommit()

	order, err := repo.CreateOrder(context.Background(), NewOrder{
		Customer:  models.Customer{Name: "Ann", Phone: "1234567890"},
		OrderDate: when,
		Total:     13.0,
		Status:    models.OrderStatusPending,
		Items: []models.OrderItem{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), order.ID)
	assert.Equal(t, int64(7), order.CustomerID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(100), order.Items[0].ID)
	assert.Equal(t, int64(11), order.Items[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_RollsBackWhenALineFails(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateOrder(context.Background(), NewOrder{
		Customer: models.Customer{Name: "Ann", Phone: "1234567890"},
		Status:   models.OrderStatusPending,
		Items:    []models.OrderItem{{MenuItemID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_ReusesExistingCustomer(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(int64(3), sqlmock.AnyArg(), 5.0, "Pending").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	order, err := repo.CreateOrder(context.Background(), NewOrder{
		Customer: models.Customer{ID: 3, Name: "Ann", Phone: "1234567890"},
		Total:    5.0,
		Status:   models.OrderStatusPending,
		Items:    []models.OrderItem{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStock(t *testing.T) {
	update := regexp.QuoteMeta("UPDATE menu SET quantity = quantity - ? WHERE id = ? AND quantity >= ?")
	selectOne := regexp.QuoteMeta("SELECT id, item_name, price, quantity FROM menu WHERE id = ?")
	cols := []string{"id", "item_name", "price", "quantity"}

	t.Run("decrements", func(t *testing.T) {
		repo, mock := newMockRepo(t, database.MySQL)
		mock.ExpectExec(update).WithArgs(3, int64(1), 3).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ReserveStock(context.Background(), 1, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient", func(t *testing.T) {
		repo, mock := newMockRepo(t, database.MySQL)
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectOne).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Tea", 1.5, 2))

		err := repo.ReserveStock(context.Background(), 1, 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item", func(t *testing.T) {
		repo, mock := newMockRepo(t, database.MySQL)
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectOne).WillReturnRows(sqlmock.NewRows(cols))

		err := repo.ReserveStock(context.Background(), 1, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'admin'"})

	_, err := repo.CreateUser(context.Background(), models.User{Username: "admin", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdateMenuItem_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectExec("UPDATE menu SET item_name").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMenuItem(context.Background(), models.MenuItem{ID: 42, Name: "Tea", Price: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_InsertUsesReturning(t *testing.T) {
	repo, mock := newMockRepo(t, database.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO menu (item_name, price, quantity) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("Samosa", 2.5, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	id, err := repo.CreateMenuItem(context.Background(), models.MenuItem{Name: "Samosa", Price: 2.5, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMenuItems_InsertionOrder(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item_name, price, quantity FROM menu ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_name", "price", "quantity"}).
			AddRow(1, "Tea", 1.5, 20).
			AddRow(2, "Coffee", 2.0, 15))

	items, err := repo.ListMenuItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MenuItem{
		{ID: 1, Name: "Tea", Price: 1.5, Quantity: 20},
		{ID: 2, Name: "Coffee", Price: 2.0, Quantity: 15},
	}, items)
}

func TestGetOrderItems_KeepsLinesOfDeletedMenuItems(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectQuery("FROM order_items oi").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "menu_id", "item_name", "quantity", "price"}).
			AddRow(1, 1, "Tea", 2, 5.0).
			AddRow(2, 9, nil, 1, nil))

	items, err := repo.GetOrderItems(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 10.0, items[0].Subtotal)
	assert.Equal(t, "", items[1].ItemName)
	assert.Equal(t, 0.0, items[1].Price)
}

func TestCountCustomerOrders(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE customer_id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountCustomerOrders(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteCustomer_ForeignKeyViolation(t *testing.T) {
	repo, mock := newMockRepo(t, database.MySQL)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	err := repo.DeleteCustomer(context.Background(), 3)
	assert.ErrorIs(t, err, ErrReferenced)
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1062}), ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1451}), ErrReferenced)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23503"}), ErrReferenced)
	assert.Nil(t, translate(nil))

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
