package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"canteen-service/database"
	"canteen-service/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrReferenced means another row still points at the one being deleted.
	ErrReferenced = errors.New("record is referenced")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	HasAdmin(ctx context.Context) (bool, error)
}

type MenuRepository interface {
	CreateMenuItem(ctx context.Context, item models.MenuItem) (int64, error)
	UpdateMenuItem(ctx context.Context, item models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
	GetMenuItem(ctx context.Context, id int64) (models.MenuItem, error)
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	// ReserveStock decrements quantity only if at least qty is on hand.
	ReserveStock(ctx context.Context, id int64, qty int) error
	RestoreStock(ctx context.Context, id int64, qty int) error
}

type InventoryRepository interface {
	CreateInventoryItem(ctx context.Context, item models.InventoryItem) (int64, error)
	SetInventoryQuantity(ctx context.Context, id int64, qty int) error
	DeleteInventoryItem(ctx context.Context, id int64) error
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer models.Customer) (int64, error)
	UpdateCustomer(ctx context.Context, customer models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CountCustomerOrders(ctx context.Context, customerID int64) (int, error)
	FindCustomerByPhone(ctx context.Context, phone string) (models.Customer, error)
}

type StaffRepository interface {
	CreateStaff(ctx context.Context, staff models.Staff) (int64, error)
	UpdateStaff(ctx context.Context, staff models.Staff) error
	DeleteStaff(ctx context.Context, id int64) error
	ListStaff(ctx context.Context) ([]models.Staff, error)
	CountStaff(ctx context.Context) (int, error)
}

// NewOrder is everything written when an order is placed.
// A zero Customer.ID means the customer row is created in the same transaction.
type NewOrder struct {
	Customer  models.Customer
	OrderDate time.Time
	Total     float64
	Status    models.OrderStatus
	Items     []models.OrderItem
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order NewOrder) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID int64) ([]models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error)
	OrderExists(ctx context.Context, id int64) (bool, error)
}

type Repository interface {
	UserRepository
	MenuRepository
	InventoryRepository
	CustomerRepository
	StaffRepository
	OrderRepository
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLRepository runs parameterized statements against MySQL or PostgreSQL.
type SQLRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db.DB, dialect: db.Dialect}
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

// insert returns the id of the new row.
func (r *SQLRepository) insert(ctx context.Context, db queryer, query string, args ...any) (int64, error) {
	if r.dialect.SupportsReturning() {
		var id int64
		err := db.QueryRowContext(ctx, r.q(query+" RETURNING id"), args...).Scan(&id)
		return id, translate(err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	return res.LastInsertId()
}

// execOne runs a single-row UPDATE/DELETE and maps zero affected rows to ErrNotFound.
func (r *SQLRepository) execOne(ctx context.Context, db queryer, query string, args ...any) error {
	res, err := db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.q(query), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// translate maps driver-specific errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return ErrDuplicate
		case 1451:
			return ErrReferenced
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrReferenced
		}
	}
	return err
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}
