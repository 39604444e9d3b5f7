package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-service/models"
)

func TestMemory_ReserveAndRestoreStock(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	id, err := repo.CreateMenuItem(ctx, models.MenuItem{Name: "Tea", Price: 1.5, Quantity: 10})
	require.NoError(t, err)

	require.NoError(t, repo.ReserveStock(ctx, id, 3))
	assert.ErrorIs(t, repo.ReserveStock(ctx, id, 8), ErrInsufficientStock)
	assert.ErrorIs(t, repo.ReserveStock(ctx, id+1, 1), ErrNotFound)

	item, err := repo.GetMenuItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)

	require.NoError(t, repo.RestoreStock(ctx, id, 3))
	item, _ = repo.GetMenuItem(ctx, id)
	assert.Equal(t, 10, item.Quantity)
}

func TestMemory_CreateOrderIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.SetOrderFailure(errors.New("store offline"))

	_, err := repo.CreateOrder(ctx, NewOrder{
		Customer: models.Customer{Name: "Ann", Phone: "1234567890"},
		Status:   models.OrderStatusPending,
		Items:    []models.OrderItem{{MenuItemID: 1, Quantity: 1}},
	})
	require.Error(t, err)

	customers, _ := repo.ListCustomers(ctx)
	orders, _ := repo.ListOrders(ctx)
	assert.Empty(t, customers)
	assert.Empty(t, orders)

	repo.SetOrderFailure(nil)
	order, err := repo.CreateOrder(ctx, NewOrder{
		Customer: models.Customer{Name: "Ann", Phone: "1234567890"},
		Status:   models.OrderStatusPending,
		Items:    []models.OrderItem{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	n, _ := repo.CountCustomerOrders(ctx, order.CustomerID)
	assert.Equal(t, 1, n)
}

func TestMemory_DuplicateUsernameIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.CreateUser(ctx, models.User{Username: "admin"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, models.User{Username: "admin"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = repo.CreateUser(ctx, models.User{Username: "Admin"})
	assert.NoError(t, err)
}

func TestMemory_ListsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, name := range []string{"Tea", "Coffee", "Samosa"} {
		_, err := repo.CreateMenuItem(ctx, models.MenuItem{Name: name, Price: 1, Quantity: 1})
		require.NoError(t, err)
	}

	items, err := repo.ListMenuItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Tea", items[0].Name)
	assert.Equal(t, "Samosa", items[2].Name)
}
