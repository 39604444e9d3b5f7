package repository

import (
	"context"
	"sort"
	"sync"

	"canteen-service/models"
)

// MemoryRepository keeps every table in process memory. It backs the "memory"
// driver for demos and the service and controller tests.
type MemoryRepository struct {
	mu sync.RWMutex

	nextID     map[string]int64
	users      map[int64]models.User
	menu       map[int64]models.MenuItem
	inventory  map[int64]models.InventoryItem
	customers  map[int64]models.Customer
	staff      map[int64]models.Staff
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem

	orderFailure   error
	restoreFailure error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:     make(map[string]int64),
		users:      make(map[int64]models.User),
		menu:       make(map[int64]models.MenuItem),
		inventory:  make(map[int64]models.InventoryItem),
		customers:  make(map[int64]models.Customer),
		staff:      make(map[int64]models.Staff),
		orders:     make(map[int64]models.Order),
		orderItems: make(map[int64]models.OrderItem),
	}
}

// SetOrderFailure makes CreateOrder fail with err until cleared with nil.
func (m *MemoryRepository) SetOrderFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderFailure = err
}

// SetRestoreFailure makes RestoreStock fail with err until cleared with nil.
func (m *MemoryRepository) SetRestoreFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreFailure = err
}

func (m *MemoryRepository) id(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

func sortedIDs[T any](rows map[int64]T) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// users

func (m *MemoryRepository) CreateUser(_ context.Context, user models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return 0, ErrDuplicate
		}
	}
	user.ID = m.id("users")
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *MemoryRepository) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *MemoryRepository) HasAdmin(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}

// menu

func (m *MemoryRepository) CreateMenuItem(_ context.Context, item models.MenuItem) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id("menu")
	m.menu[item.ID] = item
	return item.ID, nil
}

func (m *MemoryRepository) UpdateMenuItem(_ context.Context, item models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menu[item.ID]; !ok {
		return ErrNotFound
	}
	m.menu[item.ID] = item
	return nil
}

func (m *MemoryRepository) DeleteMenuItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menu[id]; !ok {
		return ErrNotFound
	}
	delete(m.menu, id)
	return nil
}

func (m *MemoryRepository) GetMenuItem(_ context.Context, id int64) (models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.menu[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (m *MemoryRepository) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.MenuItem, 0, len(m.menu))
	for _, id := range sortedIDs(m.menu) {
		items = append(items, m.menu[id])
	}
	return items, nil
}

func (m *MemoryRepository) ReserveStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.menu[id]
	if !ok {
		return ErrNotFound
	}
	if item.Quantity < qty {
		return ErrInsufficientStock
	}
	item.Quantity -= qty
	m.menu[id] = item
	return nil
}

func (m *MemoryRepository) RestoreStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.restoreFailure != nil {
		return m.restoreFailure
	}
	item, ok := m.menu[id]
	if !ok {
		return ErrNotFound
	}
	item.Quantity += qty
	m.menu[id] = item
	return nil
}

// inventory

func (m *MemoryRepository) CreateInventoryItem(_ context.Context, item models.InventoryItem) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id("inventory")
	m.inventory[item.ID] = item
	return item.ID, nil
}

func (m *MemoryRepository) SetInventoryQuantity(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.inventory[id]
	if !ok {
		return ErrNotFound
	}
	item.Quantity = qty
	m.inventory[id] = item
	return nil
}

func (m *MemoryRepository) DeleteInventoryItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[id]; !ok {
		return ErrNotFound
	}
	delete(m.inventory, id)
	return nil
}

func (m *MemoryRepository) ListInventory(_ context.Context) ([]models.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.InventoryItem, 0, len(m.inventory))
	for _, id := range sortedIDs(m.inventory) {
		items = append(items, m.inventory[id])
	}
	return items, nil
}

// customers

func (m *MemoryRepository) CreateCustomer(_ context.Context, c models.Customer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id("customers")
	m.customers[c.ID] = c
	return c.ID, nil
}

func (m *MemoryRepository) UpdateCustomer(_ context.Context, c models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return ErrNotFound
	}
	m.customers[c.ID] = c
	return nil
}

func (m *MemoryRepository) DeleteCustomer(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return ErrNotFound
	}
	for _, o := range m.orders {
		if o.CustomerID == id {
			return ErrReferenced
		}
	}
	delete(m.customers, id)
	return nil
}

func (m *MemoryRepository) ListCustomers(_ context.Context) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customers := make([]models.Customer, 0, len(m.customers))
	for _, id := range sortedIDs(m.customers) {
		customers = append(customers, m.customers[id])
	}
	return customers, nil
}

func (m *MemoryRepository) CountCustomerOrders(_ context.Context, customerID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) FindCustomerByPhone(_ context.Context, phone string) (models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.customers) {
		if c := m.customers[id]; c.Phone == phone {
			return c, nil
		}
	}
	return models.Customer{}, ErrNotFound
}

// staff

func (m *MemoryRepository) CreateStaff(_ context.Context, s models.Staff) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id("staff")
	m.staff[s.ID] = s
	return s.ID, nil
}

func (m *MemoryRepository) UpdateStaff(_ context.Context, s models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[s.ID]; !ok {
		return ErrNotFound
	}
	m.staff[s.ID] = s
	return nil
}

func (m *MemoryRepository) DeleteStaff(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[id]; !ok {
		return ErrNotFound
	}
	delete(m.staff, id)
	return nil
}

func (m *MemoryRepository) ListStaff(_ context.Context) ([]models.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	staff := make([]models.Staff, 0, len(m.staff))
	for _, id := range sortedIDs(m.staff) {
		staff = append(staff, m.staff[id])
	}
	return staff, nil
}

func (m *MemoryRepository) CountStaff(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.staff), nil
}

// orders

func (m *MemoryRepository) CreateOrder(_ context.Context, no NewOrder) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orderFailure != nil {
		return models.Order{}, m.orderFailure
	}

	customer := no.Customer
	if customer.ID == 0 {
		customer.ID = m.id("customers")
		m.customers[customer.ID] = customer
	} else if _, ok := m.customers[customer.ID]; !ok {
		return models.Order{}, ErrNotFound
	}

	order := models.Order{
		ID:           m.id("orders"),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		OrderDate:    no.OrderDate,
		TotalPrice:   no.Total,
		Status:       no.Status,
	}
	for _, item := range no.Items {
		item.ID = m.id("order_items")
		item.OrderID = order.ID
		m.orderItems[item.ID] = item
		order.Items = append(order.Items, item)
	}
	stored := order
	stored.Items = nil
	m.orders[order.ID] = stored
	return order, nil
}

func (m *MemoryRepository) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *MemoryRepository) ListOrders(_ context.Context) ([]models.Order, error) {
	return m.filterOrders(func(models.Order) bool { return true }), nil
}

func (m *MemoryRepository) ListCustomerOrders(_ context.Context, customerID int64) ([]models.Order, error) {
	return m.filterOrders(func(o models.Order) bool { return o.CustomerID == customerID }), nil
}

func (m *MemoryRepository) filterOrders(keep func(models.Order) bool) []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := []models.Order{}
	for _, id := range sortedIDs(m.orders) {
		o := m.orders[id]
		if !keep(o) {
			continue
		}
		if c, ok := m.customers[o.CustomerID]; ok {
			o.CustomerName = c.Name
		} else {
			o.CustomerName = ""
		}
		orders = append(orders, o)
	}
	return orders
}

func (m *MemoryRepository) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItemDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []models.OrderItemDetail{}
	for _, id := range sortedIDs(m.orderItems) {
		oi := m.orderItems[id]
		if oi.OrderID != orderID {
			continue
		}
		d := models.OrderItemDetail{ID: oi.ID, MenuItemID: oi.MenuItemID, Quantity: oi.Quantity}
		if menuItem, ok := m.menu[oi.MenuItemID]; ok {
			d.ItemName = menuItem.Name
			d.Price = menuItem.Price
		}
		d.Subtotal = d.Price * float64(d.Quantity)
		items = append(items, d)
	}
	return items, nil
}

func (m *MemoryRepository) OrderExists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.orders[id]
	return ok, nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*SQLRepository)(nil)
)
