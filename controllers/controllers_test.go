package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-service/models"
	"canteen-service/repository"
	"canteen-service/services"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	repo   *repository.MemoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	auth := services.NewAuthService(repo)
	directory := services.NewDirectoryService(repo, repo)
	require.NoError(t, services.Bootstrap(context.Background(), auth, directory, "admin", "admin123"))

	h := &Handler{
		Auth:      auth,
		Catalog:   services.NewCatalogService(repo, repo),
		Directory: directory,
		Orders:    services.NewOrderService(repo, nil, services.OrderOptions{}),
		JWTSecret: testSecret,
	}
	return &testServer{router: NewRouter(h), repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) register(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "password": password, "confirm_password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(t, username, password)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "cashier", "password": "secret1", "confirm_password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "confirmation must match")

	token := s.register(t, "cashier", "secret1")
	assert.NotEmpty(t, token)

	w = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "cashier", "password": "secret2", "confirm_password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "Cashier", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	long := strings.Repeat("x", 80)
	w = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "waiter", "password": long, "confirm_password": long,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/menu", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/menu", "garbage", nil).Code)
}

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	staffToken := s.register(t, "cashier", "secret1")
	adminToken := s.login(t, "admin", "admin123")

	item := gin.H{"item_name": "Tea", "price": 1.5, "quantity": 10}
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/menu", staffToken, item).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/staff", staffToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/inventory", staffToken, nil).Code)

	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/menu", adminToken, item).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/menu", staffToken, nil).Code)

	w := s.do(t, http.MethodGet, "/api/staff", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	staff := decode[[]models.Staff](t, w)
	require.Len(t, staff, 1)
	assert.Equal(t, "John Doe", staff[0].Name)
}

func TestMenuValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	w := s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Tea", "price": -1, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/menu/99", admin, gin.H{"item_name": "Tea", "price": 1, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, "/api/menu/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissingQuantityIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	item := decode[models.MenuItem](t, s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Tea", "price": 1.5, "quantity": 10}))
	rice := decode[models.InventoryItem](t, s.do(t, http.MethodPost, "/api/inventory", admin, gin.H{"item_name": "Rice", "quantity": 20}))

	w := s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Coffee", "price": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/menu/%d", item.ID), admin, gin.H{"item_name": "Tea", "price": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/api/inventory", admin, gin.H{"item_name": "Dal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/inventory/%d", rice.ID), admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/inventory/%d", rice.ID), admin, gin.H{"qty": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/inventory/%d", rice.ID), admin, gin.H{"quantity": "five"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	menu := decode[[]models.MenuItem](t, s.do(t, http.MethodGet, "/api/menu", admin, nil))
	require.Len(t, menu, 1)
	assert.Equal(t, 10, menu[0].Quantity)
	inventory := decode[[]models.InventoryItem](t, s.do(t, http.MethodGet, "/api/inventory", admin, nil))
	require.Len(t, inventory, 1)
	assert.Equal(t, 20, inventory[0].Quantity)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/inventory/%d", rice.ID), admin, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusOK, w.Code, "an explicit zero is allowed")
}

func TestCartToOrderFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")
	cashier := s.register(t, "cashier", "secret1")

	a := decode[models.MenuItem](t, s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Dosa", "price": 5.0, "quantity": 10}))
	b := decode[models.MenuItem](t, s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Chai", "price": 3.0, "quantity": 10}))

	w := s.do(t, http.MethodPost, "/api/cart/lines", cashier, gin.H{"menu_item_id": a.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/cart/lines", cashier, gin.H{"menu_item_id": b.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/api/cart/lines", cashier, gin.H{"menu_item_id": b.ID, "quantity": 50})
	assert.Equal(t, http.StatusConflict, w.Code)

	cart := decode[models.Cart](t, s.do(t, http.MethodGet, "/api/cart", cashier, nil))
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 13.0, cart.Total)

	menu := decode[[]models.MenuItem](t, s.do(t, http.MethodGet, "/api/menu", cashier, nil))
	assert.Equal(t, 8, menu[0].Quantity)

	w = s.do(t, http.MethodPost, "/api/orders", cashier, gin.H{"customer_name": "Ann", "customer_phone": "12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders", cashier, gin.H{"customer_name": "Ann", "customer_phone": "1234567890"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.Order](t, w)
	assert.Equal(t, 13.0, order.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	items := decode[[]models.OrderItemDetail](t, s.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d/items", order.ID), cashier, nil))
	assert.Len(t, items, 2)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), cashier, gin.H{"status": "Completed"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), cashier, gin.H{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orders := decode[[]models.Order](t, s.do(t, http.MethodGet, "/api/orders", cashier, nil))
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusCompleted, orders[0].Status)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/customers/%d", order.CustomerID), cashier, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	history := decode[[]models.Order](t, s.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d/orders", order.CustomerID), cashier, nil))
	assert.Len(t, history, 1)
}

func TestDiscardCartAndLogoutRestoreStock(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")
	cashier := s.register(t, "cashier", "secret1")
	item := decode[models.MenuItem](t, s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Dosa", "price": 5.0, "quantity": 10}))

	stock := func() int {
		got, err := s.repo.GetMenuItem(context.Background(), item.ID)
		require.NoError(t, err)
		return got.Quantity
	}

	s.do(t, http.MethodPost, "/api/cart/lines", cashier, gin.H{"menu_item_id": item.ID, "quantity": 3})
	assert.Equal(t, 7, stock())
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/cart", cashier, nil).Code)
	assert.Equal(t, 10, stock())

	s.do(t, http.MethodPost, "/api/cart/lines", cashier, gin.H{"menu_item_id": item.ID, "quantity": 4})
	assert.Equal(t, 6, stock())
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/auth/logout", cashier, nil).Code)
	assert.Equal(t, 10, stock())
}

func TestPlaceOrderStorageFaultKeepsCart(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")
	item := decode[models.MenuItem](t, s.do(t, http.MethodPost, "/api/menu", admin, gin.H{"item_name": "Dosa", "price": 5.0, "quantity": 10}))

	s.do(t, http.MethodPost, "/api/cart/lines", admin, gin.H{"menu_item_id": item.ID, "quantity": 1})
	s.repo.SetOrderFailure(errors.New("connection refused"))

	w := s.do(t, http.MethodPost, "/api/orders", admin, gin.H{"customer_name": "Ann", "customer_phone": "1234567890"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	cart := decode[models.Cart](t, s.do(t, http.MethodGet, "/api/cart", admin, nil))
	assert.Len(t, cart.Lines, 1)
}

func TestCustomersAndInventory(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	w := s.do(t, http.MethodPost, "/api/customers", admin, gin.H{"name": "Bob", "phone": "12345abcde"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/api/customers", admin, gin.H{"name": "Bob", "phone": "0987654321"})
	require.Equal(t, http.StatusCreated, w.Code)
	bob := decode[models.Customer](t, w)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, fmt.Sprintf("/api/customers/%d", bob.ID), admin, nil).Code)

	w = s.do(t, http.MethodPost, "/api/inventory", admin, gin.H{"item_name": "Rice", "quantity": 20})
	require.Equal(t, http.StatusCreated, w.Code)
	rice := decode[models.InventoryItem](t, w)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/inventory/%d", rice.ID), admin, gin.H{"quantity": 12})
	assert.Equal(t, http.StatusOK, w.Code)

	inventory := decode[[]models.InventoryItem](t, s.do(t, http.MethodGet, "/api/inventory", admin, nil))
	require.Len(t, inventory, 1)
	assert.Equal(t, 12, inventory[0].Quantity)
}
