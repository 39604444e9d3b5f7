package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"canteen-service/models"
	"canteen-service/repository"
)

// EventPublisher receives order events after the store has accepted the change.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }

type OrderOptions struct {
	// DedupCustomersByPhone reuses an existing customer with the same phone
	// instead of inserting a new row per order.
	DedupCustomersByPhone bool
	// CartIdleTTL is how long an untouched cart keeps its reservations. Zero disables the sweep.
	CartIdleTTL time.Duration
	// OnRelease is told how many units went back to stock after each restore.
	OnRelease func(units int)
	Now       func() time.Time
}

type cart struct {
	lines   []models.CartLine
	updated time.Time
}

// OrderService owns the per-session carts and turns them into orders.
// Adding a line reserves stock in the store right away; discarding or
// expiring the cart gives it back.
type OrderService struct {
	menu      repository.MenuRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	events    EventPublisher
	opts      OrderOptions

	mu    sync.Mutex
	carts map[int64]*cart
}

func NewOrderService(repo repository.Repository, events EventPublisher, opts OrderOptions) *OrderService {
	if events == nil {
		events = nopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderService{
		menu:      repo,
		orders:    repo,
		customers: repo,
		events:    events,
		opts:      opts,
		carts:     make(map[int64]*cart),
	}
}

// AddLineToCart snapshots the item's name and price and reserves qty units.
// Adding the same item twice yields two lines.
func (s *OrderService) AddLineToCart(ctx context.Context, session models.Session, menuItemID int64, qty int) (models.CartLine, error) {
	if qty <= 0 {
		return models.CartLine{}, invalidf("quantity must be greater than zero")
	}

	what := fmt.Sprintf("menu item %d", menuItemID)
	item, err := s.menu.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return models.CartLine{}, storeErr(err, what)
	}
	if qty > item.Quantity {
		return models.CartLine{}, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, item.Name, item.Quantity)
	}
	if err := s.menu.ReserveStock(ctx, menuItemID, qty); err != nil {
		return models.CartLine{}, storeErr(err, what)
	}

	line := models.CartLine{
		MenuItemID: item.ID,
		ItemName:   item.Name,
		Quantity:   qty,
		UnitPrice:  item.Price,
	}

	s.mu.Lock()
	c, ok := s.carts[session.UserID]
	if !ok {
		c = &cart{}
		s.carts[session.UserID] = c
	}
	c.lines = append(c.lines, line)
	c.updated = s.opts.Now()
	s.mu.Unlock()

	return line, nil
}

// Cart returns a copy of the session's cart. An absent cart is empty.
func (s *OrderService) Cart(_ context.Context, session models.Session) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.Cart{Lines: []models.CartLine{}}
	if c, ok := s.carts[session.UserID]; ok {
		out.Lines = append(out.Lines, c.lines...)
		out.UpdatedAt = c.updated
	}
	out.Total = cartTotal(out.Lines)
	return out
}

// DiscardCart drops the cart and gives its reserved stock back. Lines whose
// stock could not be restored stay in the cart so the discard can be retried.
func (s *OrderService) DiscardCart(ctx context.Context, session models.Session) error {
	s.mu.Lock()
	c, ok := s.carts[session.UserID]
	delete(s.carts, session.UserID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.release(ctx, session.UserID, c)
}

// ReleaseIdleCarts discards every cart untouched for longer than the idle TTL
// and returns how many were released.
func (s *OrderService) ReleaseIdleCarts(ctx context.Context, now time.Time) int {
	if s.opts.CartIdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.CartIdleTTL)
	return s.releaseCarts(ctx, func(c *cart) bool { return c.updated.Before(cutoff) })
}

// ReleaseAllCarts discards every open cart. It runs on shutdown so reservations
// held only in memory are not lost.
func (s *OrderService) ReleaseAllCarts(ctx context.Context) int {
	return s.releaseCarts(ctx, func(*cart) bool { return true })
}

func (s *OrderService) releaseCarts(ctx context.Context, match func(*cart) bool) int {
	released := make(map[int64]*cart)
	s.mu.Lock()
	for userID, c := range s.carts {
		if match(c) {
			released[userID] = c
			delete(s.carts, userID)
		}
	}
	s.mu.Unlock()

	for userID, c := range released {
		if err := s.release(ctx, userID, c); err != nil {
			log.WithField("user_id", userID).WithError(err).Error("Failed to release cart")
		}
	}
	return len(released)
}

// release restores a detached cart and re-attaches whatever could not be restored.
func (s *OrderService) release(ctx context.Context, userID int64, c *cart) error {
	failed, err := s.restore(ctx, c.lines)
	if len(failed) > 0 {
		s.reattach(userID, &cart{lines: failed, updated: c.updated})
	}
	return err
}

// restore gives each line's stock back and returns the lines that failed.
// Lines of deleted menu items are skipped.
func (s *OrderService) restore(ctx context.Context, lines []models.CartLine) ([]models.CartLine, error) {
	var (
		failed   []models.CartLine
		errs     []error
		restored int
	)
	for _, line := range lines {
		err := s.menu.RestoreStock(ctx, line.MenuItemID, line.Quantity)
		switch {
		case err == nil:
			restored += line.Quantity
		case errors.Is(err, repository.ErrNotFound):
			log.WithFields(log.Fields{
				"menu_item_id": line.MenuItemID,
				"quantity":     line.Quantity,
			}).Warn("Menu item gone, reserved stock not restored")
		default:
			failed = append(failed, line)
			errs = append(errs, storeErr(err, fmt.Sprintf("menu item %d", line.MenuItemID)))
		}
	}
	if restored > 0 && s.opts.OnRelease != nil {
		s.opts.OnRelease(restored)
	}
	return failed, errors.Join(errs...)
}

// PlaceOrder writes the customer, the order and one line item per cart line
// in a single transaction, then clears the cart. On failure the cart and its
// reservations are kept.
func (s *OrderService) PlaceOrder(ctx context.Context, session models.Session, customerName, customerPhone string) (models.Order, error) {
	customer, err := checkCustomer(customerName, customerPhone)
	if err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	c, ok := s.carts[session.UserID]
	if !ok || len(c.lines) == 0 {
		s.mu.Unlock()
		return models.Order{}, invalidf("cart is empty")
	}
	// Detach the cart so a concurrent placement from the same session cannot reuse it.
	delete(s.carts, session.UserID)
	s.mu.Unlock()

	order, err := s.placeOrder(ctx, customer, c.lines)
	if err != nil {
		s.reattach(session.UserID, c)
		return models.Order{}, err
	}

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total":       order.TotalPrice,
		"lines":       len(order.Items),
	}).Info("Order placed")

	s.publish(ctx, models.OrderEvent{
		Type:       models.EventOrderPlaced,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Total:      order.TotalPrice,
		Items:      len(order.Items),
		Occurred:   order.OrderDate,
	})
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, customer models.Customer, lines []models.CartLine) (models.Order, error) {
	if s.opts.DedupCustomersByPhone {
		existing, err := s.customers.FindCustomerByPhone(ctx, customer.Phone)
		switch {
		case err == nil:
			customer = existing
		case !errors.Is(err, repository.ErrNotFound):
			return models.Order{}, storeErr(err, "customer")
		}
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}

	order, err := s.orders.CreateOrder(ctx, repository.NewOrder{
		Customer:  customer,
		OrderDate: s.opts.Now(),
		Total:     cartTotal(lines),
		Status:    models.OrderStatusPending,
		Items:     items,
	})
	if err != nil {
		return models.Order{}, storeErr(err, "order")
	}
	return order, nil
}

// reattach puts detached lines back, ahead of any lines added in the meantime.
func (s *OrderService) reattach(userID int64, c *cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.carts[userID]; ok {
		c.lines = append(c.lines, current.lines...)
		c.updated = current.updated
	}
	s.carts[userID] = c
}

// SetOrderStatus allows any transition between the known statuses.
func (s *OrderService) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if !status.Valid() {
		return invalidf("unknown status %q", status)
	}
	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return storeErr(err, fmt.Sprintf("order %d", orderID))
	}
	s.publish(ctx, models.OrderEvent{
		Type:     models.EventOrderStatusChanged,
		OrderID:  orderID,
		Status:   status,
		Occurred: s.opts.Now(),
	})
	return nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, storeErr(err, "orders")
	}
	return orders, nil
}

func (s *OrderService) GetOrderLineItems(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error) {
	what := fmt.Sprintf("order %d", orderID)
	exists, err := s.orders.OrderExists(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, what)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	items, err := s.orders.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, what)
	}
	return items, nil
}

func (s *OrderService) GetCustomerOrders(ctx context.Context, customerID int64) ([]models.Order, error) {
	orders, err := s.orders.ListCustomerOrders(ctx, customerID)
	if err != nil {
		return nil, storeErr(err, fmt.Sprintf("customer %d", customerID))
	}
	return orders, nil
}

func (s *OrderService) publish(ctx context.Context, event models.OrderEvent) {
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"event":    event.Type,
			"order_id": event.OrderID,
		}).WithError(err).Warn("Failed to publish order event")
	}
}

// cartTotal sums quantity times unit price in decimal and rounds to cents.
func cartTotal(lines []models.CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}
