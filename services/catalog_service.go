package services

import (
	"context"
	"fmt"

	"canteen-service/models"
	"canteen-service/repository"
)

type CatalogService struct {
	menu      repository.MenuRepository
	inventory repository.InventoryRepository
}

func NewCatalogService(menu repository.MenuRepository, inventory repository.InventoryRepository) *CatalogService {
	return &CatalogService{menu: menu, inventory: inventory}
}

func checkMenuItem(name string, price float64, qty int) (string, error) {
	name, err := required("item name", name)
	if err != nil {
		return "", err
	}
	if price <= 0 {
		return "", invalidf("price must be greater than zero")
	}
	if qty < 0 {
		return "", invalidf("quantity must not be negative")
	}
	return name, nil
}

func (s *CatalogService) AddMenuItem(ctx context.Context, name string, price float64, qty int) (models.MenuItem, error) {
	name, err := checkMenuItem(name, price, qty)
	if err != nil {
		return models.MenuItem{}, err
	}
	item := models.MenuItem{Name: name, Price: price, Quantity: qty}
	item.ID, err = s.menu.CreateMenuItem(ctx, item)
	if err != nil {
		return models.MenuItem{}, storeErr(err, "menu item")
	}
	return item, nil
}

// UpdateMenuItem overwrites every field of the item.
func (s *CatalogService) UpdateMenuItem(ctx context.Context, id int64, name string, price float64, qty int) (models.MenuItem, error) {
	name, err := checkMenuItem(name, price, qty)
	if err != nil {
		return models.MenuItem{}, err
	}
	item := models.MenuItem{ID: id, Name: name, Price: price, Quantity: qty}
	if err := s.menu.UpdateMenuItem(ctx, item); err != nil {
		return models.MenuItem{}, storeErr(err, fmt.Sprintf("menu item %d", id))
	}
	return item, nil
}

// DeleteMenuItem does not look at past orders; their lines keep pointing at the old id.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, id int64) error {
	return storeErr(s.menu.DeleteMenuItem(ctx, id), fmt.Sprintf("menu item %d", id))
}

func (s *CatalogService) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.ListMenuItems(ctx)
	if err != nil {
		return nil, storeErr(err, "menu")
	}
	return items, nil
}

func (s *CatalogService) AddInventoryItem(ctx context.Context, name string, qty int) (models.InventoryItem, error) {
	name, err := required("item name", name)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if qty < 0 {
		return models.InventoryItem{}, invalidf("quantity must not be negative")
	}
	item := models.InventoryItem{Name: name, Quantity: qty}
	item.ID, err = s.inventory.CreateInventoryItem(ctx, item)
	if err != nil {
		return models.InventoryItem{}, storeErr(err, "inventory item")
	}
	return item, nil
}

// UpdateInventoryItem sets the counted quantity.
func (s *CatalogService) UpdateInventoryItem(ctx context.Context, id int64, qty int) error {
	if qty < 0 {
		return invalidf("quantity must not be negative")
	}
	return storeErr(s.inventory.SetInventoryQuantity(ctx, id, qty), fmt.Sprintf("inventory item %d", id))
}

func (s *CatalogService) DeleteInventoryItem(ctx context.Context, id int64) error {
	return storeErr(s.inventory.DeleteInventoryItem(ctx, id), fmt.Sprintf("inventory item %d", id))
}

func (s *CatalogService) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, storeErr(err, "inventory")
	}
	return items, nil
}
