package services

import (
	"context"
	"fmt"

	"canteen-service/models"
)

var defaultStaff = models.Staff{Name: "John Doe", Role: "Manager", Phone: "1234567890"}

// Bootstrap seeds the admin account and the first staff record on an empty store.
func Bootstrap(ctx context.Context, auth *AuthService, directory *DirectoryService, adminUser, adminPassword string) error {
	if err := auth.EnsureAdmin(ctx, adminUser, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := directory.EnsureStaff(ctx, defaultStaff); err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}
	return nil
}
