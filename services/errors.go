package services

import (
	"errors"
	"fmt"

	"canteen-service/repository"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrHasOrders          = errors.New("customer has orders")
	ErrNotFound           = errors.New("not found")
	ErrStorageFault       = errors.New("storage fault")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeErr maps a repository error onto the service taxonomy. what names the
// record involved, e.g. "menu item 3".
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrInsufficientStock):
		return fmt.Errorf("%w: %s", ErrInsufficientStock, what)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorageFault, what, err)
	}
}
