package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"canteen-service/models"
	"canteen-service/repository"
)

type DirectoryService struct {
	customers repository.CustomerRepository
	staff     repository.StaffRepository
}

func NewDirectoryService(customers repository.CustomerRepository, staff repository.StaffRepository) *DirectoryService {
	return &DirectoryService{customers: customers, staff: staff}
}

func checkCustomer(name, phone string) (models.Customer, error) {
	name, err := required("name", name)
	if err != nil {
		return models.Customer{}, err
	}
	phone, err = checkPhone(phone)
	if err != nil {
		return models.Customer{}, err
	}
	return models.Customer{Name: name, Phone: phone}, nil
}

func (s *DirectoryService) AddCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	c, err := checkCustomer(name, phone)
	if err != nil {
		return models.Customer{}, err
	}
	c.ID, err = s.customers.CreateCustomer(ctx, c)
	if err != nil {
		return models.Customer{}, storeErr(err, "customer")
	}
	return c, nil
}

func (s *DirectoryService) UpdateCustomer(ctx context.Context, id int64, name, phone string) (models.Customer, error) {
	c, err := checkCustomer(name, phone)
	if err != nil {
		return models.Customer{}, err
	}
	c.ID = id
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		return models.Customer{}, storeErr(err, fmt.Sprintf("customer %d", id))
	}
	return c, nil
}

// DeleteCustomer refuses while any order still references the customer.
func (s *DirectoryService) DeleteCustomer(ctx context.Context, id int64) error {
	n, err := s.customers.CountCustomerOrders(ctx, id)
	if err != nil {
		return storeErr(err, fmt.Sprintf("customer %d", id))
	}
	if n > 0 {
		return fmt.Errorf("%w: customer %d has %d order(s)", ErrHasOrders, id, n)
	}
	err = s.customers.DeleteCustomer(ctx, id)
	if errors.Is(err, repository.ErrReferenced) {
		// an order arrived after the count
		return fmt.Errorf("%w: customer %d", ErrHasOrders, id)
	}
	return storeErr(err, fmt.Sprintf("customer %d", id))
}

func (s *DirectoryService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, storeErr(err, "customers")
	}
	return customers, nil
}

func checkStaff(name, role, phone string) (models.Staff, error) {
	name, err := required("name", name)
	if err != nil {
		return models.Staff{}, err
	}
	role, err = required("role", role)
	if err != nil {
		return models.Staff{}, err
	}
	phone, err = checkPhone(phone)
	if err != nil {
		return models.Staff{}, err
	}
	return models.Staff{Name: name, Role: role, Phone: phone}, nil
}

func (s *DirectoryService) AddStaff(ctx context.Context, name, role, phone string) (models.Staff, error) {
	st, err := checkStaff(name, role, phone)
	if err != nil {
		return models.Staff{}, err
	}
	st.ID, err = s.staff.CreateStaff(ctx, st)
	if err != nil {
		return models.Staff{}, storeErr(err, "staff")
	}
	return st, nil
}

func (s *DirectoryService) UpdateStaff(ctx context.Context, id int64, name, role, phone string) (models.Staff, error) {
	st, err := checkStaff(name, role, phone)
	if err != nil {
		return models.Staff{}, err
	}
	st.ID = id
	if err := s.staff.UpdateStaff(ctx, st); err != nil {
		return models.Staff{}, storeErr(err, fmt.Sprintf("staff %d", id))
	}
	return st, nil
}

func (s *DirectoryService) DeleteStaff(ctx context.Context, id int64) error {
	return storeErr(s.staff.DeleteStaff(ctx, id), fmt.Sprintf("staff %d", id))
}

func (s *DirectoryService) ListStaff(ctx context.Context) ([]models.Staff, error) {
	staff, err := s.staff.ListStaff(ctx)
	if err != nil {
		return nil, storeErr(err, "staff")
	}
	return staff, nil
}

// EnsureStaff inserts st only when the staff table is empty.
func (s *DirectoryService) EnsureStaff(ctx context.Context, st models.Staff) error {
	n, err := s.staff.CountStaff(ctx)
	if err != nil {
		return storeErr(err, "staff")
	}
	if n > 0 {
		return nil
	}
	if _, err := s.AddStaff(ctx, st.Name, st.Role, st.Phone); err != nil {
		return err
	}
	log.WithFields(log.Fields{"name": st.Name, "role": st.Role}).Info("Seeded staff record")
	return nil
}
