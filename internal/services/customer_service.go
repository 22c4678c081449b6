package services

import (
	"context"

	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"
	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"

	"github.com/google/uuid"
)

type CustomerService struct {
	Customers repositories.CustomerRepository
}

// CustomerInput carries the writable customer fields from the API.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	City      string
}

// CustomerList is one page of customers plus the total page count.
type CustomerList struct {
	Customers  []domain.Customer
	TotalPages int
}

func (s CustomerService) List(ctx context.Context, page pagination.PageRequest) (CustomerList, error) {
	list, pages, err := s.Customers.ListPage(ctx, page)
	if err != nil {
		return CustomerList{}, domain.InternalError{Msg: "failed to list customers", Err: err}
	}
	return CustomerList{Customers: list, TotalPages: pages}, nil
}

func (s CustomerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return s.Customers.GetByID(ctx, id)
}

func (s CustomerService) Create(ctx context.Context, in CustomerInput) (domain.Customer, error) {
	email := utils.TrimOrEmpty(in.Email)

	exists, err := s.Customers.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.Customer{}, domain.InternalError{Msg: "failed to check customer email", Err: err}
	}
	if exists {
		return domain.Customer{}, domain.ConflictError{
			Resource: "customer",
			Msg:      "customer with email '" + email + "' already exists",
		}
	}

	c := domain.Customer{
		ID:        uuid.New(),
		FirstName: utils.TrimOrEmpty(in.FirstName),
		LastName:  utils.TrimOrEmpty(in.LastName),
		Email:     email,
		City:      utils.TrimOrEmpty(in.City),
	}
	if err := s.Customers.Create(ctx, c); err != nil {
		return domain.Customer{}, domain.InternalError{Msg: "failed to create customer", Err: err}
	}
	return s.Customers.GetByID(ctx, c.ID)
}

func (s CustomerService) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (domain.Customer, error) {
	existing, err := s.Customers.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	existing.FirstName = utils.TrimOrEmpty(in.FirstName)
	existing.LastName = utils.TrimOrEmpty(in.LastName)
	existing.Email = utils.TrimOrEmpty(in.Email)
	existing.City = utils.TrimOrEmpty(in.City)

	if err := s.Customers.Update(ctx, existing); err != nil {
		return domain.Customer{}, err
	}
	return s.Customers.GetByID(ctx, id)
}

func (s CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Customers.Delete(ctx, id)
}
