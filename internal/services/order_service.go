package services

import (
	"context"
	"fmt"

	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"
	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"

	"github.com/google/uuid"
)

type OrderService struct {
	Orders    repositories.OrderRepository
	Customers repositories.CustomerRepository
}

// OrderInput carries the writable order fields from the API.
// Status and PaymentMethod arrive as raw strings and are validated here.
type OrderInput struct {
	CustomerID    string
	Amount        float64
	Status        string
	PaymentMethod string
}

// OrderList is one page of orders plus the total page count.
type OrderList struct {
	Orders     []domain.Order
	TotalPages int
}

// OrderDetail pairs an order with its customer for detail responses.
type OrderDetail struct {
	Order    domain.Order
	Customer domain.Customer
}

// ListFilter is the request-level order filter: raw customer id plus
// optional status/payment strings and body-level paging.
type ListFilter struct {
	CustomerID    string
	Status        string
	PaymentMethod string
	Page          *int
	Size          *int
}

func (s OrderService) List(ctx context.Context, page pagination.PageRequest) (OrderList, error) {
	list, pages, err := s.Orders.ListPage(ctx, page)
	if err != nil {
		return OrderList{}, domain.InternalError{Msg: "failed to list orders", Err: err}
	}
	return OrderList{Orders: list, TotalPages: pages}, nil
}

func (s OrderService) GetByID(ctx context.Context, id uuid.UUID) (OrderDetail, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	c, err := s.Customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: o, Customer: c}, nil
}

func (s OrderService) Create(ctx context.Context, in OrderInput) (OrderDetail, error) {
	customerID, err := ParseRequiredUUID(in.CustomerID, "customerId")
	if err != nil {
		return OrderDetail{}, err
	}
	if in.Amount <= 0 {
		return OrderDetail{}, domain.ValidationError{Field: "amount", Msg: fmt.Sprintf("amount must be positive, got: %v", in.Amount)}
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return OrderDetail{}, err
	}
	payment, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return OrderDetail{}, err
	}

	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return OrderDetail{}, err
	}

	o := domain.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Amount:        in.Amount,
		Status:        status,
		PaymentMethod: payment,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return OrderDetail{}, domain.InternalError{Msg: "failed to create order", Err: err}
	}

	created, err := s.Orders.GetByID(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: created, Customer: customer}, nil
}

func (s OrderService) Update(ctx context.Context, id uuid.UUID, in OrderInput) (OrderDetail, error) {
	existing, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}

	if in.Amount <= 0 {
		return OrderDetail{}, domain.ValidationError{Field: "amount", Msg: fmt.Sprintf("amount must be positive, got: %v", in.Amount)}
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return OrderDetail{}, err
	}
	payment, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return OrderDetail{}, err
	}

	existing.Amount = in.Amount
	existing.Status = status
	existing.PaymentMethod = payment

	if err := s.Orders.Update(ctx, existing); err != nil {
		return OrderDetail{}, err
	}
	return s.GetByID(ctx, id)
}

func (s OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Orders.Delete(ctx, id)
}

// FilteredList resolves a request-level filter (raw strings, optional
// paging in the body) and returns the matching page.
func (s OrderService) FilteredList(ctx context.Context, f ListFilter) (OrderList, error) {
	repoFilter, err := s.resolveFilter(ctx, f.CustomerID, f.Status, f.PaymentMethod, true)
	if err != nil {
		return OrderList{}, err
	}

	page := pagination.PageRequest{Page: pagination.DefaultPage, Size: pagination.DefaultPageSize}
	if f.Page != nil {
		if *f.Page < 0 {
			return OrderList{}, domain.ValidationError{Field: "page", Msg: fmt.Sprintf("'page' must be >= 0, but got: %d", *f.Page)}
		}
		page.Page = *f.Page
	}
	if f.Size != nil {
		if *f.Size < 0 {
			return OrderList{}, domain.ValidationError{Field: "size", Msg: fmt.Sprintf("'size' must be >= 0, but got: %d", *f.Size)}
		}
		if *f.Size > 0 {
			page.Size = *f.Size
		}
	}

	list, pages, err := s.Orders.FindByFilters(ctx, repoFilter, page)
	if err != nil {
		return OrderList{}, domain.InternalError{Msg: "failed to filter orders", Err: err}
	}
	return OrderList{Orders: list, TotalPages: pages}, nil
}

// resolveFilter validates raw filter strings into a repository filter.
// checkCustomer controls whether a present customerId must exist.
func (s OrderService) resolveFilter(ctx context.Context, rawCustomerID, rawStatus, rawPayment string, checkCustomer bool) (repositories.OrderFilter, error) {
	var f repositories.OrderFilter

	if !utils.IsBlank(rawCustomerID) {
		id, err := ParseRequiredUUID(rawCustomerID, "customerId")
		if err != nil {
			return f, err
		}
		if checkCustomer {
			exists, err := s.Customers.ExistsByID(ctx, id)
			if err != nil {
				return f, domain.InternalError{Msg: "failed to check customer", Err: err}
			}
			if !exists {
				return f, domain.NotFoundError{Resource: "customer", ID: id.String()}
			}
		}
		f.CustomerID = &id
	}

	if !utils.IsBlank(rawStatus) {
		status, err := domain.ParseStatus(rawStatus)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	if !utils.IsBlank(rawPayment) {
		payment, err := domain.ParsePaymentMethod(rawPayment)
		if err != nil {
			return f, err
		}
		f.PaymentMethod = &payment
	}

	return f, nil
}

// ParseRequiredUUID rejects blank or malformed UUID strings with a
// field-level validation error.
func ParseRequiredUUID(raw, field string) (uuid.UUID, error) {
	raw = utils.TrimOrEmpty(raw)
	if raw == "" {
		return uuid.Nil, domain.ValidationError{Field: field, Msg: field + " is required"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ValidationError{Field: field, Msg: "invalid UUID format: " + raw}
	}
	return id, nil
}
