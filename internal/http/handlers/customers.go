package handlers

import (
	"net/http"
	"time"

	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"
	"ordersapi/internal/services"

	"github.com/gin-gonic/gin"
)

// customerSortConstraint fixes which sort fields the customer list accepts.
var customerSortConstraint = pagination.Constraint{
	Whitelist: []string{"firstName", "lastName", "city"},
}

type customerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	City      string `json:"city"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		City:      c.City,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func GetCustomers(c *gin.Context) {
	page, err := pagination.ValidatePageable(
		c.Query("page"), c.Query("size"), c.QueryArray("sort"), customerSortConstraint)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.CustomerService{}
	list, err := svc.List(c.Request.Context(), page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]customerResponse, 0, len(list.Customers))
	for _, cust := range list.Customers {
		out = append(out, toCustomerResponse(cust))
	}
	c.JSON(http.StatusOK, gin.H{"content": out, "totalPages": list.TotalPages})
}

func GetCustomerByID(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.CustomerService{}
	cust, err := svc.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(cust))
}

func CreateCustomer(c *gin.Context) {
	var req customerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.CustomerService{}
	cust, err := svc.Create(c.Request.Context(), services.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(cust))
}

func UpdateCustomer(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var req customerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.CustomerService{}
	cust, err := svc.Update(c.Request.Context(), id, services.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(cust))
}

func DeleteCustomer(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.CustomerService{}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
