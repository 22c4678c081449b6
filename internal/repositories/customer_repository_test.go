package repositories

import (
	"context"
	"testing"
	"time"

	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var customerTestID = uuid.MustParse("2f1c4a9e-5d3b-4e8a-b6c1-9d0e7f2a0001")

func customerTestColumns() []string {
	return []string{"id", "first_name", "last_name", "email", "city", "created_at", "updated_at"}
}

func TestCustomerGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM customers WHERE id").WithArgs(customerTestID.String()).
		WillReturnRows(sqlmock.NewRows(customerTestColumns()).
			AddRow(customerTestID.String(), "Alice", "Doe", "alice@example.com", "Berlin", now, now))

	repo := CustomerRepository{DB: db}
	c, err := repo.GetByID(context.Background(), customerTestID)
	if err != nil {
		t.Fatalf("get customer error: %v", err)
	}
	if c.ID != customerTestID || c.FirstName != "Alice" || c.Email != "alice@example.com" {
		t.Fatalf("unexpected customer: %+v", c)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCustomerGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(customerTestID.String()).
		WillReturnRows(sqlmock.NewRows(customerTestColumns()))

	repo := CustomerRepository{DB: db}
	_, err = repo.GetByID(context.Background(), customerTestID)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerListPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery("FROM customers ORDER BY first_name ASC LIMIT").WithArgs(5, 5).
		WillReturnRows(sqlmock.NewRows(customerTestColumns()).
			AddRow(customerTestID.String(), "Alice", "Doe", "alice@example.com", "Berlin", now, now))

	repo := CustomerRepository{DB: db}
	page := pagination.PageRequest{
		Page: 1,
		Size: 5,
		Sort: []pagination.SortTerm{{Field: "firstName", Direction: pagination.Asc}},
	}
	list, pages, err := repo.ListPage(context.Background(), page)
	if err != nil {
		t.Fatalf("list customers error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(list))
	}
	if pages != 3 {
		t.Fatalf("total pages = %d, want 3", pages)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCustomerUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE customers SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := CustomerRepository{DB: db}
	err = repo.Update(context.Background(), domain.Customer{ID: customerTestID, FirstName: "A"})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM customers").WithArgs(customerTestID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := CustomerRepository{DB: db}
	if err := repo.Delete(context.Background(), customerTestID); err != nil {
		t.Fatalf("delete customer error: %v", err)
	}
}

func TestCustomerExistsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM customers WHERE email").WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM customers WHERE email").WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := CustomerRepository{DB: db}
	if ok, err := repo.ExistsByEmail(context.Background(), "alice@example.com"); err != nil || !ok {
		t.Fatalf("expected exists, got ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsByEmail(context.Background(), "bob@example.com"); err != nil || ok {
		t.Fatalf("expected missing, got ok=%v err=%v", ok, err)
	}
}
