package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "ordersapi/internal/config"
	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"

	"github.com/google/uuid"
)

// CustomerSortColumns maps exposed sort fields to customer columns.
var CustomerSortColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"city":      "city",
}

type CustomerRepository struct {
	DB *sql.DB
}

func (r CustomerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const customerColumns = `id, first_name, last_name, COALESCE(email,''), COALESCE(city,''), created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer
	var id string
	if err := row.Scan(&id, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Customer{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("scan customer id: %w", err)
	}
	c.ID = parsed
	return c, nil
}

func (r CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id.String())

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.NotFoundError{Resource: "customer", ID: id.String()}
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r CustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := r.db().QueryRowContext(ctx,
		`SELECT 1 FROM customers WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("customer exists: %w", err)
	}
	return true, nil
}

func (r CustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db().QueryRowContext(ctx,
		`SELECT 1 FROM customers WHERE email = ?`, email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("customer exists by email: %w", err)
	}
	return true, nil
}

// ListPage returns one page of customers plus the total page count.
func (r CustomerRepository) ListPage(ctx context.Context, page pagination.PageRequest) ([]domain.Customer, int, error) {
	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	order := pagination.OrderByClause(page.Sort, CustomerSortColumns)
	if order == "" {
		order = "created_at DESC"
	}

	rows, err := r.db().QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY `+order+` LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	list := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", err)
	}

	return list, totalPages(total, page.Size), nil
}

func (r CustomerRepository) Create(ctx context.Context, c domain.Customer) error {
	_, err := r.db().ExecContext(ctx,
		`INSERT INTO customers (id, first_name, last_name, email, city, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		c.ID.String(), c.FirstName, c.LastName, c.Email, c.City)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r CustomerRepository) Update(ctx context.Context, c domain.Customer) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE customers SET first_name = ?, last_name = ?, email = ?, city = ?, updated_at = NOW()
		 WHERE id = ?`,
		c.FirstName, c.LastName, c.Email, c.City, c.ID.String())
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "customer", ID: c.ID.String()}
	}
	return nil
}

// Delete removes the customer; orders cascade at the schema level.
func (r CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "customer", ID: id.String()}
	}
	return nil
}

func totalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
