package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "ordersapi/internal/config"
	"ordersapi/internal/domain"
	"ordersapi/internal/pagination"

	"github.com/google/uuid"
)

// OrderSortColumns maps exposed sort fields to order columns.
var OrderSortColumns = map[string]string{
	"status":        "status",
	"paymentMethod": "payment_method",
	"amount":        "amount",
}

// OrderFilter narrows list and report queries. Nil members impose no
// constraint; present members are ANDed.
type OrderFilter struct {
	CustomerID    *uuid.UUID
	Status        *domain.Status
	PaymentMethod *domain.PaymentMethod
}

type OrderRepository struct {
	DB *sql.DB
}

func (r OrderRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const orderColumns = `id, customer_id, amount, status, COALESCE(payment_method,''), created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var id, customerID, status, payment string
	if err := row.Scan(&id, &customerID, &o.Amount, &status, &payment, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	oid, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order id: %w", err)
	}
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order customer id: %w", err)
	}
	o.ID = oid
	o.CustomerID = cid
	o.Status = domain.Status(status)
	o.PaymentMethod = domain.PaymentMethod(payment)
	return o, nil
}

func (r OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id.String())

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFoundError{Resource: "order", ID: id.String()}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListPage returns one page of orders plus the total page count.
func (r OrderRepository) ListPage(ctx context.Context, page pagination.PageRequest) ([]domain.Order, int, error) {
	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	order := pagination.OrderByClause(page.Sort, OrderSortColumns)
	if order == "" {
		order = "created_at DESC"
	}

	rows, err := r.db().QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY `+order+` LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	list, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, totalPages(total, page.Size), nil
}

// FindByFilters returns one page of orders matching the filter.
func (r OrderRepository) FindByFilters(ctx context.Context, f OrderFilter, page pagination.PageRequest) ([]domain.Order, int, error) {
	where, args := filterClause(f, "")

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count filtered orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db().QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("filter orders: %w", err)
	}
	defer rows.Close()

	list, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, totalPages(total, page.Size), nil
}

func (r OrderRepository) Create(ctx context.Context, o domain.Order) error {
	_, err := r.db().ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, amount, status, payment_method, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		o.ID.String(), o.CustomerID.String(), o.Amount, string(o.Status), string(o.PaymentMethod))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r OrderRepository) Update(ctx context.Context, o domain.Order) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE orders SET amount = ?, status = ?, payment_method = ?, updated_at = NOW() WHERE id = ?`,
		o.Amount, string(o.Status), string(o.PaymentMethod), o.ID.String())
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "order", ID: o.ID.String()}
	}
	return nil
}

func (r OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "order", ID: id.String()}
	}
	return nil
}

// BulkInsert writes one batch of imported orders in a single statement.
// The whole batch fails atomically on any bad record.
func (r OrderRepository) BulkInsert(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO orders (id, customer_id, amount, status, payment_method, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(orders)*5)
	for i, o := range orders {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, NOW(), NOW())")
		args = append(args, o.ID.String(), o.CustomerID.String(), o.Amount, string(o.Status), string(o.PaymentMethod))
	}

	if _, err := r.db().ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("bulk insert orders: %w", err)
	}
	return nil
}

// ReportRows is a lazy cursor over joined order+customer rows.
// Callers must Close it on every exit path.
type ReportRows struct {
	rows    *sql.Rows
	current domain.ReportRow
	err     error
}

// Next advances the cursor. It returns false at exhaustion or on error;
// check Err afterwards to tell the two apart.
func (r *ReportRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	var orderID, customerID string
	err := r.rows.Scan(
		&orderID,
		&customerID,
		&r.current.CustomerName,
		&r.current.Email,
		&r.current.Amount,
		&r.current.Status,
		&r.current.PaymentMethod,
		&r.current.CreatedAt,
	)
	if err != nil {
		r.err = fmt.Errorf("scan report row: %w", err)
		return false
	}
	if r.current.OrderID, err = uuid.Parse(orderID); err != nil {
		r.err = fmt.Errorf("scan report order id: %w", err)
		return false
	}
	if r.current.CustomerID, err = uuid.Parse(customerID); err != nil {
		r.err = fmt.Errorf("scan report customer id: %w", err)
		return false
	}
	return true
}

// Row returns the record read by the last successful Next.
func (r *ReportRows) Row() domain.ReportRow {
	return r.current
}

func (r *ReportRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *ReportRows) Close() error {
	return r.rows.Close()
}

// StreamByFilters opens a lazy, creation-time-descending sequence over
// matching orders joined with their customers. The underlying cursor
// stays open until the returned ReportRows is closed.
func (r OrderRepository) StreamByFilters(ctx context.Context, f OrderFilter) (*ReportRows, error) {
	where, args := filterClause(f, "o.")

	query := `SELECT o.id, o.customer_id, CONCAT(c.first_name, ' ', c.last_name), COALESCE(c.email,''),
		o.amount, o.status, COALESCE(o.payment_method,''), o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id` + where + `
		ORDER BY o.created_at DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stream orders: %w", err)
	}
	return &ReportRows{rows: rows}, nil
}

func filterClause(f OrderFilter, prefix string) (string, []any) {
	var conds []string
	var args []any
	if f.CustomerID != nil {
		conds = append(conds, prefix+"customer_id = ?")
		args = append(args, f.CustomerID.String())
	}
	if f.Status != nil {
		conds = append(conds, prefix+"status = ?")
		args = append(args, string(*f.Status))
	}
	if f.PaymentMethod != nil {
		conds = append(conds, prefix+"payment_method = ?")
		args = append(args, string(*f.PaymentMethod))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	list := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return list, nil
}
