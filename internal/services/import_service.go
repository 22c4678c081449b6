package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ordersapi/internal/domain"
	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"

	"github.com/google/uuid"
)

const (
	// importMaxBytes caps the declared upload size at 10 MiB.
	importMaxBytes = 10 * 1024 * 1024
	// importBatchSize bounds how many validated orders are pending
	// before a bulk write. Flush at the threshold, flush the remainder
	// at the end.
	importBatchSize = 50
)

type ImportService struct {
	Orders    repositories.OrderRepository
	Customers repositories.CustomerRepository

	// Test seams; when nil the repositories above are used.
	CustomerExists func(ctx context.Context, id uuid.UUID) (bool, error)
	SaveBatch      func(ctx context.Context, orders []domain.Order) error
}

// orderImportRecord is one raw element of the uploaded JSON array,
// prior to validation.
type orderImportRecord struct {
	CustomerID    string   `json:"customerId"`
	Amount        *float64 `json:"amount"`
	Status        string   `json:"status"`
	PaymentMethod string   `json:"paymentMethod"`
}

// ImportOrders streams a JSON array of orders from r, validating each
// record independently and persisting valid ones in bounded batches.
// Per-record failures become ImportError entries and never abort the
// run; a bulk-write failure does abort it, and batches flushed before
// that point stay persisted.
func (s ImportService) ImportOrders(ctx context.Context, r io.Reader, filename string, size int64) (domain.ImportResult, error) {
	if err := validateUpload(filename, size); err != nil {
		return domain.ImportResult{}, err
	}

	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return domain.ImportResult{}, domain.ValidationError{Field: "file", Msg: "expected JSON array at root level", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return domain.ImportResult{}, domain.ValidationError{Field: "file", Msg: "expected JSON array at root level"}
	}

	var (
		errs    []domain.ImportError
		pending []domain.Order
		line    int
		success int
	)

	for dec.More() {
		line++

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			// The stream itself is broken; positions past this point
			// are unrecoverable.
			return domain.ImportResult{}, domain.ValidationError{
				Field: "file",
				Msg:   fmt.Sprintf("malformed JSON at record %d", line),
				Err:   err,
			}
		}

		var rec orderImportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, domain.ImportError{
				LineNumber: line,
				Reason:     "Parse error",
				Details:    err.Error(),
			})
			continue
		}

		order, importErr, err := s.buildOrder(ctx, rec, line)
		if err != nil {
			return domain.ImportResult{}, err
		}
		if importErr != nil {
			errs = append(errs, *importErr)
			continue
		}

		pending = append(pending, order)
		success++

		if len(pending) >= importBatchSize {
			if err := s.saveBatch(ctx, pending); err != nil {
				return domain.ImportResult{}, domain.InternalError{Msg: "failed to save order batch", Err: err}
			}
			pending = pending[:0]
		}
	}

	// Consume the closing bracket. Bytes after the array are never read,
	// so trailing content is ignored rather than rejected.
	if _, err := dec.Token(); err != nil {
		return domain.ImportResult{}, domain.ValidationError{Field: "file", Msg: "malformed JSON array", Err: err}
	}

	if len(pending) > 0 {
		if err := s.saveBatch(ctx, pending); err != nil {
			return domain.ImportResult{}, domain.InternalError{Msg: "failed to save order batch", Err: err}
		}
	}

	result := domain.ImportResult{
		TotalRecords:      line,
		SuccessfulImports: success,
		FailedImports:     line - success,
		Errors:            errs,
	}
	utils.LogEvent("", "import", "completed",
		fmt.Sprintf("total=%d successful=%d failed=%d", result.TotalRecords, result.SuccessfulImports, result.FailedImports))
	return result, nil
}

// buildOrder validates one parsed record in fixed order, stopping at
// the first failure. The returned error is reserved for infrastructure
// failures (customer lookup), which abort the run.
func (s ImportService) buildOrder(ctx context.Context, rec orderImportRecord, line int) (domain.Order, *domain.ImportError, error) {
	fail := func(reason, details string) (domain.Order, *domain.ImportError, error) {
		return domain.Order{}, &domain.ImportError{LineNumber: line, Reason: reason, Details: details}, nil
	}

	if utils.IsBlank(rec.CustomerID) {
		return fail("Missing customer ID", "customerId is required")
	}
	if rec.Amount == nil || *rec.Amount <= 0 {
		detail := "Amount must be positive, got: null"
		if rec.Amount != nil {
			detail = fmt.Sprintf("Amount must be positive, got: %v", *rec.Amount)
		}
		return fail("Invalid amount", detail)
	}
	if utils.IsBlank(rec.Status) {
		return fail("Missing status", "status is required")
	}

	customerID, err := uuid.Parse(strings.TrimSpace(rec.CustomerID))
	if err != nil {
		return fail("Invalid customer ID format", "Expected UUID, got: "+rec.CustomerID)
	}

	exists, err := s.customerExists(ctx, customerID)
	if err != nil {
		return domain.Order{}, nil, domain.InternalError{Msg: "failed to look up customer", Err: err}
	}
	if !exists {
		return fail("Customer not found", "No customer with ID: "+customerID.String())
	}

	status, err := domain.ParseStatus(rec.Status)
	if err != nil {
		return fail("Invalid status", "Unknown status: "+rec.Status)
	}
	payment, err := domain.ParsePaymentMethod(rec.PaymentMethod)
	if err != nil {
		return fail("Invalid payment method", "Unknown payment method: "+rec.PaymentMethod)
	}

	return domain.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Amount:        *rec.Amount,
		Status:        status,
		PaymentMethod: payment,
	}, nil, nil
}

// validateUpload checks the upload envelope before any parsing: empty
// files, non-JSON names and oversized declarations are rejected outright.
func validateUpload(filename string, size int64) error {
	if size == 0 {
		return domain.ValidationError{Field: "file", Msg: "uploaded file is empty"}
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json") {
		return domain.ValidationError{Field: "file", Msg: "only JSON files are allowed"}
	}
	if size > importMaxBytes {
		return domain.ValidationError{Field: "file", Msg: "file size exceeds maximum allowed size of 10MB"}
	}
	return nil
}

func (s ImportService) customerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.CustomerExists != nil {
		return s.CustomerExists(ctx, id)
	}
	return s.Customers.ExistsByID(ctx, id)
}

func (s ImportService) saveBatch(ctx context.Context, orders []domain.Order) error {
	if s.SaveBatch != nil {
		return s.SaveBatch(ctx, orders)
	}
	return s.Orders.BulkInsert(ctx, orders)
}
