package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ordersapi/internal/domain"

	"github.com/google/uuid"
)

var importTestCustomerID = uuid.MustParse("7a9f2d7e-3f25-4c25-9c2b-0b7f1f0a1234")

func importServiceForTest(exists bool, saved *[][]domain.Order) ImportService {
	return ImportService{
		CustomerExists: func(ctx context.Context, id uuid.UUID) (bool, error) {
			return exists, nil
		},
		SaveBatch: func(ctx context.Context, orders []domain.Order) error {
			if saved != nil {
				batch := make([]domain.Order, len(orders))
				copy(batch, orders)
				*saved = append(*saved, batch)
			}
			return nil
		},
	}
}

func TestImportOrdersMixedValidity(t *testing.T) {
	body := fmt.Sprintf(`[
		{"customerId":"%s","amount":99.5,"status":"NEW","paymentMethod":"CARD"},
		{"customerId":"not-a-uuid","amount":10,"status":"NEW","paymentMethod":"CASH"}
	]`, importTestCustomerID)

	var saved [][]domain.Order
	svc := importServiceForTest(true, &saved)

	res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "orders.json", int64(len(body)))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.TotalRecords != 2 || res.SuccessfulImports != 1 || res.FailedImports != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(res.Errors))
	}
	if res.Errors[0].LineNumber != 2 || res.Errors[0].Reason != "Invalid customer ID format" {
		t.Fatalf("unexpected error entry: %+v", res.Errors[0])
	}
	if len(saved) != 1 || len(saved[0]) != 1 {
		t.Fatalf("unexpected saved batches: %v", saved)
	}
	if saved[0][0].CustomerID != importTestCustomerID || saved[0][0].Amount != 99.5 {
		t.Fatalf("unexpected saved order: %+v", saved[0][0])
	}
}

func TestImportOrdersValidationOrder(t *testing.T) {
	// Each record trips several checks at once; the reported reason
	// must be the first one in the fixed sequence.
	cases := []struct {
		name   string
		record string
		reason string
	}{
		{"missing customer wins over bad amount", `{"amount":-1,"status":"BOGUS"}`, "Missing customer ID"},
		{"null amount", fmt.Sprintf(`{"customerId":"%s","status":"NEW"}`, importTestCustomerID), "Invalid amount"},
		{"zero amount", fmt.Sprintf(`{"customerId":"%s","amount":0,"status":"NEW"}`, importTestCustomerID), "Invalid amount"},
		{"missing status", fmt.Sprintf(`{"customerId":"%s","amount":5}`, importTestCustomerID), "Missing status"},
		{"bad uuid wins over bad status", `{"customerId":"xyz","amount":5,"status":"BOGUS"}`, "Invalid customer ID format"},
		{"unknown status", fmt.Sprintf(`{"customerId":"%s","amount":5,"status":"BOGUS"}`, importTestCustomerID), "Invalid status"},
		{"unknown payment", fmt.Sprintf(`{"customerId":"%s","amount":5,"status":"NEW","paymentMethod":"BARTER"}`, importTestCustomerID), "Invalid payment method"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := "[" + tc.record + "]"
			svc := importServiceForTest(true, nil)
			res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
			if err != nil {
				t.Fatalf("import error: %v", err)
			}
			if res.FailedImports != 1 || len(res.Errors) != 1 {
				t.Fatalf("expected one failure, got %+v", res)
			}
			if res.Errors[0].Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", res.Errors[0].Reason, tc.reason)
			}
		})
	}
}

func TestImportOrdersCustomerNotFound(t *testing.T) {
	body := fmt.Sprintf(`[{"customerId":"%s","amount":5,"status":"NEW","paymentMethod":"CARD"}]`, importTestCustomerID)
	svc := importServiceForTest(false, nil)
	res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Reason != "Customer not found" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestImportOrdersParseErrorRecoverable(t *testing.T) {
	// The second element is valid JSON but not an object; decoding it
	// into an order record fails without breaking the stream.
	body := fmt.Sprintf(`[
		{"customerId":"%s","amount":5,"status":"NEW","paymentMethod":"CARD"},
		"garbage",
		{"customerId":"%s","amount":7,"status":"DONE","paymentMethod":"CASH"}
	]`, importTestCustomerID, importTestCustomerID)

	var saved [][]domain.Order
	svc := importServiceForTest(true, &saved)
	res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.TotalRecords != 3 || res.SuccessfulImports != 2 || res.FailedImports != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Errors[0].LineNumber != 2 || res.Errors[0].Reason != "Parse error" {
		t.Fatalf("unexpected error entry: %+v", res.Errors[0])
	}
}

func TestImportOrdersBatchCadence(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 120; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"customerId":"%s","amount":%d,"status":"NEW","paymentMethod":"CARD"}`, importTestCustomerID, i+1)
	}
	sb.WriteString("]")
	body := sb.String()

	var saved [][]domain.Order
	svc := importServiceForTest(true, &saved)
	res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.SuccessfulImports != 120 || res.FailedImports != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	sizes := make([]int, 0, len(saved))
	for _, b := range saved {
		sizes = append(sizes, len(b))
	}
	want := []int{50, 50, 20}
	if len(sizes) != len(want) {
		t.Fatalf("batch sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("batch sizes = %v, want %v", sizes, want)
		}
	}
}

func TestImportOrdersBatchFailureAborts(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 60; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"customerId":"%s","amount":1,"status":"NEW","paymentMethod":"CARD"}`, importTestCustomerID)
	}
	sb.WriteString("]")
	body := sb.String()

	calls := 0
	svc := ImportService{
		CustomerExists: func(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil },
		SaveBatch: func(ctx context.Context, orders []domain.Order) error {
			calls++
			return fmt.Errorf("deadlock")
		},
	}
	_, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single aborted batch, got %d", calls)
	}
}

func TestImportOrdersUploadPreconditions(t *testing.T) {
	svc := importServiceForTest(true, nil)

	cases := []struct {
		name     string
		filename string
		size     int64
	}{
		{"empty file", "orders.json", 0},
		{"wrong extension", "orders.csv", 10},
		{"oversized", "orders.json", importMaxBytes + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ImportOrders(context.Background(), strings.NewReader("[]"), tc.filename, tc.size)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	// Extension matching is case-insensitive.
	res, err := svc.ImportOrders(context.Background(), strings.NewReader("[]"), "ORDERS.JSON", 2)
	if err != nil {
		t.Fatalf("uppercase extension rejected: %v", err)
	}
	if res.TotalRecords != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestImportOrdersIgnoresTrailingBytes(t *testing.T) {
	svc := importServiceForTest(true, nil)
	body := "[]\nleftover"
	res, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.TotalRecords != 0 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestImportOrdersRejectsNonArrayRoot(t *testing.T) {
	svc := importServiceForTest(true, nil)
	for _, body := range []string{`{"customerId":"x"}`, `"hello"`, `42`} {
		_, err := svc.ImportOrders(context.Background(), strings.NewReader(body), "a.json", int64(len(body)))
		if !domain.IsValidation(err) {
			t.Fatalf("body %q: expected validation error, got %v", body, err)
		}
	}
}
