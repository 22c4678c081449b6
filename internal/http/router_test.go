package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "ordersapi/internal/config"
	"ordersapi/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const routerTestCustomerID = "5c7d9e1f-2a3b-4c5d-8e9f-0a1b2c3d0001"

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() {
		intconfig.DB = nil
		db.Close()
	})
	intconfig.DB = db
	return NewRouter(intconfig.Env{}), mock
}

func doRequest(r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCustomersRejectsBadPaging(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []string{
		"/api/customers?page=abc",
		"/api/customers?page=-1",
		"/api/customers?size=x",
		"/api/customers?sort=email,asc",
		"/api/customers?sort=firstName,sideways",
	}
	for _, path := range cases {
		w := doRequest(r, http.MethodGet, path, nil, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "validation_error") {
			t.Fatalf("%s: body = %s", path, w.Body.String())
		}
	}
}

func TestGetOrderByIDRejectsBadUUID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/orders/not-a-uuid", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid UUID format") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestOrdersReportRejectsBadFileType(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"fileType":"pdf"}`)
	w := doRequest(r, http.MethodPost, "/api/orders/_report", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Allowed values: csv, xlsx") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestOrdersReportDownloadHeaders(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("JOIN customers c").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "customer_id", "name", "email", "amount", "status", "payment_method", "created_at"}))

	body := bytes.NewBufferString(`{}`)
	w := doRequest(r, http.MethodPost, "/api/orders/_report", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `attachment; filename="orders_report_`) || !strings.Contains(cd, `.csv"`) {
		t.Fatalf("content disposition = %q", cd)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Fatalf("cache control = %q", cc)
	}
	if !strings.HasPrefix(w.Body.String(), "Order ID,Customer ID,") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestOrdersReportQueryFailure(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("JOIN customers c").WillReturnError(fmt.Errorf("db down"))

	body := bytes.NewBufferString(`{"fileType":"csv"}`)
	w := doRequest(r, http.MethodPost, "/api/orders/_report", body, "application/json")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body = %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "internal_error") {
		t.Fatalf("body = %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content type = %q, want JSON error payload", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "" {
		t.Fatalf("content disposition leaked: %q", cd)
	}
}

func TestUploadOrders(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT 1 FROM customers WHERE id").WithArgs(routerTestCustomerID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	payload := fmt.Sprintf(`[
		{"customerId":"%s","amount":25.5,"status":"NEW","paymentMethod":"CARD"},
		{"customerId":"not-a-uuid","amount":1,"status":"NEW","paymentMethod":"CASH"}
	]`, routerTestCustomerID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "orders.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(payload)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	w := doRequest(r, http.MethodPost, "/api/orders/upload", &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result domain.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TotalRecords != 2 || result.SuccessfulImports != 1 || result.FailedImports != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Reason != "Invalid customer ID format" {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUploadOrdersRejectsMissingFile(t *testing.T) {
	r, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	w := doRequest(r, http.MethodPost, "/api/orders/upload", &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("SELECT 1 FROM customers WHERE email").WithArgs("dup@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	body := bytes.NewBufferString(`{"firstName":"A","lastName":"B","email":"dup@example.com","city":"Berlin"}`)
	w := doRequest(r, http.MethodPost, "/api/customers", body, "application/json")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("noroute status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "route not found") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
