package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusCanceled   Status = "CANCELED"
)

var knownStatuses = map[Status]bool{
	StatusNew:        true,
	StatusProcessing: true,
	StatusDone:       true,
	StatusCanceled:   true,
}

// ParseStatus accepts the enum name case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !knownStatuses[st] {
		return "", ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status: %s", s)}
	}
	return st, nil
}

type PaymentMethod string

const (
	PaymentCard      PaymentMethod = "CARD"
	PaymentCash      PaymentMethod = "CASH"
	PaymentPaypal    PaymentMethod = "PAYPAL"
	PaymentGooglePay PaymentMethod = "GOOGLE_PAY"
	PaymentApplePay  PaymentMethod = "APPLE_PAY"
)

var knownPayments = map[PaymentMethod]bool{
	PaymentCard:      true,
	PaymentCash:      true,
	PaymentPaypal:    true,
	PaymentGooglePay: true,
	PaymentApplePay:  true,
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	pm := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !knownPayments[pm] {
		return "", ValidationError{Field: "paymentMethod", Msg: fmt.Sprintf("unknown payment method: %s", s)}
	}
	return pm, nil
}

// ReportFileType selects the report output format. CSV is the default.
type ReportFileType string

const (
	ReportCSV  ReportFileType = "csv"
	ReportXLSX ReportFileType = "xlsx"
)

// ParseReportFileType defaults blank input to CSV and rejects anything
// that is not csv or xlsx.
func ParseReportFileType(s string) (ReportFileType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return ReportCSV, nil
	case "csv":
		return ReportCSV, nil
	case "xlsx":
		return ReportXLSX, nil
	default:
		return "", ValidationError{Field: "fileType", Msg: fmt.Sprintf("invalid file type: '%s'. Allowed values: csv, xlsx", s)}
	}
}

func (t ReportFileType) MIMEType() string {
	if t == ReportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func (t ReportFileType) Extension() string {
	if t == ReportXLSX {
		return ".xlsx"
	}
	return ".csv"
}

type Customer struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Order struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Amount        float64
	Status        Status
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportRow is one joined order+customer record as it appears in reports.
type ReportRow struct {
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	CustomerName  string
	Email         string
	Amount        float64
	Status        string
	PaymentMethod string
	CreatedAt     time.Time
}

// ImportError describes why a single uploaded record was rejected.
// LineNumber is the 1-based position of the record in the uploaded array.
type ImportError struct {
	LineNumber int    `json:"lineNumber"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}

// ImportResult is the accounting returned from one import run.
// SuccessfulImports + FailedImports == TotalRecords always holds.
type ImportResult struct {
	TotalRecords      int           `json:"totalRecords"`
	SuccessfulImports int           `json:"successfulImports"`
	FailedImports     int           `json:"failedImports"`
	Errors            []ImportError `json:"errors"`
}
