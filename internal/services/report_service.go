package services

import (
	"context"
	"fmt"
	"io"

	"ordersapi/internal/domain"
	"ordersapi/internal/repositories"
)

// reportHeaders is the fixed column layout shared by every report format.
var reportHeaders = []string{
	"Order ID", "Customer ID", "Customer Name", "Email",
	"Amount", "Status", "Payment Method", "Created At",
}

// ReportRequest is the raw report filter as received from the API.
type ReportRequest struct {
	CustomerID    string
	Status        string
	PaymentMethod string
	FileType      string
}

// ReportFilter is a resolved, validated report request.
type ReportFilter struct {
	Filter   repositories.OrderFilter
	FileType domain.ReportFileType
}

type ReportService struct {
	Orders    repositories.OrderRepository
	Customers repositories.CustomerRepository
}

// Resolve validates the raw request into a ReportFilter. The file type
// is checked here, before any row is read or byte written.
func (s ReportService) Resolve(ctx context.Context, req ReportRequest) (ReportFilter, error) {
	fileType, err := domain.ParseReportFileType(req.FileType)
	if err != nil {
		return ReportFilter{}, err
	}

	svc := OrderService{Orders: s.Orders, Customers: s.Customers}
	filter, err := svc.resolveFilter(ctx, req.CustomerID, req.Status, req.PaymentMethod, false)
	if err != nil {
		return ReportFilter{}, err
	}

	return ReportFilter{Filter: filter, FileType: fileType}, nil
}

// Generate streams all matching orders into w in the requested format,
// one record at a time. The database cursor is released on every exit
// path; on failure the caller must discard whatever was written.
func (s ReportService) Generate(ctx context.Context, f ReportFilter, w io.Writer) error {
	rows, err := s.Orders.StreamByFilters(ctx, f.Filter)
	if err != nil {
		return domain.InternalError{Msg: "report generation failed", Err: err}
	}
	defer rows.Close()

	switch f.FileType {
	case domain.ReportCSV:
		err = writeCSVReport(rows, w)
	case domain.ReportXLSX:
		err = writeXLSXReport(rows, w)
	default:
		return domain.ValidationError{Field: "fileType", Msg: fmt.Sprintf("unsupported file type: %s", f.FileType)}
	}

	if err != nil {
		return domain.InternalError{Msg: "report generation failed", Err: err}
	}
	return nil
}
