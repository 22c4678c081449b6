package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"ordersapi/internal/domain"
	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

// InvoiceService renders a PDF invoice for a single order.
type InvoiceService struct {
	Orders    repositories.OrderRepository
	Customers repositories.CustomerRepository
	RequestID string
	Loader    func(ctx context.Context, id uuid.UUID) (invoiceData, error)
}

type invoiceData struct {
	OrderID       uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerCity  string
	Amount        float64
	Status        domain.Status
	PaymentMethod domain.PaymentMethod
	CreatedAt     time.Time
}

func (s InvoiceService) GenerateInvoice(ctx context.Context, rawID string) ([]byte, string, error) {
	id, err := ParseRequiredUUID(rawID, "id")
	if err != nil {
		return nil, "", err
	}
	data, err := s.loadInvoiceData(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "invoice", "generate", "order_id="+id.String())
	return buildInvoicePDF(data)
}

func (s InvoiceService) loadInvoiceData(ctx context.Context, id uuid.UUID) (invoiceData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id)
	}
	var out invoiceData
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return out, err
	}
	out.OrderID = order.ID
	out.Amount = order.Amount
	out.Status = order.Status
	out.PaymentMethod = order.PaymentMethod
	out.CreatedAt = order.CreatedAt

	if customer, err := s.Customers.GetByID(ctx, order.CustomerID); err == nil {
		out.CustomerName = customer.FullName()
		out.CustomerEmail = customer.Email
		out.CustomerCity = customer.City
	}
	return out, nil
}

func buildInvoicePDF(d invoiceData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := "INV-" + strings.ToUpper(shortID(d.OrderID))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name  : "+safe(d.CustomerName, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Email : "+safe(d.CustomerEmail, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "City  : "+safe(d.CustomerCity, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)

	desc := fmt.Sprintf("Order %s (%s, paid via %s, placed %s)",
		d.OrderID, d.Status, d.PaymentMethod, utils.FormatDate(d.CreatedAt))
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc, "", "", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatMoney(d.Amount))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This invoice covers a single order.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", shortID(d.OrderID))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}
