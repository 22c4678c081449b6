package services

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ordersapi/internal/domain"
	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"
)

// writeCSVReport writes the header and one comma-joined line per record.
// Memory use is one row regardless of result size.
func writeCSVReport(rows *repositories.ReportRows, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(reportHeaders, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for rows.Next() {
		if err := writeCSVRow(bw, rows.Row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read report rows: %w", err)
	}

	return bw.Flush()
}

func writeCSVRow(bw *bufio.Writer, row domain.ReportRow) error {
	values := []string{
		escapeCSV(row.OrderID.String()),
		escapeCSV(row.CustomerID.String()),
		escapeCSV(row.CustomerName),
		escapeCSV(row.Email),
		utils.FormatAmount(row.Amount),
		escapeCSV(row.Status),
		escapeCSV(row.PaymentMethod),
		escapeCSV(utils.FormatDateTime(row.CreatedAt)),
	}
	_, err := bw.WriteString(strings.Join(values, ",") + "\n")
	return err
}

// escapeCSV quotes a field containing comma, quote or newline, doubling
// any embedded quotes.
func escapeCSV(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
