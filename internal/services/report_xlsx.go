package services

import (
	"fmt"
	"io"

	"ordersapi/internal/repositories"
	"ordersapi/internal/utils"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheetName = "Orders"
	// xlsxRowWindow bounds how many data rows are held in memory before
	// they are handed to the stream writer.
	xlsxRowWindow = 100
)

// writeXLSXReport writes a single-sheet workbook through the excelize
// stream writer: styled header row, bordered data rows, numeric amount
// cells. Rows pass through a fixed window so memory stays bounded for
// arbitrarily large result sets.
func writeXLSXReport(rows *repositories.ReportRows, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, dataStyle, err := reportStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	xw := &xlsxRowWriter{sw: sw, nextRow: 1}

	header := make([]any, len(reportHeaders))
	for i, h := range reportHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	xw.append(header)

	for rows.Next() {
		row := rows.Row()
		xw.append([]any{
			excelize.Cell{StyleID: dataStyle, Value: row.OrderID.String()},
			excelize.Cell{StyleID: dataStyle, Value: row.CustomerID.String()},
			excelize.Cell{StyleID: dataStyle, Value: row.CustomerName},
			excelize.Cell{StyleID: dataStyle, Value: row.Email},
			excelize.Cell{StyleID: dataStyle, Value: row.Amount},
			excelize.Cell{StyleID: dataStyle, Value: row.Status},
			excelize.Cell{StyleID: dataStyle, Value: row.PaymentMethod},
			excelize.Cell{StyleID: dataStyle, Value: utils.FormatDateTime(row.CreatedAt)},
		})
		if err := xw.flushIfFull(); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read report rows: %w", err)
	}

	if err := xw.flush(); err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush stream writer: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxRowWriter buffers rows up to the window size before handing them
// to the excelize stream writer, which spools them out of memory.
type xlsxRowWriter struct {
	sw      *excelize.StreamWriter
	pending [][]any
	nextRow int
}

func (x *xlsxRowWriter) append(row []any) {
	x.pending = append(x.pending, row)
}

func (x *xlsxRowWriter) flushIfFull() error {
	if len(x.pending) < xlsxRowWindow {
		return nil
	}
	return x.flush()
}

func (x *xlsxRowWriter) flush() error {
	for _, row := range x.pending {
		cell, err := excelize.CoordinatesToCellName(1, x.nextRow)
		if err != nil {
			return fmt.Errorf("row coordinates: %w", err)
		}
		if err := x.sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
		x.nextRow++
	}
	x.pending = x.pending[:0]
	return nil
}

func reportStyles(f *excelize.File) (header, data int, err error) {
	borders := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Border:    borders,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("header style: %w", err)
	}

	data, err = f.NewStyle(&excelize.Style{Border: borders})
	if err != nil {
		return 0, 0, fmt.Errorf("data style: %w", err)
	}
	return header, data, nil
}
