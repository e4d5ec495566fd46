package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sitecheck/internal/csvexport"
	"sitecheck/internal/domain"
)

// SheetName is the worksheet holding the exported invoices.
const SheetName = "Invoices"

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Write renders invoices as a single-sheet workbook with the same columns as
// the CSV export. Totals, hours and confidence are written as numbers.
func Write(w io.Writer, invoices []domain.FlaggedInvoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsxexport: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsxexport: stream writer: %w", err)
	}

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsxexport: header: %w", err)
	}

	for i := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(&invoices[i])); err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsxexport: flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsxexport: write: %w", err)
	}
	return nil
}

func row(inv *domain.FlaggedInvoice) []interface{} {
	text := csvexport.Row(inv)
	out := make([]interface{}, len(text))
	for i, v := range text {
		out[i] = v
	}
	if inv.TotalAmount != nil {
		out[4] = *inv.TotalAmount
	}
	out[5] = inv.ClaimedHours
	out[7] = inv.AIConfidence
	return out
}
