package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/madgresso/madgresso/pkg/expense"
)

// Sheet names of the spreadsheet export.
const (
	SheetItems    = "Items"
	SheetReceipts = "Receipts"
	SheetSummary  = "Summary"
)

var itemColumns = []interface{}{"Date", "Type", "Currency", "Amount", "Field", "Account", "Subproject", "Description"}

// XLSXFormatter writes the claim as a spreadsheet.
type XLSXFormatter struct {
	opts FormatOptions
}

// NewXLSXFormatter creates a new spreadsheet formatter.
func NewXLSXFormatter(opts FormatOptions) *XLSXFormatter {
	return &XLSXFormatter{opts: opts}
}

// Name returns the format name.
func (f *XLSXFormatter) Name() string {
	return "xlsx"
}

// Format renders the report as an .xlsx workbook.
func (f *XLSXFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SheetItems); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := writeItems(x, report); err != nil {
		return err
	}
	if err := writeReceipts(x, report); err != nil {
		return err
	}
	if err := writeSummary(x, report); err != nil {
		return err
	}

	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeItems(x *excelize.File, report *Report) error {
	if err := x.SetSheetRow(SheetItems, "A1", &itemColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := x.SetCellStyle(SheetItems, "A1", "H1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, item := range report.Claim.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := itemRow(item)
		if err := x.SetSheetRow(SheetItems, cell, &row); err != nil {
			return fmt.Errorf("writing item %d: %w", i+1, err)
		}
	}

	return x.SetColWidth(SheetItems, "H", "H", 50)
}

func itemRow(item *expense.Item) []interface{} {
	account, ok := item.Account()
	if !ok {
		account = "default"
	}
	// Numeric amounts go in as floats so the sheet can sum them; the text as
	// written is kept in the other formats.
	var amount interface{} = item.Amount()
	if v, err := item.Value(); err == nil {
		amount = v.InexactFloat64()
	}
	return []interface{}{
		item.Date().In(time.UTC).Format(expense.DisplayDateLayout),
		item.Type(),
		item.Currency(),
		amount,
		string(item.AmountField()),
		account,
		item.Subproject(),
		item.Description(),
	}
}

func writeReceipts(x *excelize.File, report *Report) error {
	if _, err := x.NewSheet(SheetReceipts); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	for i, path := range report.Claim.Receipts {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := x.SetCellStr(SheetReceipts, cell, path); err != nil {
			return fmt.Errorf("writing receipt %d: %w", i+1, err)
		}
	}
	return nil
}

func writeSummary(x *excelize.File, report *Report) error {
	if _, err := x.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Claim", report.Claim.ID},
		{"Month", report.Metadata.Month},
		{"Comment", report.Metadata.Comment},
		{"Items", report.Summary.Items},
		{"Receipts", report.Summary.Receipts},
	}
	for _, t := range report.Summary.Totals {
		code := t.Currency
		if code == "" {
			code = DefaultCurrencyLabel
		}
		rows = append(rows, []interface{}{"Total " + code, expense.FormatAmount(t.Amount)})
	}
	if !report.Summary.Miles.IsZero() {
		rows = append(rows, []interface{}{"Miles", expense.FormatAmount(report.Summary.Miles)})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}
