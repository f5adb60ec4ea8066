// Package excel writes the ledger as an .xlsx workbook.
package excel

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	ports "fatura/internal/sheets"
)

const DefaultSheet = "Faturalar"

// Exporter saves the rendered snapshot to Path.
type Exporter struct {
	Path      string
	SheetName string
	logger    *slog.Logger
}

var _ ports.Exporter = (*Exporter)(nil)

func New(path, sheetName string, logger *slog.Logger) *Exporter {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{Path: path, SheetName: sheetName, logger: logger}
}

// Export implements sheets.Exporter by writing a workbook file.
func (e *Exporter) Export(ctx context.Context, snap ports.Snapshot) error {
	f, err := Build(snap, e.SheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(e.Path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	e.logger.InfoContext(ctx, "Ledger exported to Excel",
		"output_path", e.Path,
		"snapshot", ports.Caption(snap))
	return nil
}

// WriteTo streams a workbook for snap to w.
func WriteTo(w io.Writer, snap ports.Snapshot, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	f, err := Build(snap, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build renders snap into a new workbook with a single sheet.
func Build(snap ports.Snapshot, sheetName string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := fill(f, sheetName, ports.BuildTable(snap)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fill(f *excelize.File, sheet string, t ports.Table) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, r := range t.Rows {
		if err := setRow(f, sheet, row, r); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", row-1), amountStyle); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	row++ // blank separator
	for _, r := range t.Summary {
		if err := setRow(f, sheet, row, r); err != nil {
			return err
		}
		cell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStyle(sheet, cell, cell, amountStyle); err != nil {
			return fmt.Errorf("style summary: %w", err)
		}
		row++
	}

	if err := f.SetColWidth(sheet, "B", "B", 32); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	return f.SetColWidth(sheet, "C", "E", 16)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
