package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	maxSheetName = 31
)

// Workbook collects tables as sheets of one XLSX file.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// SheetName derives a sheet name from an output file name.
func SheetName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	return base
}

// AddTable writes t to a new sheet named after the output file.
// Numeric cells are stored as numbers.
func (w *Workbook) AddTable(name string, t Table) error {
	sheet := SheetName(name)
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	w.sheets = append(w.sheets, sheet)

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := w.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cellValue(v string) any {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// WriteTo writes the workbook as XLSX.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if len(w.sheets) > 0 {
		w.file.DeleteSheet(defaultSheet)
		if idx, err := w.file.GetSheetIndex(w.sheets[0]); err == nil {
			w.file.SetActiveSheet(idx)
		}
	}
	return w.file.WriteTo(out)
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}
