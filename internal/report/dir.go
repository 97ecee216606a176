package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir writes tables as CSV files and charts as PNG files into one directory.
// When a workbook path is set, tables are also collected into an XLSX file
// written on Close.
type Dir struct {
	root         string
	workbookPath string
	workbook     *Workbook
}

// NewDir creates the results directory if needed.
func NewDir(root, workbookPath string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}
	d := &Dir{root: root, workbookPath: workbookPath}
	if workbookPath != "" {
		d.workbook = NewWorkbook()
	}
	return d, nil
}

// Path returns the full path of an output file.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// WriteTable writes t as CSV, replacing any previous file.
func (d *Dir) WriteTable(name string, t Table) error {
	err := writeFileAtomic(d.Path(name), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if d.workbook != nil {
		return d.workbook.AddTable(name, t)
	}
	return nil
}

// RenderChart renders c as PNG, replacing any previous file.
func (d *Dir) RenderChart(name string, c Chart) error {
	if err := writeFileAtomic(d.Path(name), func(w io.Writer) error {
		return RenderPNG(c, w)
	}); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// Close saves the workbook, if any.
func (d *Dir) Close() error {
	if d.workbook == nil {
		return nil
	}
	defer func() {
		if cerr := d.workbook.Close(); cerr != nil {
			// Best-effort workbook close.
			_ = cerr
		}
	}()
	err := writeFileAtomic(d.workbookPath, func(w io.Writer) error {
		_, err := d.workbook.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".rtlab-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	// CreateTemp uses 0600; outputs are meant to be shared like any other file.
	if err := tmpFile.Chmod(0o644); err != nil {
		return err
	}
	buf := bufio.NewWriter(tmpFile)
	if err := write(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
