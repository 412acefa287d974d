// Package skiplog writes rejected rows to a CSV audit file, one line per
// dropped row with the rejection reason in the first column. The reason
// counters themselves live in the cleaning pipeline's result; this file is
// the row-level trail for anyone who needs to see what was thrown away.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"txnetl/internal/records"
)

// Writer appends rejected rows to one entity's audit file.
type Writer struct {
	f    *os.File
	w    *csv.Writer
	cols []string
}

// New creates (or truncates) the audit file at path and writes its header:
// "reason" followed by the entity's columns.
func New(path string, cols []string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("skiplog: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("skiplog: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := append([]string{"reason"}, cols...)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("skiplog: write header: %w", err)
	}
	return &Writer{f: f, w: w, cols: cols}, nil
}

// Add appends one rejected row. Values render with fmt; nil renders empty.
func (w *Writer) Add(reason string, row records.Row) {
	line := make([]string, 0, len(w.cols)+1)
	line = append(line, reason)
	for _, c := range w.cols {
		v := row[c]
		if v == nil {
			line = append(line, "")
			continue
		}
		line = append(line, fmt.Sprint(v))
	}
	_ = w.w.Write(line)
}

// Close flushes and closes the audit file.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
