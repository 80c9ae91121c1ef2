package runstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// csvFile appends records to a delimited-text file, writing the header when
// the file is created. Each record reaches the file in a single write so
// concurrent appenders never interleave partial rows.
type csvFile struct {
	path   string
	header []string
	mu     sync.Mutex
}

func (f *csvFile) append(records ...[]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", f.path, err)
	}
	fresh := true
	if info, err := os.Stat(f.path); err == nil && info.Size() > 0 {
		fresh = false
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if fresh {
		_ = w.Write(f.header)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("encode row for %s: %w", f.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode row for %s: %w", f.path, err)
	}

	out, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		_ = out.Close()
		return fmt.Errorf("append to %s: %w", f.path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	return nil
}

// readCSV returns the header (lower-cased, trimmed) and the non-blank data
// rows of path. Data cells are returned as written; cell trims them and
// rawCell does not.
func readCSV(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		blank := true
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				blank = false
			}
		}
		if !blank {
			body = append(body, row)
		}
	}
	return header, body, nil
}

func columnIndex(header []string, names ...string) int {
	for _, name := range names {
		for i, h := range header {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	return strings.TrimSpace(rawCell(row, idx))
}

func rawCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
