package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile wraps any failure to parse the upload as tabular data.
var ErrUnreadableFile = errors.New("unreadable file")

// Row is one spreadsheet row. Values holds normalized column name -> trimmed
// cell value; blank and whitespace-only cells are absent from the map. Number
// is the physical spreadsheet row (header row + 1-based), so the first data
// row is 2.
type Row struct {
	Number int
	Values map[string]string
}

func (r Row) Get(col string) (string, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Table is one parsed sheet: the normalized header plus rows in file order.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Reader parses an upload into a Table. Format is chosen by extension, then
// content type, with an xlsx/csv fallback chain for mislabeled files.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (rd *Reader) Read(r io.Reader, filePath, contentType string) (*Table, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	switch detectFormat(filePath, contentType) {
	case "csv":
		t, err := readCSV(data)
		if err == nil {
			return t, nil
		}
		log.Printf("[READER][CSV][ERR] %v, fallback to XLSX", err)
		return readXLSX(data)
	default:
		t, err := readXLSX(data)
		if err == nil {
			return t, nil
		}
		log.Printf("[READER][XLSX][ERR] %v, fallback to CSV", err)
		return readCSV(data)
	}
}

func readXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx has no sheets", ErrUnreadableFile)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Error() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, rows.Error())
		}
		return nil, fmt.Errorf("%w: empty sheet", ErrUnreadableFile)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	t := &Table{Columns: normalizeHeader(header)}
	idx := 0
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			log.Printf("[READER][XLSX][WARN] read row err: %v", err)
			idx++
			continue
		}
		t.Rows = append(t.Rows, toRow(t.Columns, cols, idx))
		idx++
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return t, nil
}

func readCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	t := &Table{Columns: normalizeHeader(header)}
	idx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
		}
		t.Rows = append(t.Rows, toRow(t.Columns, record, idx))
		idx++
	}
	return t, nil
}

// normalizeHeader trims, lowercases and replaces internal spaces with
// underscores so "Contract Number" and "contract_number" address the same
// column.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.Join(strings.Fields(h), "_")
		out[i] = h
	}
	return out
}

func toRow(columns []string, record []string, idx int) Row {
	values := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" || i >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			continue
		}
		values[col] = v
	}
	return Row{Number: idx + 2, Values: values}
}

func detectFormat(filePath, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	switch ext {
	case "xlsx", "xls":
		return "xlsx"
	case "csv":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
