// Package decoder turns raw CSV and Excel file content into header-keyed rows.
// It is the first stage of the import pipeline: bytes in, ordered rows out.
package decoder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrDecode means the file content could not be read as the declared kind.
	ErrDecode = errors.New("decoder: unreadable file content")
	// ErrUnsupportedFile means the file extension is not one we import.
	ErrUnsupportedFile = errors.New("decoder: unsupported file type")
)

// Kind discriminates the supported tabular formats.
type Kind int

const (
	KindCSV Kind = iota
	KindXLSX
)

func (k Kind) String() string {
	if k == KindXLSX {
		return "xlsx"
	}
	return "csv"
}

// KindForFile maps a file name to its decode kind. Only .csv, .xlsx and .xls
// are accepted; excelize reads both Excel variants.
func KindForFile(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx", ".xls":
		return KindXLSX, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFile, name)
}

// Row is one decoded data row, keyed by lower-cased trimmed header text.
type Row map[string]string

// Get returns the trimmed cell under the given header name, tolerating any
// casing or surrounding whitespace in the lookup key.
func (r Row) Get(header string) string {
	return r[strings.ToLower(strings.TrimSpace(header))]
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is the decoded file: the header row plus all data rows in file order.
type Table struct {
	Headers []string
	Rows    []Row
}

// Decode parses file content into a Table. Empty input decodes to an empty
// Table; content that cannot be read as the declared kind fails with ErrDecode.
func Decode(data []byte, kind Kind) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Table{}, nil
	}
	switch kind {
	case KindCSV:
		return decodeCSV(data)
	case KindXLSX:
		return decodeExcel(data)
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrDecode, kind)
}

func decodeCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(normalizeCSVBytes(data)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return buildTable(records), nil
}

func decodeExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	defer f.Close()

	sheet := pickSheet(f)
	if sheet == "" {
		return &Table{}, nil
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return buildTable(records), nil
}

// pickSheet prefers conventionally named transaction sheets, then the first.
func pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range []string{"transactions", "statement", "sheet1"} {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// buildTable takes the first non-blank record as the header row and zips every
// following record against it positionally. Missing trailing cells become "";
// cells beyond the header width are dropped. Records whose cells are all empty
// still decode to rows — the normalizer decides whether to skip them.
func buildTable(records [][]string) *Table {
	table := &Table{}
	for _, record := range records {
		if table.Headers == nil {
			if allBlank(record) {
				continue
			}
			headers := make([]string, len(record))
			for i, h := range record {
				headers[i] = strings.TrimSpace(h)
			}
			table.Headers = headers
			continue
		}
		row := make(Row, len(table.Headers))
		for i, h := range table.Headers {
			key := strings.ToLower(h)
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func allBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeCSVBytes strips a UTF-8 BOM and re-encodes Latin-1 exports so the
// CSV reader always sees valid UTF-8.
func normalizeCSVBytes(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
