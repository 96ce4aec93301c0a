package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyTable is returned when a file has no header row.
var ErrEmptyTable = errors.New("file has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cell is one raw spreadsheet value. Text marks values that were stored as
// strings in the source file, which matters for percentage scaling.
type Cell struct {
	Value string
	Text  bool
}

// Empty reports whether the cell holds nothing but whitespace.
func (c Cell) Empty() bool {
	return strings.TrimSpace(c.Value) == ""
}

// Float coerces the cell to a finite number. Unparseable or empty cells, and
// text such as "inf" or "nan", report false.
func (c Cell) Float() (float64, bool) {
	return parseFinite(c.Value)
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// String returns the trimmed value.
func (c Cell) String() string {
	return strings.TrimSpace(c.Value)
}

// Table is a header row plus data rows with normalized column names
// (trimmed, lower-cased). Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
	index   map[string]int
}

// NewTable builds a table from a raw header and rows, normalizing column
// names and padding short rows. Rows made only of empty cells are dropped.
func NewTable(name string, header []string, rows [][]Cell) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}

	for i, h := range header {
		col := NormalizeColumn(h)
		t.Columns[i] = col
		if _, dup := t.index[col]; !dup && col != "" {
			t.index[col] = i
		}
	}

	for _, row := range rows {
		padded := make([]Cell, len(header))
		copy(padded, row)

		blank := true
		for _, c := range padded {
			if !c.Empty() {
				blank = false
				break
			}
		}
		if !blank {
			t.Rows = append(t.Rows, padded)
		}
	}

	return t
}

// NormalizeColumn trims and lower-cases a header name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Has reports whether the table has the given normalized column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Cell returns the cell of row at column. Unknown columns yield an empty cell.
func (t *Table) Cell(row int, column string) Cell {
	i := t.Index(column)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return Cell{}
	}
	return t.Rows[row][i]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// LoadTable reads the first sheet of an xlsx workbook or a comma separated
// csv file, chosen by extension.
func LoadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadWorkbook(path)
	case ".csv":
		return LoadCSV(path, ',')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// LoadWorkbook reads the first sheet of an Excel workbook. Numbers are read
// unformatted so that 0.17 stays 0.17 regardless of the cell's number format.
func LoadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyTable)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyTable)
	}

	data := make([][]Cell, 0, len(rows)-1)
	for r, row := range rows[1:] {
		cells := make([]Cell, len(row))
		for c, value := range row {
			cells[c] = Cell{Value: value, Text: isTextCell(f, sheet, c+1, r+2, value)}
		}
		data = append(data, cells)
	}

	slog.Debug("workbook loaded",
		slog.String("file", filepath.Base(path)),
		slog.String("sheet", sheet),
		slog.Int("rows", len(data)))

	return NewTable(filepath.Base(path), rows[0], data), nil
}

// isTextCell reports whether a workbook cell holds a string. Formula and
// other cells count as text when their value is not numeric.
func isTextCell(f *excelize.File, sheet string, col, row int, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		return true
	}
	_, numeric := Cell{Value: value}.Float()
	return !numeric
}

// LoadCSV reads a delimited text file. A value counts as text when it does
// not parse as a number, mirroring how the workbook loader treats strings.
func LoadCSV(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, filepath.Base(path), sep)
}

// ReadCSV parses delimited text from r. A leading UTF-8 BOM is ignored.
func ReadCSV(r io.Reader, name string, sep rune) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}

	data := make([][]Cell, 0, len(records)-1)
	for _, record := range records[1:] {
		cells := make([]Cell, len(record))
		for i, value := range record {
			_, numeric := Cell{Value: value}.Float()
			cells[i] = Cell{Value: value, Text: !numeric && strings.TrimSpace(value) != ""}
		}
		data = append(data, cells)
	}

	return NewTable(name, records[0], data), nil
}
