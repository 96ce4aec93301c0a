// Package brandcheck flags report rows whose brand belongs to the OHL
// merchant list.
package brandcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"weeklyreport/internal/dataprocessing"
)

// Column names and status values written to flagged workbooks.
const (
	MerchantColumn = "MERCHANT NAME"
	BrandColumn    = "BRAND"
	StatusColumn   = "OHL_STATUS"
	StatusOHL      = "OHL"
	StatusNotOHL   = "NOT OHL"

	// MerchantSeparator is the delimiter of the merchant reference csv.
	MerchantSeparator = ';'
)

// ErrMerchantColumnMissing is returned when the merchant reference has no
// MERCHANT NAME column.
var ErrMerchantColumnMissing = errors.New("'MERCHANT NAME' column not found")

// Normalize trims and upper-cases a merchant or brand name.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MerchantSet holds normalized merchant names.
type MerchantSet map[string]struct{}

// Contains reports whether the normalized form of name is in the set.
func (m MerchantSet) Contains(name string) bool {
	n := Normalize(name)
	if n == "" {
		return false
	}
	_, ok := m[n]
	return ok
}

// LoadMerchants reads the semicolon separated merchant reference file.
func LoadMerchants(path string) (MerchantSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open merchant list: %w", err)
	}
	defer f.Close()

	return ReadMerchants(f, filepath.Base(path))
}

// ReadMerchants parses a merchant reference from r.
func ReadMerchants(r io.Reader, name string) (MerchantSet, error) {
	table, err := dataprocessing.ReadCSV(r, name, MerchantSeparator)
	if err != nil {
		return nil, err
	}
	return merchantsFromTable(table)
}

func merchantsFromTable(t *dataprocessing.Table) (MerchantSet, error) {
	col := dataprocessing.NormalizeColumn(MerchantColumn)
	if !t.Has(col) {
		available := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			available[i] = Normalize(c)
		}
		return nil, fmt.Errorf("%w, available columns: %v", ErrMerchantColumnMissing, available)
	}

	set := make(MerchantSet, t.Len())
	for i := range t.Rows {
		if n := Normalize(t.Cell(i, col).Value); n != "" {
			set[n] = struct{}{}
		}
	}
	return set, nil
}

// SheetResult describes what happened to one worksheet.
type SheetResult struct {
	Sheet   string `json:"sheet"`
	Flagged bool   `json:"flagged"`
	Rows    int    `json:"rows"`
	OHL     int    `json:"ohl"`
}

// Result summarizes a flagging run.
type Result struct {
	Merchants int           `json:"merchants"`
	Sheets    []SheetResult `json:"sheets"`
}

// FlaggedSheets counts sheets that received a status column.
func (r *Result) FlaggedSheets() int {
	n := 0
	for _, s := range r.Sheets {
		if s.Flagged {
			n++
		}
	}
	return n
}

// Flagger inserts an OHL_STATUS column next to every BRAND column.
type Flagger struct {
	merchants MerchantSet
	logger    *slog.Logger
}

// NewFlagger creates a flagger for the given merchant reference.
func NewFlagger(merchants MerchantSet, logger *slog.Logger) *Flagger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flagger{
		merchants: merchants,
		logger:    logger.With(slog.String("component", "brand_flagger")),
	}
}

// FlagFile reads the workbook at in, flags it and writes the result to out.
func (f *Flagger) FlagFile(ctx context.Context, in, out string) (*Result, error) {
	wb, err := excelize.OpenFile(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open report workbook: %w", err)
	}
	defer wb.Close()

	result, err := f.Flag(ctx, wb)
	if err != nil {
		return nil, err
	}

	if err := wb.SaveAs(out); err != nil {
		return nil, fmt.Errorf("failed to save flagged workbook: %w", err)
	}
	return result, nil
}

// Flag modifies wb in place. Sheets without a BRAND header are left
// untouched.
func (f *Flagger) Flag(ctx context.Context, wb *excelize.File) (*Result, error) {
	result := &Result{Merchants: len(f.merchants)}

	for _, sheet := range wb.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sr, err := f.flagSheet(wb, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		result.Sheets = append(result.Sheets, sr)

		f.logger.DebugContext(ctx, "Sheet processed",
			slog.String("sheet", sheet),
			slog.Bool("flagged", sr.Flagged),
			slog.Int("rows", sr.Rows),
			slog.Int("ohl", sr.OHL))
	}

	f.logger.InfoContext(ctx, "Brand flagging complete",
		slog.Int("merchants", result.Merchants),
		slog.Int("sheets", len(result.Sheets)),
		slog.Int("flagged_sheets", result.FlaggedSheets()))
	return result, nil
}

func (f *Flagger) flagSheet(wb *excelize.File, sheet string) (SheetResult, error) {
	sr := SheetResult{Sheet: sheet}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return sr, err
	}
	if len(rows) == 0 {
		return sr, nil
	}

	brandIdx := -1
	for i, h := range rows[0] {
		if Normalize(h) == BrandColumn {
			brandIdx = i
			break
		}
	}
	if brandIdx < 0 {
		return sr, nil
	}

	statusCol, err := excelize.ColumnNumberToName(brandIdx + 2)
	if err != nil {
		return sr, err
	}
	if err := wb.InsertCols(sheet, statusCol, 1); err != nil {
		return sr, fmt.Errorf("failed to insert status column: %w", err)
	}
	if err := wb.SetCellValue(sheet, statusCol+"1", StatusColumn); err != nil {
		return sr, err
	}

	for r := 1; r < len(rows); r++ {
		brand := ""
		if brandIdx < len(rows[r]) {
			brand = rows[r][brandIdx]
		}
		status := StatusNotOHL
		if f.merchants.Contains(brand) {
			status = StatusOHL
			sr.OHL++
		}
		if err := wb.SetCellValue(sheet, fmt.Sprintf("%s%d", statusCol, r+1), status); err != nil {
			return sr, err
		}
	}

	sr.Flagged = true
	sr.Rows = len(rows) - 1
	return sr, nil
}
