package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. Rows[0] is the header.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes builds an xlsx workbook in memory. The first sheet replaces
// the default "Sheet1".
func WorkbookBytes(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				t.Fatalf("write row %d of %s: %v", r+1, sheet.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook saves WorkbookBytes to dir/name and returns the path.
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()
	return writeFile(t, dir, name, WorkbookBytes(t, sheets...))
}

// CSVBytes encodes rows with the given separator.
func CSVBytes(t testing.TB, sep rune, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = sep
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return buf.Bytes()
}

// WriteCSV saves CSVBytes to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, sep rune, rows [][]string) string {
	t.Helper()
	return writeFile(t, dir, name, CSVBytes(t, sep, rows))
}

// ProgressSheet returns a small progress workbook sheet for week with two
// sellers on each side of the comparison.
func ProgressSheet(week, prev int) Sheet {
	return Sheet{
		Name: "Progress",
		Rows: [][]interface{}{
			{"Merchant_Name", gmsColumn(week), gmsColumn(prev), "SAS", "Selection_Parity_Comp"},
			{"Alpha", 1500, 1000, "yes", 0.4},
			{"Beta", 800, 1000, "no", -0.6},
			{"Gamma", 300, 100, "no", 0.1},
			{"Delta", 50, 400, "yes", -0.2},
		},
	}
}

// RawSheet returns a raw sheet where Beta moved from zero selection.
func RawSheet() Sheet {
	return Sheet{
		Name: "Raw",
		Rows: [][]interface{}{
			{"merchant_name", "amazon_ba"},
			{"Alpha", 5},
			{"Beta", 0},
		},
	}
}

func gmsColumn(week int) string {
	return "gms_" + strconv.Itoa(week)
}

func writeFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
