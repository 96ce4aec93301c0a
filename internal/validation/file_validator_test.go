package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestFileValidator_ValidateSpreadsheet(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		notSheet      bool
		errorContains string
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				return writeWorkbook(t, t.TempDir(), "Top_100_progress_OHL_w12.xlsx")
			},
		},
		{
			name: "valid csv",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "raw.CSV")
				require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "dir.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "report.pdf")
				require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
				return path
			},
			wantErr:  true,
			notSheet: true,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return writeWorkbook(t, t.TempDir(), "~$report.xlsx")
			},
			wantErr:       true,
			notSheet:      true,
			errorContains: "temporary",
		},
		{
			name: "xlsx that is not a zip",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "fake.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("name,value\n"), 0644))
				return path
			},
			wantErr:       true,
			notSheet:      true,
			errorContains: "not a valid xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(slog.Default())
			err := v.ValidateSpreadsheet(tt.setupFunc(t))

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.notSheet {
				assert.ErrorIs(t, err, ErrNotSpreadsheet)
			}
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
		})
	}
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateExcelFile(writeWorkbook(t, dir, "book.xlsx")))

	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a\n"), 0644))
	assert.ErrorIs(t, v.ValidateExcelFile(csvPath), ErrNotSpreadsheet)
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	csvPath := filepath.Join(dir, "merchants.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("MERCHANT NAME\nAcme\n"), 0644))
	assert.NoError(t, v.ValidateCSVFile(csvPath))

	assert.ErrorIs(t, v.ValidateCSVFile(writeWorkbook(t, dir, "book.xlsx")), ErrNotSpreadsheet)
	assert.Error(t, v.ValidateCSVFile(filepath.Join(dir, "missing.csv")))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(file, "sub")))
}
