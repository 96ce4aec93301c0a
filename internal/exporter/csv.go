package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"weeklyreport/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a writer that resolves relative paths against baseDir.
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// SellerDeltaHeaders are the columns of the per-seller delta export.
var SellerDeltaHeaders = []string{"section", "group", "rank", "sp_name", "gms_current", "gms_previous", "diff"}

// SellerDeltaRecords flattens the contributor and detractor rankings into
// CSV rows, one per ranked seller.
func SellerDeltaRecords(a *domain.WeeklyAnalysis) [][]string {
	var records [][]string
	sections := []struct {
		name    string
		ranking domain.Ranking
	}{
		{"contributors", a.Contributors},
		{"detractors", a.Detractors},
	}
	for _, s := range sections {
		for _, g := range s.ranking.Groups() {
			for i, d := range g.Sellers {
				records = append(records, []string{
					s.name,
					g.Label,
					fmt.Sprintf("%d", i+1),
					d.Name,
					formatFloat(d.CurrentGMS),
					formatFloat(d.PreviousGMS),
					formatFloat(d.Diff),
				})
			}
		}
	}
	return records
}

// WriteSellerDeltas writes the ranked sellers of a to filePath.
func (w *CSVWriter) WriteSellerDeltas(filePath string, a *domain.WeeklyAnalysis) error {
	return w.WriteSimpleCSV(filePath, SellerDeltaHeaders, SellerDeltaRecords(a))
}

// resolvePath joins relative paths onto the base directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
