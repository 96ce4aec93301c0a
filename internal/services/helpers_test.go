package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"weeklyreport/internal/config"
	"weeklyreport/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSheet(t *testing.T, path string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// writeInputs creates a raw, progress and gms workbook for week 12.
func writeInputs(t *testing.T, dir string) ReportRequest {
	t.Helper()
	return ReportRequest{
		RawPath: writeSheet(t, filepath.Join(dir, "raw.xlsx"), [][]interface{}{
			{"merchant_name", "amazon_ba"},
			{"Zeta", 0},
			{"Alpha", 3},
		}),
		ProgressPath: writeSheet(t, filepath.Join(dir, "Top_100_progress_OHL_w12.xlsx"), [][]interface{}{
			{"Merchant_Name", "SAS", "gms_12", "gms_11", "selection_parity_comp"},
			{"Alpha", "yes", 1500, 500, 0.4},
			{"Beta", "no", 200, 900, -0.7},
			{"Gamma", "no", 800, 100, ""},
		}),
		GMSPath: writeSheet(t, filepath.Join(dir, "gms.xlsx"), [][]interface{}{
			{"merchant_name", "gms"},
			{"Alpha", 1500},
		}),
	}
}

func newReportService(metrics *infrastructure.BusinessMetrics) *ReportService {
	cfg := config.Default()
	return NewReportService(cfg.Analysis, cfg.Report, metrics, testLogger())
}

// testMetrics returns business metrics backed by a manual reader.
func testMetrics(t *testing.T) (*infrastructure.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return metrics, reader
}

// counterValue sums every data point of the named Int64 counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
