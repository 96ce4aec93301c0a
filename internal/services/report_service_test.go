package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weeklyreport/internal/dataprocessing"
	"weeklyreport/internal/docx"
	apierrors "weeklyreport/internal/errors"
)

func TestReportServiceGenerate(t *testing.T) {
	dir := t.TempDir()
	req := writeInputs(t, dir)
	out := filepath.Join(dir, "out")

	metrics, reader := testMetrics(t)
	svc := newReportService(metrics)

	result, err := svc.Generate(context.Background(), req, GenerateOptions{OutputDir: out, Details: true, CSV: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "Weekly_Top100_Report_Week_12.docx"), result.DocumentPath)
	assert.Equal(t, filepath.Join(out, "Weekly_Top100_Details_Week_12.xlsx"), result.DetailsPath)
	assert.Equal(t, filepath.Join(out, "Weekly_Top100_Sellers_Week_12.csv"), result.CSVPath)
	for _, p := range []string{result.DocumentPath, result.DetailsPath, result.CSVPath} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	a := result.Analysis
	assert.Equal(t, 12, a.Week)
	assert.Equal(t, 11, a.PreviousWeek)
	require.Len(t, a.Contributors.SAS, 1)
	assert.Equal(t, "Alpha", a.Contributors.SAS[0].Name)
	require.Len(t, a.Contributors.NonSAS, 1)
	assert.Equal(t, "Gamma", a.Contributors.NonSAS[0].Name)
	require.Len(t, a.Detractors.NonSAS, 1)
	assert.Equal(t, "Beta", a.Detractors.NonSAS[0].Name)
	assert.Equal(t, "Alpha\t40%", a.ParityIncreaseText)
	assert.Equal(t, "Zeta", a.FromZeroSelectionText)

	data, err := os.ReadFile(result.DocumentPath)
	require.NoError(t, err)
	paragraphs, err := docx.ReadParagraphs(data)
	require.NoError(t, err)
	assert.Contains(t, paragraphs, "Top Contributors (SAS)")
	assert.Contains(t, paragraphs, "Beta")

	assert.Equal(t, int64(1), counterValue(t, reader, "reports_generated_total"))
	assert.Equal(t, int64(3), counterValue(t, reader, "rows_analyzed_total"))
	assert.Equal(t, int64(0), counterValue(t, reader, "report_failures_total"))
}

func TestReportServiceGenerateDocumentOnly(t *testing.T) {
	dir := t.TempDir()
	req := writeInputs(t, dir)
	out := filepath.Join(dir, "out")

	result, err := newReportService(nil).Generate(context.Background(), req, GenerateOptions{OutputDir: out})
	require.NoError(t, err)
	assert.Empty(t, result.DetailsPath)
	assert.Empty(t, result.CSVPath)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportServiceIgnoresGMSContent(t *testing.T) {
	for _, name := range []string{"gms.csv", "gms.xls", "gms.xlsx"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			req := writeInputs(t, dir)
			req.GMSPath = filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(req.GMSPath, nil, 0644))

			result, err := newReportService(nil).Generate(context.Background(), req, GenerateOptions{OutputDir: filepath.Join(dir, "out")})
			require.NoError(t, err)
			assert.FileExists(t, result.DocumentPath)
			assert.Equal(t, 12, result.Analysis.Week)
		})
	}
}

func TestReportServiceValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, dir string, req *ReportRequest)
		wantIs  error
		wantMsg string
	}{
		{
			name: "missing parity column",
			mutate: func(t *testing.T, dir string, req *ReportRequest) {
				req.ProgressPath = writeSheet(t, filepath.Join(dir, "progress_w52.xlsx"), [][]interface{}{
					{"merchant_name", "sas", "gms_52", "gms_51"},
					{"A", "yes", 1, 2},
				})
			},
			wantIs:  dataprocessing.ErrMissingColumn,
			wantMsg: "expected column 'selection_parity_comp' not found in progress file",
		},
		{
			name: "week missing from file name",
			mutate: func(t *testing.T, dir string, req *ReportRequest) {
				req.ProgressPath = writeSheet(t, filepath.Join(dir, "progress.xlsx"), [][]interface{}{
					{"merchant_name"},
					{"A"},
				})
			},
			wantIs: dataprocessing.ErrWeekNotDetected,
		},
		{
			name: "unsupported raw file",
			mutate: func(t *testing.T, dir string, req *ReportRequest) {
				req.RawPath = filepath.Join(dir, "raw.txt")
				require.NoError(t, os.WriteFile(req.RawPath, []byte("x"), 0644))
			},
		},
		{
			name: "gms file does not exist",
			mutate: func(t *testing.T, dir string, req *ReportRequest) {
				req.GMSPath = filepath.Join(dir, "missing.xlsx")
			},
			wantMsg: "invalid gms file",
		},
		{
			name: "no progress file",
			mutate: func(t *testing.T, dir string, req *ReportRequest) {
				req.ProgressPath = ""
			},
			wantIs: ErrMissingInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			req := writeInputs(t, dir)
			tt.mutate(t, dir, &req)
			out := filepath.Join(dir, "out")

			metrics, reader := testMetrics(t)
			result, err := newReportService(metrics).Generate(context.Background(), req, GenerateOptions{OutputDir: out, Details: true})
			require.Error(t, err)
			assert.Nil(t, result)

			var appErr *apierrors.AppError
			require.True(t, errors.As(err, &appErr), "got %T", err)
			assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "no output may be written")
			assert.Equal(t, int64(1), counterValue(t, reader, "report_failures_total"))
		})
	}
}

func TestReportServiceNoOutputDir(t *testing.T) {
	req := writeInputs(t, t.TempDir())

	_, err := newReportService(nil).Generate(context.Background(), req, GenerateOptions{})
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.ErrorIs(t, err, ErrNoOutputDir)
}

func TestReportServiceAnalyze(t *testing.T) {
	dir := t.TempDir()
	req := writeInputs(t, dir)
	req.RawPath = ""
	req.GMSPath = ""

	a, err := newReportService(nil).Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 12, a.Week)
	assert.Equal(t, dataprocessing.NotAvailable, a.FromZeroSelectionText)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "analyze writes nothing")
}

func TestReportServiceCancelled(t *testing.T) {
	req := writeInputs(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newReportService(nil).Analyze(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportServiceCSVProgress(t *testing.T) {
	dir := t.TempDir()
	progress := filepath.Join(dir, "Top_100_progress_OHL_w01.csv")
	require.NoError(t, os.WriteFile(progress, []byte(
		"merchant_name,sas,gms_1,gms_52,selection_parity_comp\n"+
			"Alpha,yes,100,50,17%\n"+
			"Beta,no,10,60,-55%\n"), 0644))

	a, err := newReportService(nil).Analyze(context.Background(), ReportRequest{ProgressPath: progress})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Week)
	assert.Equal(t, 52, a.PreviousWeek)
	label, ok := a.ParityDecrease.Get("Beta")
	assert.True(t, ok)
	assert.Equal(t, "-55%", label)
	assert.Equal(t, dataprocessing.NotAvailable, a.ParityIncreaseText)
}
