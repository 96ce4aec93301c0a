package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTelInitialization(t *testing.T) {
	logger := NewLogger(io.Discard, "info")

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitializationTwice(t *testing.T) {
	logger := NewLogger(io.Discard, "info")

	first, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err, "each provider set owns its registry")
	defer second.Shutdown(context.Background())
}

func TestOTelUnsupportedExporter(t *testing.T) {
	logger := NewLogger(io.Discard, "info")

	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, logger)
	assert.Error(t, err)

	cfg = DefaultOTelConfig()
	cfg.MetricExporter = "statsd"
	_, err = InitializeOTel(cfg, logger)
	assert.Error(t, err)
}

func TestOTelMetricsDisabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, NewLogger(io.Discard, "info"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.MeterProvider)
	require.NotNil(t, providers.Meter)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordReportMetrics(context.Background(), metrics, 12, 10, time.Second, nil)
}

func TestBusinessMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), NewLogger(io.Discard, "info"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordReportMetrics(ctx, metrics, 52, 100, 250*time.Millisecond, nil)
	RecordReportMetrics(ctx, metrics, 52, 0, 10*time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "reports_generated_total")
	assert.Contains(t, body, "report_failures_total")
	assert.Contains(t, body, "rows_analyzed_total")
	assert.Contains(t, body, "report_generation_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestRecordReportMetricsNil(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordReportMetrics(context.Background(), nil, 1, 1, time.Second, nil)
	})
}

func TestRecordError(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), NewLogger(&bytes.Buffer{}, "info"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "helpers")
	defer span.End()

	assert.NotPanics(t, func() {
		RecordError(ctx, errors.New("failed"))
		RecordError(context.Background(), errors.New("no span"))
	})
}
