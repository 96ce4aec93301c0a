package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"weeklyreport/internal/brandcheck"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/validation"
)

// Labels of the brand flagging inputs.
const (
	LabelMerchants = "merchants file"
	LabelReport    = "report workbook"
)

// FlaggedFileName derives the output name for a flagged report workbook.
func FlaggedFileName(reportPath string) string {
	base := filepath.Base(reportPath)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + "_OHL_FLAGGED.xlsx"
}

// BrandService flags report workbooks against the OHL merchant list.
type BrandService struct {
	validator *validation.FileValidator
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewBrandService creates a brand flagging service. metrics may be nil.
func NewBrandService(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *BrandService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "brand"))
	return &BrandService{
		validator: validation.NewFileValidator(logger),
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Flag reads the merchant reference and the report workbook and writes the
// flagged copy to outPath. outPath is not created when any step fails.
func (s *BrandService) Flag(ctx context.Context, merchantsPath, reportPath, outPath string) (result *brandcheck.Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "BrandService.Flag")
	defer span.End()

	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
			infrastructure.RecordError(ctx, err)
		}
		if s.metrics != nil {
			s.metrics.WorkbooksFlagged.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
		}
	}()

	if err := s.validator.ValidateCSVFile(merchantsPath); err != nil {
		return nil, apierrors.NewAppValidationError("invalid "+LabelMerchants, err).WithContext("file", LabelMerchants)
	}
	if err := s.validator.ValidateExcelFile(reportPath); err != nil {
		return nil, apierrors.NewAppValidationError("invalid "+LabelReport, err).WithContext("file", LabelReport)
	}

	merchants, err := brandcheck.LoadMerchants(merchantsPath)
	if err != nil {
		return nil, inputError(LabelMerchants, err)
	}
	span.SetAttributes(attribute.Int("brand.merchants", len(merchants)))

	if err := s.validator.ValidateOutputDirectory(filepath.Dir(outPath)); err != nil {
		return nil, apierrors.NewStorageError("output directory is not usable", err)
	}

	result, err = brandcheck.NewFlagger(merchants, s.logger).FlagFile(ctx, reportPath, outPath)
	if err != nil {
		os.Remove(outPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apierrors.NewParsingError("failed to flag "+LabelReport, err)
	}

	span.SetAttributes(attribute.Int("brand.flagged_sheets", result.FlaggedSheets()))
	s.logger.InfoContext(ctx, "Brand flagging finished",
		slog.String("output", outPath),
		slog.Int("merchants", result.Merchants),
		slog.Int("flagged_sheets", result.FlaggedSheets()),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}
