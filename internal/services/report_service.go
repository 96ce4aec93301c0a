package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"weeklyreport/internal/config"
	"weeklyreport/internal/dataprocessing"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/exporter"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/validation"
	"weeklyreport/pkg/contracts/domain"
)

const tracerName = "weeklyreport/services"

// Labels used in error messages and logs for the three inputs.
const (
	LabelRaw      = "raw file"
	LabelProgress = "progress file"
	LabelGMS      = "gms file"
)

// ReportRequest points at the input spreadsheets of one report.
type ReportRequest struct {
	RawPath      string
	ProgressPath string
	GMSPath      string
}

// GenerateOptions selects where and what Generate writes.
type GenerateOptions struct {
	OutputDir string
	Details   bool
	CSV       bool
}

// ReportResult lists the analysis and every file Generate wrote.
type ReportResult struct {
	Analysis     *domain.WeeklyAnalysis
	DocumentPath string
	DetailsPath  string
	CSVPath      string
}

// ReportService turns the weekly spreadsheets into the report files.
type ReportService struct {
	analyzer  *dataprocessing.Analyzer
	writer    *exporter.WeeklyReportWriter
	details   *exporter.DetailsWriter
	validator *validation.FileValidator
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewReportService wires the analyzer and writers from configuration.
// metrics may be nil.
func NewReportService(analysis config.AnalysisConfig, report config.ReportConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "report"))

	return &ReportService{
		analyzer: dataprocessing.NewAnalyzer(dataprocessing.AnalyzerOptions{
			TopN:                    analysis.TopN,
			ParityIncreaseThreshold: analysis.ParityIncreaseThreshold,
			ParityDecreaseThreshold: analysis.ParityDecreaseThreshold,
			ZeroMetricColumn:        analysis.ZeroMetricColumn,
			SASValue:                analysis.SASValue,
		}, logger),
		writer: exporter.NewWeeklyReportWriter(exporter.ReportOptions{
			Greeting:   report.Greeting,
			Intro:      report.Intro,
			Closing:    report.Closing,
			FontName:   report.FontName,
			FontSizePt: report.FontSizePt,
		}, logger),
		details:   exporter.NewDetailsWriter(logger),
		validator: validation.NewFileValidator(logger),
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Analyze loads the inputs and computes the weekly summary without writing
// any file.
func (s *ReportService) Analyze(ctx context.Context, req ReportRequest) (*domain.WeeklyAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.Analyze")
	defer span.End()

	analysis, err := s.analyze(ctx, req)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.week", analysis.Week))
	return analysis, nil
}

// Generate analyzes the inputs and writes the document into
// opts.OutputDir. Nothing is left behind in the output directory when any
// step fails.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest, opts GenerateOptions) (result *ReportResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ReportService.Generate",
		trace.WithAttributes(
			attribute.Bool("report.details", opts.Details),
			attribute.Bool("report.csv", opts.CSV),
		))
	defer span.End()

	logger := s.logger.With(slog.String("trace_id", infrastructure.GetTraceID(ctx)))

	var analysis *domain.WeeklyAnalysis
	defer func() {
		week, rows := 0, 0
		if analysis != nil {
			week, rows = analysis.Week, analysis.RowsAnalyzed
		}
		infrastructure.RecordReportMetrics(ctx, s.metrics, week, rows, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			logger.WarnContext(ctx, "Report generation failed",
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
		}
	}()

	if opts.OutputDir == "" {
		return nil, apierrors.NewConfigError("cannot write report", ErrNoOutputDir)
	}

	analysis, err = s.analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("report.week", analysis.Week),
		attribute.Int("report.rows", analysis.RowsAnalyzed))

	if err := s.validator.ValidateOutputDirectory(opts.OutputDir); err != nil {
		return nil, apierrors.NewStorageError("output directory is not usable", err)
	}

	result = &ReportResult{Analysis: analysis}
	written := []string{}
	defer func() {
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
		}
	}()

	result.DocumentPath, err = s.writer.WriteFile(ctx, opts.OutputDir, analysis)
	if err != nil {
		return nil, wrapWriteError(ctx, "failed to write report document", err)
	}
	written = append(written, result.DocumentPath)

	if opts.Details {
		path := filepath.Join(opts.OutputDir, exporter.DetailsFileName(analysis.Week))
		if err = s.details.WriteFile(path, analysis); err != nil {
			return nil, wrapWriteError(ctx, "failed to write details workbook", err)
		}
		written = append(written, path)
		result.DetailsPath = path
	}

	if opts.CSV {
		name := fmt.Sprintf("Weekly_Top100_Sellers_Week_%d.csv", analysis.Week)
		if err = exporter.NewCSVWriter(opts.OutputDir).WriteSellerDeltas(name, analysis); err != nil {
			return nil, wrapWriteError(ctx, "failed to write seller csv", err)
		}
		result.CSVPath = filepath.Join(opts.OutputDir, name)
		written = append(written, result.CSVPath)
	}

	logger.InfoContext(ctx, "Report generated",
		slog.Int("week", analysis.Week),
		slog.String("document", result.DocumentPath),
		slog.Int("rows", analysis.RowsAnalyzed),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func wrapWriteError(ctx context.Context, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return apierrors.NewRenderingError(message, err)
}

// analyze loads the raw and progress tables concurrently and runs the
// analyzer. The GMS file only has to exist and be readable.
func (s *ReportService) analyze(ctx context.Context, req ReportRequest) (*domain.WeeklyAnalysis, error) {
	if req.ProgressPath == "" {
		return nil, inputError(LabelProgress, ErrMissingInput)
	}

	if req.GMSPath != "" {
		if err := s.validator.ValidateFile(req.GMSPath); err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, apierrors.NewAppValidationError("invalid "+LabelGMS, err).WithContext("file", LabelGMS)
		}
	}

	var raw, progress *dataprocessing.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		progress, err = s.load(gctx, LabelProgress, req.ProgressPath)
		return err
	})
	if req.RawPath != "" {
		g.Go(func() (err error) {
			raw, err = s.load(gctx, LabelRaw, req.RawPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, dataprocessing.AnalysisInput{
		Raw:              raw,
		Progress:         progress,
		ProgressFilename: filepath.Base(req.ProgressPath),
	})
	if err != nil {
		return nil, analysisError(err)
	}
	return analysis, nil
}

func (s *ReportService) load(ctx context.Context, label, path string) (*dataprocessing.Table, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.load",
		trace.WithAttributes(
			attribute.String("file.label", label),
			attribute.String("file.name", filepath.Base(path)),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSpreadsheet(path); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewAppValidationError("invalid "+label, err).WithContext("file", label)
	}

	table, err := dataprocessing.LoadTable(path)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, inputError(label, err)
	}

	span.SetAttributes(
		attribute.Int("table.rows", table.Len()),
		attribute.Int("table.columns", len(table.Columns)))
	s.logger.DebugContext(ctx, "Input loaded",
		slog.String("file", label),
		slog.String("name", filepath.Base(path)),
		slog.Int("rows", table.Len()))
	return table, nil
}
