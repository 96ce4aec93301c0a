package http

import (
	"context"

	"weeklyreport/internal/brandcheck"
	"weeklyreport/internal/files"
	"weeklyreport/internal/services"
	"weeklyreport/pkg/contracts/domain"
)

// ReportGenerator is the part of services.ReportService used by ReportHandler
type ReportGenerator interface {
	Analyze(ctx context.Context, req services.ReportRequest) (*domain.WeeklyAnalysis, error)
	Generate(ctx context.Context, req services.ReportRequest, opts services.GenerateOptions) (*services.ReportResult, error)
}

// BrandFlagger is the part of services.BrandService used by BrandHandler
type BrandFlagger interface {
	Flag(ctx context.Context, merchantsPath, reportPath, outPath string) (*brandcheck.Result, error)
}

// WorkspaceProvider hands out request-scoped directories
type WorkspaceProvider interface {
	NewWorkspace(ctx context.Context) (*files.Workspace, error)
}

var (
	_ ReportGenerator   = (*services.ReportService)(nil)
	_ BrandFlagger      = (*services.BrandService)(nil)
	_ WorkspaceProvider = (*files.Manager)(nil)
)
