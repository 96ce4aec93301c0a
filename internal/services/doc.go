// Package services implements the business logic layer between the HTTP
// handlers or CLI commands and the analysis, rendering and flagging packages.
//
// # Services
//
//	ReportService  loads the weekly spreadsheets, runs the analysis and writes
//	               the Word document plus optional details workbook and CSV
//	BrandService   flags report workbook rows against the OHL merchant list
//	HealthService  answers health, readiness and version probes
//
// Every service takes its dependencies and a *slog.Logger in the constructor
// and propagates context.Context for cancellation and tracing. Failures are
// returned as *errors.AppError so transports can map them onto RFC 7807
// responses or CLI exit messages:
//
//	result, err := reports.Generate(ctx, req, services.GenerateOptions{OutputDir: dir})
//	if err != nil {
//	    errorHandler.HandleError(w, r, err)
//	    return
//	}
package services
