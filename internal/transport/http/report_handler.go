package http

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/render"

	"weeklyreport/internal/docx"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/middleware"
	"weeklyreport/internal/services"
)

// Response formats of POST /api/analyze.
const (
	FormatDocx = "docx"
	FormatJSON = "json"
)

// reportQuery holds the query parameters of POST /api/analyze
type reportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=docx json"`
}

// reportUpload holds the client file names of POST /api/analyze
type reportUpload struct {
	RawFile      string `form:"raw_file" validate:"required,filename,spreadsheet"`
	ProgressFile string `form:"progress_file" validate:"required,filename,spreadsheet"`
	GMSFile      string `form:"gms_file" validate:"required,filename"`
}

// ReportHandler turns uploaded spreadsheets into the weekly report
type ReportHandler struct {
	uploader
	reports      ReportGenerator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler. Uploads larger than maxBytes
// are rejected with 413.
func NewReportHandler(reports ReportGenerator, workspaces WorkspaceProvider, validator *middleware.RequestValidator,
	maxBytes int64, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		uploader: uploader{
			workspaces: workspaces,
			validator:  validator,
			maxBytes:   maxBytes,
		},
		reports:      reports,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// Analyze handles POST /api/analyze
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := reportQuery{Format: r.URL.Query().Get("format")}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ws, err := h.workspaces.NewWorkspace(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to create workspace", err))
		return
	}
	defer ws.Cleanup()

	if err := h.parse(w, r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	names, err := h.names(r, FieldRawFile, FieldProgressFile, FieldGMSFile)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	form := reportUpload{
		RawFile:      names[FieldRawFile],
		ProgressFile: names[FieldProgressFile],
		GMSFile:      names[FieldGMSFile],
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	uploads, err := h.save(r, ws, names)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := services.ReportRequest{
		RawPath:      uploads[FieldRawFile].Path,
		ProgressPath: uploads[FieldProgressFile].Path,
		GMSPath:      uploads[FieldGMSFile].Path,
	}

	if query.Format == FormatJSON {
		analysis, err := h.reports.Analyze(ctx, req)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		render.JSON(w, r, analysis)
		return
	}

	result, err := h.reports.Generate(ctx, req, services.GenerateOptions{
		OutputDir: filepath.Join(ws.Dir, "out"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := filepath.Base(result.DocumentPath)
	n, err := sendFile(w, result.DocumentPath, name, docx.ContentType)
	if err != nil {
		if n == 0 && w.Header().Get("Content-Disposition") == "" {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.logger.WarnContext(ctx, "Report download interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Report delivered",
		slog.String("workspace_id", ws.ID),
		slog.String("file", name),
		slog.Int("week", result.Analysis.Week),
		slog.Int64("bytes", n))
}
