package http

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/middleware"
	"weeklyreport/internal/services"
)

// FlaggedSheetsHeader reports how many sheets received a status column.
const FlaggedSheetsHeader = "X-Flagged-Sheets"

// brandUpload holds the client file names of POST /api/brands/flag
type brandUpload struct {
	MerchantsFile string `form:"merchants_file" validate:"required,filename,spreadsheet"`
	ReportFile    string `form:"report_file" validate:"required,filename,spreadsheet"`
}

// BrandHandler flags uploaded report workbooks against a merchant list
type BrandHandler struct {
	uploader
	brands       BrandFlagger
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewBrandHandler creates a brand flagging handler
func NewBrandHandler(brands BrandFlagger, workspaces WorkspaceProvider, validator *middleware.RequestValidator,
	maxBytes int64, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{
		uploader: uploader{
			workspaces: workspaces,
			validator:  validator,
			maxBytes:   maxBytes,
		},
		brands:       brands,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "brand")),
	}
}

// Routes returns the brand routes
func (h *BrandHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/flag", h.Flag)
	return r
}

// Flag handles POST /api/brands/flag
func (h *BrandHandler) Flag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	names, err := h.names(r, FieldMerchantsFile, FieldReportFile)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	form := brandUpload{
		MerchantsFile: names[FieldMerchantsFile],
		ReportFile:    names[FieldReportFile],
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

	name := services.FlaggedFileName(form.ReportFile)
	outPath := filepath.Join(ws.Dir, "out", name)

	result, err := h.brands.Flag(ctx, uploads[FieldMerchantsFile].Path, uploads[FieldReportFile].Path, outPath)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set(FlaggedSheetsHeader, strconv.Itoa(result.FlaggedSheets()))
	n, err := sendFile(w, outPath, name, XLSXContentType)
	if err != nil {
		if n == 0 && w.Header().Get("Content-Disposition") == "" {
			w.Header().Del(FlaggedSheetsHeader)
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.logger.WarnContext(ctx, "Flagged workbook download interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Flagged workbook delivered",
		slog.String("workspace_id", ws.ID),
		slog.String("file", name),
		slog.Int("flagged_sheets", result.FlaggedSheets()),
		slog.Int64("bytes", n))
}
