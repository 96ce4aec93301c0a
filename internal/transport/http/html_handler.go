package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"weeklyreport/internal/middleware"
	"weeklyreport/pkg/contracts"
)

//go:embed templates/index.html static
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "templates/index.html"))

// StaticPrefix is the URL path the embedded static assets are served under.
const StaticPrefix = "/static/"

// StaticHandler serves the embedded static assets below StaticPrefix.
func StaticHandler() http.Handler {
	assets, err := fs.Sub(webFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(StaticPrefix, http.FileServerFS(assets))
}

// formField is one file input of the upload page
type formField struct {
	Name  string
	Label string
}

// indexPage is the data rendered into templates/index.html
type indexPage struct {
	AppName      string
	Version      string
	MaxUpload    string
	Accept       string
	ReportFields []formField
	BrandFields  []formField
}

// IndexHandler serves the upload page
type IndexHandler struct {
	page   indexPage
	logger *slog.Logger
}

// NewIndexHandler creates the upload page handler
func NewIndexHandler(maxBytes int64, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		page: indexPage{
			AppName:   contracts.AppName,
			Version:   contracts.Version,
			MaxUpload: humanize.IBytes(uint64(maxBytes)),
			Accept:    strings.Join(middleware.SpreadsheetExtensions, ","),
			ReportFields: []formField{
				{Name: FieldRawFile, Label: "Raw file"},
				{Name: FieldProgressFile, Label: "Progress file (name must contain the week, e.g. w12)"},
				{Name: FieldGMSFile, Label: "GMS file"},
			},
			BrandFields: []formField{
				{Name: FieldMerchantsFile, Label: "Merchant list (.csv, ';' separated)"},
				{Name: FieldReportFile, Label: "Report workbook (.xlsx)"},
			},
		},
		logger: logger.With(slog.String("handler", "index")),
	}
}

// ServeHTTP handles GET /
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, h.page); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render index page",
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
