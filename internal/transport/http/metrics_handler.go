package http

import (
	"net/http"

	apierrors "weeklyreport/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the OpenTelemetry
// meter provider.
type MetricsHandler struct {
	exposition   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil exposition means
// metrics are disabled and the endpoint answers 404.
func NewMetricsHandler(exposition http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		exposition:   exposition,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("metrics"))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.exposition.ServeHTTP(w, r)
}
