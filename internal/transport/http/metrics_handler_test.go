package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandler(t *testing.T) {
	env := newTestEnv(t)

	t.Run("serves exposition", func(t *testing.T) {
		exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("weeklyreport_reports_generated_total 3\n"))
		})

		rec := httptest.NewRecorder()
		NewMetricsHandler(exposition, env.errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), "reports_generated_total 3")
	})

	t.Run("disabled metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, env.errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "metrics not found", decodeProblem(t, rec)["detail"])
	})
}
