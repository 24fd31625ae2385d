package http

import (
	"net/http"

	"github.com/go-chi/render"

	apperrors "huntstats/internal/errors"
)

// MetricsHandler exposes the Prometheus registry fed by OpenTelemetry
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the exporter handler. A nil exporter means
// metrics are disabled and the endpoint answers 404.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		_ = render.Render(w, r, apperrors.NewProblemDetails(
			http.StatusNotFound,
			apperrors.TypeNotFound,
			http.StatusText(http.StatusNotFound),
			"metrics are disabled",
			r.URL.Path,
		))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
