package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmethakanbesel/ecb-exchange/internal/metrics"
	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(rateSvc *rate.Service, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	return newMux(rateSvc, m, gatherer)
}

func newMux(rateSvc *rate.Service, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	h := &handler{
		rateSvc:  rateSvc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/rates", h.getRates)
	mux.HandleFunc("GET /api/v1/convert", h.convert)
	mux.HandleFunc("POST /api/v1/convert", h.convertBatch)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(m)(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
