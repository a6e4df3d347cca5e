package http

import "net/http"

// NewRouter mounts the API together with /healthz and /metrics.
func NewRouter(h *Handler, m *Metrics) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", m.Handler())

	return EnableCORS(WithIdentity(m.Instrument(mux)))
}
