// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"hiring-workflow/internal/common/config"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/workflow/engine"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every workflow route plus health and metrics endpoints.
func NewRouter(eng *engine.Engine, cfg config.ServerConfig, log logger.Logger) http.Handler {
	h := NewHandlers(eng, log)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /applications/{id}/status", h.ChangeApplicationStatus)
	mux.HandleFunc("GET /applications/{id}/history", h.ApplicationHistory)
	mux.HandleFunc("POST /interviews", h.ScheduleInterview)
	mux.HandleFunc("PUT /interviews/{id}/status", h.UpdateInterviewStatus)
	mux.HandleFunc("GET /interviews/upcoming", h.UpcomingInterviews)
	mux.HandleFunc("POST /offers", h.MakeOffer)
	mux.HandleFunc("PUT /offers/{id}/response", h.RespondToOffer)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	if cfg.RequestTimeout > 0 {
		handler = withRequestTimeout(handler, time.Duration(cfg.RequestTimeout)*time.Millisecond)
	}
	return handler
}

// NewServer builds the http.Server around the router with the configured
// socket timeouts.
func NewServer(eng *engine.Engine, cfg config.ServerConfig, log logger.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(eng, cfg, log),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
}

// withRequestTimeout bounds each workflow action so a stuck row lock cannot
// hold the connection open indefinitely.
func withRequestTimeout(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
