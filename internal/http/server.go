// Package http serves the rescue JSON API used by the intake form, the
// warehouse view and the supervisor dashboard.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
	"foodrescue/internal/services"
)

// RescueService is the part of services.RescueService the API needs.
type RescueService interface {
	CreateEntries(ctx context.Context, drafts []core.Entry) ([]core.Entry, error)
	RecentEntries(ctx context.Context, limit int) ([]core.Entry, error)
	Import(ctx context.Context, payload []byte, replace bool) (services.ImportResult, error)
	Export(ctx context.Context, format services.ExportFormat) (services.Export, error)
	Dashboard(ctx context.Context) (core.Summary, error)
	NearExpiry(ctx context.Context) ([]core.Entry, error)
	Alerts(ctx context.Context, limit int) ([]core.Alert, error)
	Inventory(ctx context.Context) (services.InventoryView, error)
	RunScan(ctx context.Context) (services.ScanReport, error)
}

var _ RescueService = (*services.RescueService)(nil)

const (
	writeRequestsPerMinute = 60
	maxUploadBytes         = 10 << 20
	maxJSONBytes           = 1 << 20
)

type Server struct {
	http.Server
	service     RescueService
	logger      *log.Logger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, service RescueService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		service:     service,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(writeRequestsPerMinute, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.limited(s.handleCreateEntries))
	mux.HandleFunc("POST /api/import", s.limited(s.handleImport))
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/near-expiry", s.handleNearExpiry)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/inventory", s.handleInventory)
	mux.HandleFunc("POST /api/scan", s.limited(s.handleScan))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(logger)(withSecurityHeaders(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		next.ServeHTTP(w, r)
	})
}

// limited rejects write requests from clients over their per-minute budget.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "rejected_total", s.rateLimiter.rejected())
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
			return
		}
		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
