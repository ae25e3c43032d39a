// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/perception/internal/adapters/search"
	"github.com/okian/perception/internal/adapters/session"
	service "github.com/okian/perception/internal/app"
	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
)

// Analyzer runs analyses and lists the styles it supports.
type Analyzer interface {
	Analyze(ctx context.Context, subject string, style report.StyleName) (*service.Report, error)
	Styles() []report.PromptSpec
}

// Sessions stores dashboard logins.
type Sessions interface {
	Create(ctx context.Context, username string) session.Session
	Lookup(ctx context.Context, token string) (session.Session, error)
	Delete(ctx context.Context, token string)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	authHandler      *AuthHandler
	reportsHandler   *ReportsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(analyzer Analyzer, sessions Sessions, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	auth := newAuthHandler(sessions, cfg)
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		authHandler:      auth,
		reportsHandler:   NewReportsHandler(analyzer, cfg.defaultStyle, cfg.log),
		dashboardHandler: newDashboardHandler(auth),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	requireSession := s.authHandler.RequireSession

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/api/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/api/logout", MetricsMiddleware(requireSession(s.authHandler.HandleLogout), "logout"))
	mux.HandleFunc("/api/styles", MetricsMiddleware(requireSession(s.reportsHandler.HandleStyles), "styles"))
	mux.HandleFunc("/api/reports", MetricsMiddleware(requireSession(s.reportsHandler.HandleCreateReport), "reports"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidSubject),
		errors.Is(err, service.ErrUnknownStyle):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, search.ErrMissingAPIKey):
		return http.StatusInternalServerError, "misconfigured"
	case errors.Is(err, service.ErrRetrieval):
		return http.StatusNotFound, "no_results"
	case errors.Is(err, service.ErrGeneration):
		return http.StatusBadGateway, "generation_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func nopIfNil(l logger.Logger) logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}
