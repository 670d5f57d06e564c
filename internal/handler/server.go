// Package handler implements the HTTP handlers for the shift calendar API.
// All handlers are methods on Server. Methods are split into files by concern
// (health.go, shift.go, stats.go, stream.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/shiftbook/internal/domain"
)

// ShiftServicer defines the calendar operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching a store.
type ShiftServicer interface {
	Save(ctx context.Context, ns domain.Namespace, key string, rec domain.ShiftRecord) (domain.ShiftRecord, error)
	Get(ctx context.Context, ns domain.Namespace, key string) (domain.ShiftRecord, bool, error)
	GetAll(ctx context.Context, ns domain.Namespace) (domain.RecordSet, error)
	GetByMonth(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.RecordSet, error)
	GetByYear(ctx context.Context, ns domain.Namespace, year int) (domain.RecordSet, error)
	Delete(ctx context.Context, ns domain.Namespace, key string) error
	Transfer(ctx context.Context, ns domain.Namespace, from, to string, override *domain.ShiftRecord) error
	MonthStatistics(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.MonthStatistics, error)
	YearStatistics(ctx context.Context, ns domain.Namespace, year int) (domain.YearStatistics, error)
	Subscribe(ns domain.Namespace, onUpdate func(domain.RecordSet), onError func(error)) (func(), error)
}

// Server holds the dependencies of every endpoint.
type Server struct {
	shifts    ShiftServicer
	log       *slog.Logger
	keepAlive time.Duration
}

// NewServer constructs the Server with all its dependencies.
func NewServer(shifts ShiftServicer, log *slog.Logger) *Server {
	return &Server{shifts: shifts, log: log, keepAlive: 15 * time.Second}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, slog.Default())
}

// SetKeepAlive changes how often an idle event stream sends a comment line.
func (s *Server) SetKeepAlive(d time.Duration) {
	s.keepAlive = d
}

// Routes returns the API router. Every calendar route is served twice: at the
// root for the shared namespace and under /users/{userID} for a tenant.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Group(s.calendarRoutes)
	r.Route("/users/{userID}", s.calendarRoutes)
	return r
}

func (s *Server) calendarRoutes(r chi.Router) {
	r.Get("/shifts", s.ListShifts)
	r.Get("/shifts/stream", s.StreamShifts)
	r.Get("/shifts/{date}", s.GetShift)
	r.Put("/shifts/{date}", s.PutShift)
	r.Delete("/shifts/{date}", s.DeleteShift)
	r.Post("/shifts/{date}/transfer", s.TransferShift)
	r.Get("/stats/{year}", s.GetYearStatistics)
	r.Get("/stats/{year}/{month}", s.GetMonthStatistics)
}

// namespace reads the tenant from the route. Outside /users/{userID} it is
// the shared namespace.
func namespace(r *http.Request) domain.Namespace {
	return domain.Namespace(chi.URLParam(r, "userID"))
}
