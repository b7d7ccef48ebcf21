package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"parking-lot-manager/internal/logging"
	"parking-lot-manager/internal/parking"
)

type Config struct {
	Port         string
	ServiceName  string
	RateLimit    float64
	RateBurst    int
	PaymentTries uint
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(cfg Config, lot *parking.InstrumentedManager) *Server {
	registry := prometheus.NewRegistry()
	metrics := newHTTPMetrics(registry)
	handler := NewHandler(lot, cfg.ServiceName, cfg.PaymentTries, metrics)

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	gateLimiter := rate.NewLimiter(limit, cfg.RateBurst)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware(cfg.ServiceName))
	r.Use(MetricsMiddleware(metrics))
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/parking-lot", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(gateLimiter))
			r.Post("/enter", handler.Enter)
			r.Post("/exit", handler.Exit)
		})
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets/{id}", handler.GetTicket)
		r.Get("/tickets/{id}/quote", handler.QuoteTicket)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	logging.Info(context.Background(), "starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
