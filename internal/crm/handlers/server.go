// Package handlers serves the CRM over HTTP and gRPC: REST routes on a
// grpc-gateway ServeMux for companies and contacts, and the gRPC health
// service reflecting database reachability.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultShutdownTimeout = 5 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer      *grpc.Server
	health          *health.Server
	httpServer      *http.Server
	mux             *runtime.ServeMux
	root            *http.ServeMux
	logger          *zap.Logger
	grpcEndpoint    string
	httpEndpoint    string
	corsOrigins     []string
	gatherer        prometheus.Gatherer
	shutdownTimeout time.Duration
}

type Option func(*Server)

// WithCORSOrigins sets the origins allowed by CORS. "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMetrics exposes the gatherer on /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

func WithGRPCOptions(opts ...grpc.ServerOption) Option {
	return func(s *Server) {
		s.grpcServer = grpc.NewServer(opts...)
	}
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(grpcPort, httpPort int, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		grpcServer:      grpc.NewServer(),
		health:          health.NewServer(),
		httpServer:      &http.Server{ReadHeaderTimeout: 10 * time.Second},
		mux:             runtime.NewServeMux(),
		root:            http.NewServeMux(),
		logger:          logger.Named("server"),
		grpcEndpoint:    fmt.Sprintf(":%d", grpcPort),
		httpEndpoint:    fmt.Sprintf(":%d", httpPort),
		corsOrigins:     []string{"*"},
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	s.root.HandleFunc("GET /{$}", s.welcome)
	if s.gatherer != nil {
		s.root.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.root.Handle("/", s.mux)

	s.httpServer.Addr = s.httpEndpoint
	s.httpServer.Handler = s.Handler()
	return s
}

// RegisterRoutes mounts the company and contact REST routes.
func (s *Server) RegisterRoutes(companies *CompanyHandler, contacts *ContactHandler) error {
	if err := companies.Register(s.mux); err != nil {
		return fmt.Errorf("registering company routes: %w", err)
	}
	if err := contacts.Register(s.mux); err != nil {
		return fmt.Errorf("registering contact routes: %w", err)
	}
	return nil
}

// RegisterHealth serves /healthz from the pinger and keeps the gRPC health
// status in line with it.
func (s *Server) RegisterHealth(pinger Pinger) error {
	return s.mux.HandlePath(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.checkHealth(ctx, pinger); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			writeError(w, r, s.mux, unavailable("database unreachable"))
			return
		}
		writeJSON(w, r, s.mux, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) checkHealth(ctx context.Context, pinger Pinger) error {
	err := pinger.Ping(ctx)
	if err != nil {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return nil
}

// WatchHealth re-checks the pinger every interval until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, pinger Pinger, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			if err := s.checkHealth(pingCtx, pinger); err != nil && ctx.Err() == nil {
				s.logger.Warn("Database ping failed", zap.Error(err))
			}
			cancel()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return withCORS(withRequestLogging(s.root, s.logger), s.corsOrigins)
}

func (s *Server) welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.mux, http.StatusOK, map[string]string{"message": "Welcome to PingCRM API"})
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	// Start gRPC Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	// Start HTTP Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
