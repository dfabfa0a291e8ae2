// Package server hosts the EduInsight gRPC surface: the read-only Analytics
// service next to the standard grpc.health.v1 service, with panic recovery
// and optional per-call logging.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*settings)

type settings struct {
	port         int
	listener     net.Listener
	logger       *zap.Logger
	reflection   bool
	logCalls     bool
	interceptors []grpc.UnaryServerInterceptor
}

func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

// WithListener serves on lis instead of binding the configured port.
func WithListener(lis net.Listener) Option {
	return func(s *settings) { s.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithReflection exposes the server reflection service, for grpcurl.
func WithReflection(enabled bool) Option {
	return func(s *settings) { s.reflection = enabled }
}

// WithLogging logs every unary call with its code and latency.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logCalls = enabled }
}

// WithUnaryInterceptors appends interceptors after recovery and logging.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(s *settings) { s.interceptors = append(s.interceptors, interceptors...) }
}

// Server owns the listener, the grpc.Server and the health registry for
// every service registered on it.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	healthServer *health.Server
	logger       *zap.Logger

	mu       sync.Mutex
	services []string
}

// New binds the listener and builds the server. Nothing is served until
// Start.
func New(opts ...Option) (*Server, error) {
	cfg := &settings{port: defaultPort}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis := cfg.listener
	if lis == nil {
		if cfg.port < 1 || cfg.port > 65535 {
			return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", cfg.port)
		}
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.port, err)
		}
	}

	chain := []grpc.UnaryServerInterceptor{RecoveryInterceptor(logger)}
	if cfg.logCalls {
		chain = append(chain, LoggingInterceptor(logger))
	}
	chain = append(chain, cfg.interceptors...)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	if cfg.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		healthServer: healthServer,
		logger:       logger.Named("grpc-server"),
	}, nil
}

// Register mounts impl under desc and reports desc.ServiceName as SERVING.
func (s *Server) Register(desc *grpc.ServiceDesc, impl any) {
	s.grpcServer.RegisterService(desc, impl)

	s.mu.Lock()
	s.services = append(s.services, desc.ServiceName)
	s.mu.Unlock()

	s.healthServer.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("registered service", zap.String("service", desc.ServiceName))
}

// SetServing flips the health status of one registered service.
func (s *Server) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(service, status)
	s.logger.Info("service health changed",
		zap.String("service", service),
		zap.String("status", status.String()))
}

// Drain reports every service, and the server itself, as NOT_SERVING so
// load balancers stop routing before the listener closes.
func (s *Server) Drain() {
	s.mu.Lock()
	services := append([]string(nil), s.services...)
	s.mu.Unlock()

	for _, name := range services {
		s.healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.logger.Info("gRPC server draining", zap.Strings("services", services))
}

// Start serves in the background and returns immediately.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown waits for in-flight calls until ctx expires, then cuts the rest.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
