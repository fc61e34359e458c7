package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/fjod/yume/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported for the basket service
const ServiceName = "yume.basket"

// Check reports whether a dependency is usable
type Check func(ctx context.Context) error

// HealthServer serves gRPC health and reflection. Serving status follows the
// registered checks.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	checks map[string]Check
	logger *zap.Logger

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewHealthServer builds the server. otelOpts configure the otelgrpc stats
// handler that starts a span for every call.
func NewHealthServer(l *zap.Logger, checks map[string]Check, otelOpts ...otelgrpc.Option) *HealthServer {
	if l == nil {
		l = zap.NewNop()
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelOpts...)),
		grpc.UnaryInterceptor(LoggingInterceptor(l)),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(s)

	return &HealthServer{
		server: s,
		health: hs,
		checks: checks,
		logger: l,
		stop:   make(chan struct{}),
	}
}

// Serve blocks until the listener fails or Stop is called
func (h *HealthServer) Serve(lis net.Listener) error {
	return h.server.Serve(lis)
}

// RunChecks evaluates every check once and updates the serving status of
// ServiceName.
func (h *HealthServer) RunChecks(ctx context.Context) bool {
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			healthy = false
		}
	}

	st := grpc_health_v1.HealthCheckResponse_SERVING
	if !healthy {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(ServiceName, st)
	return healthy
}

// StartChecks runs the checks every interval until Stop
func (h *HealthServer) StartChecks(interval, timeout time.Duration) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				h.RunChecks(ctx)
				cancel()
			case <-h.stop:
				return
			}
		}
	}()
}

// Stop marks everything NOT_SERVING, stops the check loop and drains the server
func (h *HealthServer) Stop() {
	h.once.Do(func() {
		h.health.Shutdown()
		close(h.stop)
		h.wg.Wait()
		h.server.GracefulStop()
	})
}

// LoggingInterceptor logs every unary call with its status code and latency
func LoggingInterceptor(l *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.WithTrace(ctx, l).Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}
