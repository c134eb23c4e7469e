// Package functionRuntimeInterface hosts a handler inside a function instance. The worker
// reaches the instance over gRPC and the instance shuts itself down once it has been idle
// for its timeout.
package functionRuntimeInterface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/registry"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/utils"
)

var ErrNilRequest = errors.New("functionRuntimeInterface: request is nil")

const (
	announceAttempts = 5
	announceBackoff  = time.Second
	withdrawTimeout  = 5 * time.Second
)

type Function struct {
	settings Settings
	invoker  handler.Invoker

	logger    *slog.Logger
	clock     clock.Clock
	announcer registry.Announcer
	limiter   *rate.Limiter
	metrics   *Metrics

	server       *grpc.Server
	serverOpts   []grpc.ServerOption
	lastActivity time.Time
	activityMu   sync.RWMutex
}

type Option func(*Function)

func WithLogger(l *slog.Logger) Option {
	return func(f *Function) {
		f.logger = l
	}
}

// WithClock drives activity tracking and the idle check from c.
func WithClock(c clock.Clock) Option {
	return func(f *Function) {
		f.clock = c
	}
}

// WithAnnouncer registers the instance with a when serving starts.
func WithAnnouncer(a registry.Announcer) Option {
	return func(f *Function) {
		f.announcer = a
	}
}

// WithRateLimit admits at most r invocations per second with the given burst. Calls that
// cannot be admitted before their deadline fail with ResourceExhausted.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(f *Function) {
		f.limiter = rate.NewLimiter(r, burst)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(f *Function) {
		f.metrics = m
	}
}

func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(f *Function) {
		f.serverOpts = append(f.serverOpts, opts...)
	}
}

func New(settings Settings, invoker handler.Invoker, opts ...Option) (*Function, error) {
	if invoker == nil {
		return nil, handler.ErrNilInvoker
	}
	f := &Function{
		settings: settings,
		invoker:  invoker,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = utils.DiscardLogger()
	}
	f.lastActivity = f.clock.Now()

	f.server = grpc.NewServer(f.buildServerOptions()...)
	RegisterHandlerServer(f.server, f)
	return f, nil
}

// Serve accepts invocations on lis until ctx ends or the instance has been idle for the
// configured timeout. In-flight invocations are allowed to finish.
func (f *Function) Serve(ctx context.Context, lis net.Listener) error {
	f.updateActivity()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f.logger.Info("Function server starting", "address", lis.Addr().String(), "handler", f.settings.Handler, "timeout", f.settings.Timeout)
		if err := f.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		f.monitorTimeout(ctx)
		f.server.GracefulStop()
		cancel()
		return nil
	})

	if f.metrics != nil && f.settings.MetricsAddress != "" {
		srv := &http.Server{Addr: f.settings.MetricsAddress, Handler: f.metrics.Router()}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve metrics: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), withdrawTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if f.announcer != nil {
		f.announce(ctx, lis.Addr().String())
		defer f.withdraw()
	}

	return g.Wait()
}

// Stop stops the server immediately.
func (f *Function) Stop() {
	f.server.Stop()
}

// Invoke implements HandlerServer.
func (f *Function) Invoke(ctx context.Context, in *structpb.Value) (*structpb.Value, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, ErrNilRequest.Error())
	}
	f.logger.Debug("Received invocation", "request_id", requestID(ctx), "handler", f.settings.Handler)

	out, err := f.invoker.Invoke(ctx, in.AsInterface())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		f.logger.Error("Handler failed", "request_id", requestID(ctx), "error", err)
		return nil, status.Errorf(codes.Internal, "handler failed: %v", err)
	}

	v, err := ToValue(out)
	if err != nil {
		f.logger.Error("Failed to encode handler result", "request_id", requestID(ctx), "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return v, nil
}

// Idle returns how long it has been since the last invocation.
func (f *Function) Idle() time.Duration {
	f.activityMu.RLock()
	defer f.activityMu.RUnlock()
	return f.clock.Now().Sub(f.lastActivity)
}

func (f *Function) buildServerOptions() []grpc.ServerOption {
	interceptors := []grpc.UnaryServerInterceptor{
		// for tracking activity
		f.unaryActivityInterceptor,
		utils.InterceptorLogger(f.logger),
	}
	if f.metrics != nil {
		interceptors = append(interceptors, f.unaryMetricsInterceptor)
	}
	if f.limiter != nil {
		interceptors = append(interceptors, f.unaryAdmissionInterceptor)
	}
	interceptors = append(interceptors, recovery.UnaryServerInterceptor(
		recovery.WithRecoveryHandlerContext(f.recoverPanic),
	))

	options := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	return append(options, f.serverOpts...)
}

func (f *Function) unaryActivityInterceptor(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	f.updateActivity()
	defer f.updateActivity()
	return handler(ctx, req)
}

func (f *Function) unaryMetricsInterceptor(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := f.clock.Now()
	resp, err := handler(ctx, req)
	f.metrics.observe(status.Code(err), f.clock.Now().Sub(start))
	return resp, err
}

func (f *Function) unaryAdmissionInterceptor(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		f.logger.Warn("Rejected invocation", "request_id", requestID(ctx), "error", err)
		return nil, status.Errorf(codes.ResourceExhausted, "invocation not admitted: %v", err)
	}
	return handler(ctx, req)
}

func (f *Function) recoverPanic(ctx context.Context, p any) error {
	f.logger.Error("Handler panicked", "request_id", requestID(ctx), "panic", p)
	return status.Errorf(codes.Internal, "handler panicked: %v", p)
}

func (f *Function) updateActivity() {
	f.activityMu.Lock()
	f.lastActivity = f.clock.Now()
	f.activityMu.Unlock()
}

func (f *Function) monitorTimeout(ctx context.Context) {
	if f.settings.Timeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := f.clock.Ticker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Shutting down", "reason", ctx.Err())
			return
		case <-ticker.C:
			if inactive := f.Idle(); inactive >= f.settings.Timeout {
				f.logger.Info("Server timeout reached, shutting down",
					"timeout", f.settings.Timeout,
					"last_activity", inactive)
				return
			}
		}
	}
}

func (f *Function) announce(ctx context.Context, address string) {
	inst := registry.Instance{
		FunctionID: f.settings.FunctionID,
		InstanceID: f.settings.InstanceID,
		Handler:    f.settings.Handler,
		Address:    address,
		StartedAt:  f.clock.Now().UTC(),
	}
	_, err := utils.CallWithRetry(ctx, func() (struct{}, error) {
		return struct{}{}, f.announcer.Announce(ctx, inst)
	}, announceAttempts, announceBackoff)
	if err != nil {
		// The instance still serves; the worker can reach it by address.
		f.logger.Error("Failed to announce instance", "error", err)
	}
}

func (f *Function) withdraw() {
	ctx, cancel := context.WithTimeout(context.Background(), withdrawTimeout)
	defer cancel()
	if err := f.announcer.Withdraw(ctx); err != nil && !errors.Is(err, registry.ErrNotAnnounced) {
		f.logger.Warn("Failed to withdraw instance", "error", err)
	}
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if ids := md.Get(RequestIDKey); len(ids) > 0 {
		return ids[0]
	}
	return ""
}
