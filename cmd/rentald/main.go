package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/config"
	"github.com/nikolayk812/rentals/internal/httpapi"
	"github.com/nikolayk812/rentals/internal/inventory"
	"github.com/nikolayk812/rentals/internal/lifecycle"
	"github.com/nikolayk812/rentals/internal/pickup"
	"github.com/nikolayk812/rentals/internal/port"
	"github.com/nikolayk812/rentals/internal/repository"
	"github.com/nikolayk812/rentals/internal/repository/inmem"
	"github.com/nikolayk812/rentals/internal/returns"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const (
	shutdownTimeout = 10 * time.Second
	pingInterval    = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rentald stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	now := func() time.Time { return time.Now().UTC() }

	var (
		store port.Store
		ping  func(context.Context) error
	)

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("pgxpool.New: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("pool.Ping: %w", err)
		}

		store = repository.NewStore(pool)
		ping = pool.Ping
	case config.StoreMemory:
		logger.Warn("using in-memory store, state is lost on restart")
		store = inmem.NewStore()
		ping = func(context.Context) error { return nil }
	}

	renderer, err := pickup.NewRenderer()
	if err != nil {
		return fmt.Errorf("pickup.NewRenderer: %w", err)
	}

	ledger := inventory.NewLedger(store, cfg.OperationTimeout, logger)

	service, err := lifecycle.NewService(store, pickup.NewGenerator(renderer, now), lifecycle.Config{
		Schedule: cfg.FeeSchedule,
		Timeout:  cfg.OperationTimeout,
	}, now, logger)
	if err != nil {
		return fmt.Errorf("lifecycle.NewService: %w", err)
	}

	processor := returns.NewProcessor(service, cfg.Conditions, cfg.FeeSchedule, now, logger)

	api := httpapi.NewServer(ledger, service, processor, httpapi.NewStaticTokens(cfg.Tokens), logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("net.Listen[%s]: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", zap.String("addr", cfg.HTTPAddr), zap.String("store", string(cfg.Store)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("grpc health server started", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpcServer.Serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		watchStore(gctx, healthServer, ping, pingInterval, logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		stopGRPC(shutdownCtx, grpcServer, logger)

		if err != nil {
			return fmt.Errorf("httpServer.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

type grpcStopper interface {
	GracefulStop()
	Stop()
}

// stopGRPC drains in-flight RPCs until ctx expires, then closes whatever is
// left. Health Watch streams never end on their own.
func stopGRPC(ctx context.Context, srv grpcStopper, logger *zap.Logger) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("grpc graceful stop timed out, forcing", zap.Error(ctx.Err()))
		srv.Stop()
		<-done
	}
}

// watchStore flips the health status when the store stops answering pings.
func watchStore(ctx context.Context, hs *health.Server, ping func(context.Context) error, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		err := ping(pingCtx)
		cancel()

		switch {
		case err != nil && serving:
			logger.Warn("store ping failed", zap.Error(err))
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			logger.Info("store ping recovered")
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}
