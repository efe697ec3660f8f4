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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/metrics"
	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/rpc"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC engine and the HTTP health/metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log := cfg.Logger(os.Stderr)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	store, err := traitstore.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := profile.NewService(store,
		refine.NewEngine(cat, cfg.RefineConfig(), log),
		gate.NewGate(cfg.GateConfig()),
		profile.WithLogger(log),
		profile.WithMetrics(metrics.New(reg)),
	)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	grpcServer := rpc.NewGRPCServer(svc, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(svc, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().
		Str("grpc_addr", cfg.GRPCAddr).
		Str("http_addr", cfg.HTTPAddr).
		Str("db", cfg.DBPath).
		Int("questions", cat.Len()).
		Msg("profile engine starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		grpcServer.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
