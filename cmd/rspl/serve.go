package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/server"
)

const (
	shutdownTimeout     = 30 * time.Second
	healthCheckInterval = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, logger, false)
			if err != nil {
				return err
			}

			httpSrv := server.NewHTTPServer(cfg.Server.HTTPAddr, server.NewHandler(server.Deps{
				Jobs:             a.orch,
				Logger:           logger,
				MaxDocumentBytes: extract.MaxBytesFromMB(cfg.Pipeline.MaxDocumentMB),
				Offline:          a.offline,
				Health:           a.jobs,
			}))
			httpSrv.BaseContext = func(net.Listener) context.Context { return ctx }

			grpcSrv, health := server.NewGRPCServer(logger)
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				a.close(context.Background())
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("http.listening", "addr", cfg.Server.HTTPAddr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				logger.Info("grpc.listening", "addr", lis.Addr().String())
				return grpcSrv.Serve(lis)
			})
			g.Go(func() error {
				server.WatchHealth(gctx, health, a.jobs, healthCheckInterval, logger)
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("serve.shutdown.start")
				health.Shutdown()

				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err := httpSrv.Shutdown(sctx)
				grpcSrv.GracefulStop()
				a.close(sctx)
				logger.Info("serve.shutdown.done")
				return err
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	return cmd
}
