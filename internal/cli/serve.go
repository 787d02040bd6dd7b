package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/internal/fetcher"
	"github.com/me/concdemo/internal/mainloop"
	"github.com/me/concdemo/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var (
		addr          string
		assetsDir     string
		maxConcurrent int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("assets") {
				cfg.Server.AssetsDir = assetsDir
			}
			if cmd.Flags().Changed("max-concurrent") {
				cfg.MaxConcurrent = maxConcurrent
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			priorities, err := cfg.TaskPriorities()
			if err != nil {
				return err
			}

			loop := mainloop.New(logger, 0)

			httpCfg := fetcher.DefaultHTTPConfig()
			httpCfg.UserAgent = cfg.UserAgent
			if cfg.FetchTimeout > 0 {
				httpCfg.Timeout = cfg.FetchTimeout.Std()
			}
			reg := fetcher.NewDefaultRegistry(httpCfg, cfg.BaseDir, logger)
			ctrl := demo.NewController(demo.Config{
				Images:        cfg.Images,
				MaxConcurrent: cfg.MaxConcurrent,
				Priorities:    priorities,
			}, reg, loop, logger)

			srv := server.New(cfg.Server, ctrl, logger)
			httpServer := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: srv.Handler(),
			}

			// Graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				logger.Info("server starting", "addr", cfg.Server.Addr, "images", len(cfg.Images))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")

				// Cancel outstanding batches before the HTTP server goes away.
				for _, b := range ctrl.Batches() {
					b.Cancel()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&assetsDir, "assets", "", "Directory served under /images/ (offline image sources)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Queue limit for blocks and operations modes (0 = unbounded)")

	return cmd
}
