package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/internal/fetcher"
	"github.com/me/concdemo/internal/mainloop"
	"github.com/me/concdemo/internal/opqueue"
	"github.com/me/concdemo/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		modeName      string
		images        []string
		maxConcurrent int
		baseDir       string
		slider        float64
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the gallery locally with one scheduling mode",
		Long: `Runs one batch in this process and prints the resulting gallery.

Each image fetch is a task on a fresh work queue. Progress lines are written
from the main loop as tasks change state. Ctrl-C cancels the batch: tasks that
have not started are cancelled, running fetches are interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := demo.ParseMode(modeName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("image") {
				cfg.Images = images
			}
			if cmd.Flags().Changed("max-concurrent") {
				cfg.MaxConcurrent = maxConcurrent
			}
			if cmd.Flags().Changed("base-dir") {
				cfg.BaseDir = baseDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			priorities, err := cfg.TaskPriorities()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			// The main loop owns all output while the batch runs.
			loop := mainloop.New(logger, 0)
			loopCtx, stopLoop := context.WithCancel(context.Background())
			go loop.Run(loopCtx)
			defer func() {
				stopLoop()
				<-loop.Done()
			}()

			httpCfg := fetcher.DefaultHTTPConfig()
			httpCfg.UserAgent = cfg.UserAgent
			if cfg.FetchTimeout > 0 {
				httpCfg.Timeout = cfg.FetchTimeout.Std()
			}
			reg := fetcher.NewDefaultRegistry(httpCfg, cfg.BaseDir, logger)

			var opts []demo.Option
			if !quiet {
				opts = append(opts, demo.WithTaskObserver(func(batchID string, ev opqueue.Event) {
					loop.Post(func() {
						fmt.Fprintf(out, "  %-12s %s -> %s\n", ev.Name, ev.From, ev.To)
					})
				}))
			}
			ctrl := demo.NewController(demo.Config{
				Images:        cfg.Images,
				MaxConcurrent: cfg.MaxConcurrent,
				Priorities:    priorities,
			}, reg, loop, logger, opts...)

			if cmd.Flags().Changed("slider") {
				if _, err := ctrl.SetSlider(slider); err != nil {
					return err
				}
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := ctrl.Start(mode)
			if err != nil {
				return err
			}
			if !quiet {
				loop.Post(func() {
					fmt.Fprintf(out, "Batch %s started (%s: %s)\n", b.ID(), mode, mode.Description())
				})
			}

			finished := make(chan struct{})
			go func() {
				select {
				case <-sigCtx.Done():
					logger.Info("interrupt received, cancelling batch", "batch_id", b.ID())
					b.Cancel()
				case <-finished:
				}
			}()
			err = b.Wait(context.Background())
			close(finished)
			if err != nil {
				return err
			}

			snapCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			g, err := ctrl.Gallery().Snapshot(snapCtx)
			if err != nil {
				return err
			}

			rec := b.Snapshot()
			fmt.Fprintln(out)
			printBatch(out, rec)
			printGallery(out, g)

			if rec.State == model.BatchStateFailed {
				return fmt.Errorf("batch %s: %d of %d fetches failed", rec.ID, rec.TaskSummary.Failed, rec.TaskSummary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", string(demo.ModeOperations), "Scheduling mode (concurrent, serial, blocks, operations)")
	cmd.Flags().StringSliceVar(&images, "image", nil, "Image source (URL or path); repeat to override the configured list")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Queue limit for blocks and operations modes (0 = unbounded)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Base directory for relative image paths")
	cmd.Flags().Float64Var(&slider, "slider", 0, "Slider position in [0,1] to show alongside the gallery")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress lines")

	return cmd
}
