package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/client/watch"
)

const shutdownTimeout = 5 * time.Second

func (a *App) watchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep every joined group in sync until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.Metrics.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func (a *App) runWatch(ctx context.Context, metricsAddr string) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	groups := func(ctx context.Context) ([]string, error) {
		joined, err := a.state.ListGroups(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(joined))
		for i, g := range joined {
			ids[i] = g.GroupID
		}
		return ids, nil
	}
	syncGroup := func(ctx context.Context, groupID string) error {
		result, err := svc.Sync(ctx, groupID)
		if err != nil {
			return err
		}
		if len(result.Conflicts) > 0 {
			a.logger.Info("Conflicts waiting for a decision", "group_id", groupID, "conflicts", len(result.Conflicts))
		}
		return nil
	}

	w := watch.New(watch.Config{
		DBPath:   a.cfg.LocalDBPath(),
		Interval: a.cfg.Sync.WatchInterval,
		Debounce: a.cfg.Sync.Debounce,
	}, groups, syncGroup, a.logger)

	if metricsAddr != "" && a.metrics == nil {
		a.logger.Warn("metrics are disabled, ignoring metrics address", "addr", metricsAddr)
	}
	if metricsAddr != "" && a.metrics != nil {
		srv := a.metrics.NewServer(metricsAddr, a.version, a.logger)
		go func() {
			a.logger.Info("Serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("failed to stop metrics server", "error", err)
			}
		}()
	}

	a.io.Println("Watching for changes, press Ctrl+C to stop.")
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	a.io.Printf("Stopped after %d round(s)\n", w.Cycles())
	return nil
}
