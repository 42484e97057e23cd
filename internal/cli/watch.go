package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/health"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/monitor"
	"github.com/rileyhilliard/gpumon/internal/observability"
)

// shutdownTimeout bounds the HTTP server's graceful shutdown.
const shutdownTimeout = 5 * time.Second

var watchMetricsAddr string

// watchCmd polls without a TUI.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll headlessly, logging samples and serving metrics",
	Long: `Poll on the refresh interval without a dashboard. Every poll logs one
line per GPU to stderr. With a metrics address set, Prometheus metrics,
health probes and the latest samples are served over HTTP:

  /metrics      Prometheus exposition
  /healthz      liveness
  /readyz       ready once a poll has succeeded
  /api/devices  latest samples as JSON

Examples:
  gpumon watch
  gpumon watch --metrics-addr :9400
  gpumon watch --interval 10 --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr = watchMetricsAddr
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}
		return runWatch(cmd.Context(), cfg, cfgPath, cmd.ErrOrStderr())
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve metrics and the device API on this address (e.g., :9400)")
	rootCmd.AddCommand(watchCmd)
}

// runWatch polls until ctx is cancelled or the process is interrupted.
func runWatch(ctx context.Context, cfg *config.Config, cfgPath string, out io.Writer) error {
	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	log := newLogger(cfg, out, "watch")
	logger.SetDefault(log)
	metrics := observability.NewMetrics(instanceID)
	state := monitor.NewState(cfg.HistorySize, nil)

	scheduler := monitor.NewScheduler(monitor.SchedulerConfig{
		Source:   gpu.NewQuerier(cfg.Command, cfg.QueryTimeout),
		State:    state,
		Interval: cfg.Interval(),
		Logger:   log,
		Observer: metrics,
		OnResult: func(res monitor.PollResult) {
			logSamples(log, res)
		},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := health.NewServer(cfg.MetricsAddr, metrics, state)
		if err := srv.Start(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't listen on %s", cfg.MetricsAddr),
				"Pick a free port with --metrics-addr or 'metrics_addr' in your config")
		}
		log.Info("serving metrics on http://%s/metrics", srv.Addr())

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		})
	}

	if cfgPath != "" {
		watchSchedulerConfig(cfgPath, cfg, scheduler, log)
	}

	g.Go(func() error {
		log.Info("watching GPUs: instance=%s interval=%s command=%s", instanceID, cfg.Interval(), cfg.Command)
		scheduler.Start(gctx)
		<-gctx.Done()
		scheduler.Close()
		scheduler.Wait()
		log.Info("stopped")
		return nil
	})

	return g.Wait()
}

// logSamples writes one line per device for a successful poll. Failures
// are logged, throttled, by the scheduler.
func logSamples(log logger.Logger, res monitor.PollResult) {
	if res.Err != nil {
		return
	}
	if len(res.Samples) == 0 {
		log.Info("%s", monitor.NoDataMessage)
		return
	}
	for _, s := range res.Samples {
		log.Info("%s", monitor.SummaryLine(s))
	}
}

// watchSchedulerConfig applies live interval edits to a headless
// scheduler. Display flags have no effect without a dashboard.
func watchSchedulerConfig(path string, running *config.Config, s *monitor.Scheduler, log logger.Logger) {
	current := running
	err := config.Watch(path, func(next *config.Config, err error) {
		if err != nil {
			log.Warn("ignoring config change: %v", err)
			return
		}
		if config.Diff(current, next).Interval {
			log.Info("refresh interval changed to %s", s.SetInterval(next.Interval()))
		}
		current = next
	})
	if err != nil {
		log.Warn("config watch disabled: %v", err)
	}
}
