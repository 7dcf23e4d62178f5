package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/logfields"
	"git.home.luguber.info/inful/checkem/internal/metrics"
	"git.home.luguber.info/inful/checkem/internal/observability"
	"git.home.luguber.info/inful/checkem/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Once        bool          `help:"Check every target once and exit"`
	Interval    time.Duration `help:"Override the scan interval from configuration (0 keeps it)"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	targets, err := watch.TargetsFromConfig(g.Config.Watch)
	if err != nil {
		return errors.ConfigError("invalid watch targets").WithCause(err).Build()
	}
	if len(targets) == 0 {
		return errors.ConfigError("no watch targets configured").
			WithContext("path", root.Config).
			Build()
	}

	ctx, cancel := signal.NotifyContext(commandContext("watch"), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if addr := c.metricsAddr(g); addr != "" && !c.Once {
		stop := serveMetrics(ctx, g, addr)
		defer stop()
	}

	s, err := openTracker(ctx, g, root)
	if err != nil {
		return err
	}

	if c.Once {
		runner := watch.NewRunner(s.tracker, targets, watch.WithLogger(g.Logger))
		results, scanErr := runner.Scan(ctx)
		finishErr := s.finish(ctx)
		return firstError(printResults(g, results), scanErr, finishErr)
	}

	runner := watch.NewRunner(s.tracker, targets,
		watch.WithLogger(g.Logger),
		watch.OnChange(func(_ context.Context, res watch.Result) {
			_, _ = fmt.Fprintf(g.Stdout, "%s\tchanged\n", res.Target.Key)
		}),
	)
	observability.InfoContext(ctx, g.Logger, "Watching targets", logfields.Records(len(runner.Targets())))
	if _, err := runner.Scan(ctx); err != nil {
		g.Logger.Error("Initial scan failed", logfields.Error(err))
	}

	interval := c.Interval
	if interval == 0 {
		interval = g.Config.Watch.Interval.Std()
	}
	if interval > 0 {
		if err := runner.Schedule(ctx, interval); err != nil {
			s.close()
			return errors.WatchError("failed to start scheduler").WithCause(err).Build()
		}
		defer func() { _ = runner.Stop() }()
	}

	watchErr := runner.WatchFiles(ctx)
	observability.InfoContext(ctx, g.Logger, "Shutdown signal received, stopping watch")
	return firstError(watchErr, s.finish(context.WithoutCancel(ctx)))
}

func (c *WatchCmd) metricsAddr(g *Global) string {
	if c.MetricsAddr != "" {
		return c.MetricsAddr
	}
	if g.Config.Metrics.Enabled {
		return g.Config.Metrics.Listen
	}
	return ""
}

// serveMetrics installs a Prometheus recorder on g and serves it on addr.
// The returned function shuts the server down.
func serveMetrics(ctx context.Context, g *Global, addr string) func() {
	reg := metrics.NewRegistry()
	g.Recorder = metrics.NewPrometheusRecorder(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.Logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	observability.InfoContext(ctx, g.Logger, "Serving metrics", logfields.Path(addr+"/metrics"))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// printResults writes one line per result and returns the first target error.
func printResults(g *Global, results []watch.Result) error {
	var first error
	for _, res := range results {
		if res.Err != nil {
			_, _ = fmt.Fprintf(g.Stdout, "%s\terror\t%v\n", res.Target.Key, res.Err)
			if first == nil {
				first = res.Err
			}
			continue
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s\t%s\n", res.Target.Key, changedWord(res.Changed))
	}
	return first
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
