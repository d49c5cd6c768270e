package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedcal/internal/autosave"
	"schedcal/internal/catalog"
	"schedcal/internal/config"
	appLog "schedcal/internal/log"
	"schedcal/internal/scheduler"
	"schedcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	check      bool
}

func main() {
	appLog.Info("schedcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"catalog", conf.Catalog,
		"export_path", conf.ExportPath,
		"export_cron", conf.ExportCron,
		"timezone", conf.Timezone,
		"term_start", conf.TermStart,
		"term_weeks", conf.TermWeeks,
		"check", flags.check,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.check {
		if _, err := checkCatalog(ctx, conf); err != nil {
			appLog.Error("catalog check failed", err, "catalog", conf.Catalog)
			os.Exit(1)
		}
		return
	}

	courses, err := catalog.Load(ctx, conf.Catalog, catalog.NewFetcher(conf.CatalogCacheDir))
	if err != nil {
		appLog.Error("failed to load catalog", err, "catalog", conf.Catalog)
		os.Exit(1)
	}
	sched := scheduler.New(courses)
	sched.SetTitle(conf.ScheduleTitle)

	if err := run(ctx, conf, sched); err != nil {
		appLog.Error("schedcal exited with error", err)
		os.Exit(1)
	}
	appLog.Info("schedcal exiting")
}

// checkCatalog loads the configured catalog and reports what it holds. The
// export file is never touched.
func checkCatalog(ctx context.Context, conf *config.Config) (int, error) {
	courses, err := catalog.Load(ctx, conf.Catalog, catalog.NewFetcher(conf.CatalogCacheDir))
	if err != nil {
		return 0, err
	}

	arranged := 0
	for _, c := range courses {
		if c.Meeting().IsArranged() {
			arranged++
		}
	}
	appLog.Info("catalog check passed",
		"catalog", conf.Catalog,
		"course_count", len(courses),
		"arranged_count", arranged,
	)
	return len(courses), nil
}

// run serves the HTTP API and the optional autosave job until ctx is
// canceled.
func run(ctx context.Context, conf *config.Config, sched *scheduler.Scheduler) error {
	var saver *autosave.Saver
	if conf.ExportCron != "" {
		s, err := autosave.New(sched, conf.ExportPath, conf.ExportCron, conf.Location())
		if err != nil {
			return err
		}
		saver = s
		saver.Start()
	}

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, sched).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
	if saver != nil {
		saver.Stop(shutdownCtx)
		// Final save so nothing since the last tick is lost.
		saver.RunOnce()
	}
	return serveErr
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.check, "check", false, "Load and validate the catalog, report it and exit without writing anything")

	flag.Parse()

	return cfg
}
