package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"image-tagger/internal/filesystem"
	"image-tagger/internal/handlers"
	"image-tagger/internal/logging"
	"image-tagger/internal/metrics"
	"image-tagger/internal/middleware"
	"image-tagger/internal/startup"
	"image-tagger/internal/watcher"
	"image-tagger/internal/workspace"
)

const (
	shutdownTimeout  = 30 * time.Second
	metricsInterval  = 15 * time.Second
	reloadTimeout    = 2 * time.Minute
	readHeaderPeriod = 15 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port        string
		metricsPort string
		watch       bool
		noMetrics   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for the image directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("metrics-port") {
				cfg.MetricsPort = metricsPort
			}
			if flags.Changed("watch") {
				cfg.Watch = watch
			}
			if flags.Changed("no-metrics") {
				cfg.MetricsEnabled = !noMetrics
			}
			return runServer(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides PORT)")
	cmd.Flags().StringVar(&metricsPort, "metrics-port", "", "Metrics port (overrides METRICS_PORT)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload when images are added or removed (overrides WATCH)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the metrics server")
	return cmd
}

func runServer(ctx context.Context, opts *rootOptions) error {
	startTime := time.Now()
	cfg := opts.cfg

	startup.LogStartup(cfg)

	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	// Load the directory
	ws, err := workspace.Open(ctx, opts.workspaceOptions())
	if err != nil {
		return err
	}
	stats := ws.Stats()
	startup.LogWorkspaceInit(stats.Dir, stats.TotalImages, stats.VocabularySize, time.Since(startTime))
	startup.LogCatalogInit(cfg.CatalogPath)

	collector := metrics.NewCollector(ws, metricsInterval)
	collector.Start()

	// Optional directory watcher
	var dirWatcher *watcher.Watcher
	if cfg.Watch {
		dirWatcher, err = watcher.New(watcher.Options{
			Dir:        ws.Dir(),
			Extensions: cfg.Extensions(),
			Debounce:   cfg.WatchDebounce,
			OnChange: func() {
				reloadCtx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
				defer cancel()
				if err := ws.Reload(reloadCtx); err != nil && !errors.Is(err, workspace.ErrClosed) {
					logging.Error("Reload after directory change failed: %v", err)
				}
			},
		})
		if err != nil {
			logging.Warn("Directory watcher unavailable: %v", err)
		} else {
			dirWatcher.Start()
		}
	}
	startup.LogWatcherInit(dirWatcher != nil, cfg.WatchDebounce)

	// HTTP API
	router := handlers.NewRouter(handlers.New(ws))
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: readHeaderPeriod,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: readHeaderPeriod,
		}
	}

	serverErr := make(chan error, 2)
	go serve(srv, "HTTP server", serverErr)
	if metricsSrv != nil {
		go serve(metricsSrv, "Metrics server", serverErr)
	}

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsPort:     cfg.MetricsPort,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case <-ctx.Done():
		startup.LogShutdownInitiated("context cancellation")
	case runErr = <-serverErr:
		startup.LogShutdownInitiated("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if dirWatcher != nil {
		startup.LogShutdownStep("Stopping directory watcher")
		if err := dirWatcher.Stop(); err != nil {
			logging.Warn("Watcher shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Directory watcher stopped")
		}
	}

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Writing pending tag files")
	if err := ws.Close(); err != nil {
		logging.Error("Failed to write pending tag files: %v", err)
		runErr = errors.Join(runErr, err)
	} else {
		startup.LogShutdownStepComplete("Pending tag files written")
	}

	startup.LogShutdownComplete()
	return runErr
}

func serve(srv *http.Server, name string, errs chan<- error) {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("%s error: %v", name, err)
		errs <- err
	}
}
