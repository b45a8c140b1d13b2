// Command staticd serves files from a directory over HTTP. Settings
// come from an optional TOML or JSON config file; flags override it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/staticd/internal/config"
	"example.com/staticd/internal/fileserve"
	"example.com/staticd/internal/logger"
	"example.com/staticd/internal/pool"
	"example.com/staticd/internal/server"
	"example.com/staticd/internal/stats"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "staticd:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to a .toml or .json config file")
		addr        = flag.String("addr", "", "listen address (overrides config)")
		port        = flag.Int("port", 0, "listen port (overrides config)")
		dir         = flag.String("dir", "", "directory to serve (overrides config)")
		threads     = flag.Int("threads", 0, "worker pool size (overrides config)")
		noListDir   = flag.Bool("no-list-dir", false, "disable directory listings")
		quiet       = flag.Bool("quiet", false, "suppress the per-request table on stdout")
		logLevel    = flag.String("log-level", "", "log level: trace, debug, info, warn, error")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this host:port")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dir != "" {
		cfg.Files.BaseDir = *dir
	}
	if *threads != 0 {
		cfg.Server.Threads = *threads
	}
	if *noListDir {
		enabled := false
		cfg.Files.ListDir = &enabled
	}
	if *quiet {
		verbose := false
		cfg.Verbose = &verbose
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *metricsAddr != "" {
		enabled := true
		cfg.Metrics = &config.MetricsConfig{Enabled: &enabled, Address: *metricsAddr}
	}

	cfg, err := config.Finalize(cfg)
	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	var recorders stats.Multi
	if *cfg.Verbose {
		recorders = append(recorders, stats.NewTable(os.Stdout))
	}

	var metricsSrv *stats.MetricsServer
	if *cfg.Metrics.Enabled {
		prom := stats.NewProm()
		recorders = append(recorders, prom)
		metricsSrv = stats.NewMetricsServer(cfg.Metrics.Address, prom, log)
	}

	p, err := pool.New(cfg.Server.Threads, log)
	if err != nil {
		return err
	}

	handler, err := fileserve.New(fileserve.Config{
		BaseDir:    cfg.Files.BaseDir,
		ListDir:    *cfg.Files.ListDir,
		IndexFiles: cfg.Files.IndexFiles,
	}, log)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, log, p, handler, recorders)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsSrv != nil {
		go func() {
			if err := metricsSrv.Start(); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			metricsSrv.Stop(shutdownCtx)
		}()
	}

	return srv.ListenAndServe(ctx)
}
