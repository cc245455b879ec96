// Command insertbench measures the insert rate of an atomichash table.
//
// Usage:
//
//	insertbench [-config bench.toml] [-range 1] [-loops 10000000] [-workers 1]
//	            [-capacity 0] [-log-level info] [-dev] [-metrics-addr :9100]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/llxisdsh/atomichash"
)

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "insertbench:", err)
		os.Exit(1)
	}
}

func realMain(args []string) error {
	cfg, err := parseConfig(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := atomichash.New[uint64, uint64](cfg.TableCapacity())
	reg := prometheus.NewRegistry()
	m := newMetrics(reg, table)

	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg.MetricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("starting",
		zap.Int("capacity", table.Capacity()),
		zap.Int("range", cfg.Range),
		zap.Int("loops", cfg.Loops),
		zap.Int("workers", cfg.Workers))

	res, err := run(ctx, cfg, table, m, log)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	stats := table.Stats()
	log.Info("done",
		zap.Bool("interrupted", err != nil),
		zap.Uint64("inserts", res.Inserts),
		zap.Uint64("failures", res.Failures),
		zap.Duration("elapsed", res.Elapsed),
		zap.Float64("rate", res.Throughput()),
		zap.Float64("occupancy", stats.Occupancy),
		zap.Ints("by_candidate", stats.ByCandidate[:]))
	fmt.Printf("rate: %.0f insert/s, failures: %d\n", res.Throughput(), res.Failures)
	return nil
}

// parseConfig loads the file named by -config and applies the flags that were
// set explicitly on top of it.
func parseConfig(args []string) (Config, error) {
	fs := flag.NewFlagSet("insertbench", flag.ContinueOnError)
	var (
		path        = fs.String("config", "", "path to a TOML configuration file")
		capacity    = fs.Int("capacity", 0, "table capacity (0 sizes the table for -range keys)")
		keyRange    = fs.Int("range", 0, "distinct keys inserted per round")
		loops       = fs.Int("loops", 0, "number of rounds")
		workers     = fs.Int("workers", 0, "number of inserting goroutines")
		logLevel    = fs.String("log-level", "", "log level (debug, info, warn, error)")
		development = fs.Bool("dev", false, "human readable development logging")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*path)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "capacity":
			cfg.Capacity = *capacity
		case "range":
			cfg.Range = *keyRange
		case "loops":
			cfg.Loops = *loops
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "dev":
			cfg.Development = *development
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return srv, nil
}
