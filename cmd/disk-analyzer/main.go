package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/burace17/disk-analyzer/internal/config"
	"github.com/burace17/disk-analyzer/internal/history"
	"github.com/burace17/disk-analyzer/internal/logging"
	"github.com/burace17/disk-analyzer/internal/metrics"
	"github.com/burace17/disk-analyzer/internal/report"
	"github.com/burace17/disk-analyzer/internal/scanner"
	"github.com/burace17/disk-analyzer/internal/tree"
	"github.com/burace17/disk-analyzer/internal/tui"
	"github.com/burace17/disk-analyzer/internal/volumes"
)

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	jsonOut     bool
	junkOnly    bool
	depth       int
	noHistory   bool
	metricsAddr string
	sinceDays   int
)

var rootCmd = &cobra.Command{
	Use:          "disk-analyzer",
	Short:        "Measure disk usage per directory",
	Long:         `Scan a directory tree, see where the space went, and spot junk worth cleaning.`,
	SilenceUsage: true,
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan directory for disk usage",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()

		rec := newRecorder(cfg, log)
		defer rec.Close()

		if metricsAddr != "" {
			stop := serveMetrics(metricsAddr, rec.metrics, log)
			defer stop()
		}

		if jsonOut || junkOnly {
			return runJSONScan(cmd.Context(), cfg, log, rec, absPath)
		}

		return tui.Run(tui.Options{
			Config: cfg,
			Logger: log,
			OnScan: rec.Record,
		}, absPath)
	},
}

func runJSONScan(ctx context.Context, cfg *config.Config, log *zap.Logger, rec *recorder, path string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scanner.New(
		scanner.WithLogger(log),
		scanner.WithMaxDepth(cfg.Scan.MaxDepth),
		scanner.WithExclude(cfg.Scan.Exclude),
	)

	started := time.Now()
	root, scanErr := s.ScanContext(ctx, path)
	rec.Record(root, started, time.Since(started))

	// Partial results are printed even when the scan was interrupted.
	err := report.WriteJSON(os.Stdout, root, report.JSONOptions{
		MaxDepth: depth,
		Matcher:  scanner.NewMatcher(cfg.JunkPatterns),
		JunkOnly: junkOnly,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, report.Summary(root))
	return scanErr
}

// recorder stores finished scans in history and metrics. Either may be
// absent; a missing history database is not fatal.
type recorder struct {
	log     *zap.Logger
	db      *history.DB
	metrics *metrics.Metrics
}

func newRecorder(cfg *config.Config, log *zap.Logger) *recorder {
	r := &recorder{log: log, metrics: metrics.New()}
	if noHistory || !cfg.History.Enabled {
		return r
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("history unavailable", zap.String("path", cfg.History.Path), zap.Error(err))
		return r
	}
	r.db = db
	return r
}

func (r *recorder) Record(root *tree.Directory, started time.Time, elapsed time.Duration) {
	r.metrics.ObserveScan(root, elapsed)
	if r.db == nil {
		return
	}
	id, err := r.db.Record(history.NewRun(root, started, elapsed))
	if err != nil {
		r.log.Warn("recording scan failed", zap.Error(err))
		return
	}
	r.log.Debug("scan recorded", zap.String("id", id))
}

func (r *recorder) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// serveMetrics exposes m on addr until the returned func is called.
func serveMetrics(addr string, m *metrics.Metrics, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List volumes that can be scanned",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vols, err := volumes.List()
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(vols)
		}

		for _, v := range vols {
			fmt.Printf("%-12s %s\n", v.Label, v.Path)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "Search scan history",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		var runs []history.Run

		if len(args) > 0 {
			runs, err = db.Search(args[0])
		} else if sinceDays > 0 {
			since := time.Now().AddDate(0, 0, -sinceDays)
			runs, err = db.Since(since)
		} else {
			since := time.Now().AddDate(0, 0, -7)
			runs, err = db.Since(since)
		}

		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Println("No scans found")
			return nil
		}

		for _, run := range runs {
			fmt.Printf("%s | %s | %-9s | %10s | %s\n",
				run.ID[:8],
				run.StartedAt.Local().Format("2006-01-02 15:04"),
				run.Outcome,
				report.FormatSize(run.TotalSize),
				run.Root)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/disk-analyzer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	scanCmd.Flags().IntVar(&depth, "depth", 3, "nesting depth of JSON children (0 for unlimited)")
	scanCmd.Flags().BoolVar(&junkOnly, "junk", false, "show only detected junk")
	scanCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the scan in history")
	scanCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(scanCmd)

	volumesCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.AddCommand(volumesCmd)

	historyCmd.Flags().IntVar(&sinceDays, "since", 0, "show scans from last N days")
	historyCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
