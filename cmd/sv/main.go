// Package main implements sv, a terminal viewer for catalogs of expandable
// sections.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/vanderheijden86/sectionview/pkg/config"
	"github.com/vanderheijden86/sectionview/pkg/loader"
	"github.com/vanderheijden86/sectionview/pkg/store"
	"github.com/vanderheijden86/sectionview/pkg/ui"
)

var (
	// configPath overrides .sectionview/config.yaml
	configPath string
	// metricsAddr overrides metrics.addr
	metricsAddr string
	// version information, set at build time
	version = "dev"

	timeNow = time.Now
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sv",
	Short: "Browse a catalog of expandable sections",
	Long: `sv shows the catalog in .sectionview/catalog.yaml as a list of sections.
Expandable sections open and close in place; remote sections load their rows
from the local row store the first time they are opened.

sv looks for .sectionview/ in the current directory and its parents.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	RunE:          runView,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .sectionview/config.yaml)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. localhost:9464)")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sv version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sv %s\n", version)
	},
}

// runView starts the TUI.
func runView(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("sv needs an interactive terminal; use 'sv seed' for scripted setup")
	}

	root, err := findProject()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := loader.EnsureIgnored(root, config.StateDirName); err != nil {
		logger.Warn("cannot update .gitignore", zap.Error(err))
	}

	cat, hash, err := loader.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("%w (create %s, see 'sv seed --help')", err, cfg.Data.Catalog)
	}

	rows, err := store.Open(cfg.Data.Database)
	if err != nil {
		return err
	}
	defer rows.Close()

	var reg *prometheus.Registry
	if cfg.Metrics.Addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("root", root),
		zap.Int("sections", len(cat.Sections)))

	opts := ui.Options{
		Catalog:     cat,
		CatalogPath: cfg.Data.Catalog,
		CatalogHash: hash,
		Fetcher:     rows,
		Config:      cfg,
		Logger:      logger,
	}
	if reg != nil {
		opts.Registry = reg
	}
	m := ui.NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if err := m.Start(p); err != nil {
		logger.Warn("catalog watcher disabled", zap.Error(err))
	}
	defer m.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running sv: %w", err)
	}
	return nil
}

// loadConfig loads the project config and applies command line overrides.
// Overrides are validated like file and environment settings.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("--metrics-addr: %w", err)
		}
	}
	return cfg, nil
}

// findProject returns the project root, or an error suggesting nearby
// projects when sv runs outside of one.
func findProject() (string, error) {
	if root, ok := config.DetectRoot(); ok {
		return root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("no %s directory found in %s or its parents", config.StateDirName, cwd)
	if found := config.ScanForRoots(cwd, 3); len(found) > 0 {
		msg += "\n\nProjects below this directory:\n  " + strings.Join(found, "\n  ")
	}
	return "", errors.New(msg)
}

// newLogger builds a JSON file logger. The terminal belongs to the TUI.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	zc.Sampling = nil
	return zc.Build()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
