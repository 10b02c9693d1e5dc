package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"election-dashboard/internal/config"
	"election-dashboard/internal/handlers"
	"election-dashboard/internal/services"
)

const (
	AppVersion = "1.0.0"
)

var (
	configFile string
	verbose    bool
	outFile    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "election-dashboard",
	Short:   "Indian election results dashboard (1962–2019)",
	Version: AppVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Logging.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the data files and serve the dashboard",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the aggregate tables to an XLSX workbook",
	RunE:  runExport,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print what was loaded from the data files",
	RunE:  runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "aggregates.xlsx", "output workbook path")

	rootCmd.AddCommand(serveCmd, exportCmd, summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		level = "debug"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = atomic
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func loadDataset(ctx context.Context) (*services.Dataset, error) {
	if err := cfg.CheckDataFiles(); err != nil {
		return nil, err
	}
	logger.Info("using data files",
		zap.String("results", cfg.ResultsPath()),
		zap.String("boundaries", cfg.BoundariesPath()),
	)
	return services.LoadDataset(ctx, cfg, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("starting election dashboard", zap.String("version", AppVersion))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handlers.NewRouter(cfg, handlers.RouterDeps{
		Dashboard: services.NewDashboardService(data, cfg.Data.FuzzyJoin, cfg.Cache.TTL, cfg.Cache.CleanupInterval, logger),
		Export:    services.NewExportService(data, logger),
		Registry:  registry,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", outFile, err)
	}
	defer f.Close()

	if err := services.NewExportService(data, logger).WriteWorkbook(f); err != nil {
		return err
	}
	logger.Info("workbook written", zap.String("path", outFile))
	return f.Close()
}

func runSummary(cmd *cobra.Command, args []string) error {
	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	dashboard := services.NewDashboardService(data, cfg.Data.FuzzyJoin, cfg.Cache.TTL, cfg.Cache.CleanupInterval, logger)
	out, err := json.MarshalIndent(dashboard.Summary(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
