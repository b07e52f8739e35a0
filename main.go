package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sleep-dashboard/config"
	"sleep-dashboard/dashboard"
	"sleep-dashboard/models"
	"sleep-dashboard/services"
	"sleep-dashboard/storage"
	"sleep-dashboard/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Sleep Dashboard starting ===")
	logger.Info("Config: data: %s | addr: %q | snapshots: %q | retries: %d",
		cfg.DataFile, cfg.DashboardAddr, cfg.SnapshotDir, cfg.MaxRetries)

	var reader storage.TableReader = storage.NewCSVReader(logger)
	ds, summary, err := loadAndReport(reader, cfg.DataFile, os.Stdout, logger)
	if err != nil {
		logger.Error("%v. Exiting.", err)
		os.Exit(1)
	}

	specs := services.NewVisualizer(logger).Build(ds)
	dash, err := dashboard.NewRenderer(cfg.DashboardTitle, logger).Render(specs, ds.Len())
	if err != nil {
		logger.Error("Failed to render dashboard: %v", err)
		os.Exit(1)
	}

	if cfg.DashboardOutput != "" {
		if err := os.WriteFile(cfg.DashboardOutput, dash.Page, 0o644); err != nil {
			logger.Error("Failed to write dashboard page: %v", err)
		} else {
			logger.Info("Dashboard page saved to %s", cfg.DashboardOutput)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SnapshotDir != "" {
		snapshotter := dashboard.NewSnapshotter(cfg.SnapshotDir, cfg.ChromeBin, cfg.SnapshotWorkers, cfg.MaxRetries, logger)
		if _, err := snapshotter.Snapshot(ctx, dash); err != nil {
			logger.Warn("Chart snapshots failed: %v", err)
		}
	}

	if !cfg.ServeDashboard() {
		fmt.Printf("\n  Done. %d nights charted.\n\n", ds.Len())
		return
	}

	server := dashboard.NewServer(dash, summary, logger)
	shutdownTimeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	if err := server.ListenAndServe(ctx, cfg.DashboardAddr, shutdownTimeout); err != nil {
		logger.Error("Dashboard server failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Dashboard stopped")
}

var errNoRows = errors.New("no rows left after cleaning")

// loadAndReport reads and cleans path, then prints the console report to out.
// The report is printed even when every row was dropped, in which case
// errNoRows is returned.
func loadAndReport(reader storage.TableReader, path string, out io.Writer, logger *utils.Logger) (*models.Dataset, *models.Summary, error) {
	raw, err := reader.Read(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	ds := services.NewCleaner(logger).Clean(raw)
	summary := services.NewStatsService(logger).Generate(ds)
	services.NewReporter(out).Print(raw.Columns, ds, summary)

	if ds.Len() == 0 {
		return nil, nil, fmt.Errorf("%w (all %d rows dropped)", errNoRows, len(raw.Rows))
	}
	return ds, summary, nil
}
