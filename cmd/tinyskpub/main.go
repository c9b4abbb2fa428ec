// Command tinyskpub samples the configured sensors and publishes framed
// telemetry on a single zeromq PUB socket at per-sensor rates (§1).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tinyskpub/internal/config"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/metrics"
	"tinyskpub/internal/pipeline"
	"tinyskpub/internal/reader"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "tinyskpub",
		Short:        "Multi-sensor telemetry publisher",
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (required)")
	_ = root.MarkFlagRequired("config")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dest := cfg.Log.Filename
	if dest == "" {
		dest = "stdout"
	}
	logging.Init(logging.ParseLevel(cfg.Log.Level), dest, cfg.Log.Pattern)
	defer logging.Close()

	logging.L().Info("═══════════════════════════════════════════")
	logging.L().Info("  tinyskpub — multi-sensor telemetry publisher")
	logging.L().Info("  GOMAXPROCS=%d  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	logging.L().Info("═══════════════════════════════════════════")
	logging.L().Info("config: %s, sensors: %v", configPath, cfg.Sensors)

	reg := reader.NewDefaultRegistry()
	m := metrics.New()

	p, err := pipeline.New(cfg, reg, m)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.App.MetricsAddr != "" {
		go m.Serve(ctx, cfg.App.MetricsAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	p.Start(ctx)
	logging.L().Info("pipeline running — press Ctrl+C to stop")

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logging.L().Warn("received signal: %v — shutting down", sig)
			goto shutdown
		case <-statsTicker.C:
			logging.L().Info("stats: total_read_bytes=%d", reader.TotalReadBytes.Load())
		}
	}

shutdown:
	cancel()
	p.Stop()
	logging.L().Info("shutdown complete")
	return nil
}
