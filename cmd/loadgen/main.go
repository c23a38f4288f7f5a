// Command loadgen runs one HTTP load test described by a JSON config
// document and writes its result to CSV and the console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"loadgen/internal/config"
	"loadgen/internal/engine"
	"loadgen/internal/export"
	"loadgen/internal/logging"
	"loadgen/internal/params"
	"loadgen/internal/result"
	"loadgen/internal/server"
	"loadgen/internal/util"
	"loadgen/internal/validator"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load() // optional; missing .env is not an error

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: loadgen <config-path> [output-dir]")
		return 1
	}
	configPath := os.Args[1]
	outputDir := "."
	if len(os.Args) >= 3 {
		outputDir = os.Args[2]
	}

	doc, err := config.Load(configPath)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}
	spec, err := config.Build(doc, logger)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}

	sources, err := buildSources(spec, logger)
	if err != nil {
		logger.Error("failed to build parameter sources", zap.Error(err))
		return 1
	}

	var opts []engine.Option
	if v := buildValidator(doc); v != nil {
		opts = append(opts, engine.WithValidator(v))
	}

	controller, err := engine.New(spec, sources, logger, opts...)
	if err != nil {
		logger.Error("failed to initialize execution controller", zap.Error(err))
		return 1
	}

	var statusServer *server.Server
	if spec.Metrics.LiveServer.Enabled {
		statusServer = server.New(spec.Metrics.LiveServer.Addr, controller.LiveSnapshot, logger)
		statusServer.Start()
		defer statusServer.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping run")
		controller.Stop()
	}()

	snap, err := controller.Execute(ctx)
	if err != nil {
		logger.Error("fatal error during test execution", zap.Error(err))
		return 1
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", zap.Error(err))
		return 1
	}
	if err := writeOutputs(outputDir, *snap); err != nil {
		logger.Warn("exporter IO error", zap.Error(err))
	}
	export.WriteConsoleSummary(os.Stdout, *snap)

	return 0
}

func buildSources(spec *config.TestSpec, logger *zap.Logger) (map[string]params.Source, error) {
	rng := util.NewRand(spec.Name, spec.Seed)
	sources := make(map[string]params.Source, len(spec.ParameterSpecs))
	for name, s := range spec.ParameterSpecs {
		src, err := params.Build(s, rng, logger)
		if err != nil {
			return nil, fmt.Errorf("parameterSources.%s: %w", name, err)
		}
		sources[name] = src
	}
	return sources, nil
}

func buildValidator(doc *config.Document) *validator.Validator {
	// The config document's schema (§6.2) does not name a validator-rules
	// field; response validation is available programmatically to
	// embedders of this package but has no CLI config surface yet.
	_ = doc
	return nil
}

func writeOutputs(outputDir string, snap result.Snapshot) error {
	primaryPath := export.PrimaryCSVPath(outputDir, snap)
	if err := export.WritePrimaryCSV(primaryPath, snap); err != nil {
		return err
	}
	if err := export.WriteTpsSamplesCSV(filepath.Join(outputDir, "tps_samples.csv"), snap); err != nil {
		return err
	}
	if err := export.WriteResourceSnapshotsCSV(filepath.Join(outputDir, "resource_snapshots.csv"), snap); err != nil {
		return err
	}
	return nil
}
