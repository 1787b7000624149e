package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ChicagoDave/cityenvelope/internal/logging"
	"github.com/ChicagoDave/cityenvelope/internal/server"
	"github.com/ChicagoDave/cityenvelope/pkg/config"
	"github.com/ChicagoDave/cityenvelope/pkg/ingest"
	"github.com/ChicagoDave/cityenvelope/pkg/scene"
	"github.com/ChicagoDave/cityenvelope/pkg/scene2d"
	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

var errInvalidProfile = errors.New("import profile has validation errors")

// loadAndValidate loads the profile, validates it and installs the logger.
// The returned func restores the previous global logger.
func loadAndValidate(projectPath string) (*config.Import, *validation.Report, func(), error) {
	cfg, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	report := validation.ValidateConfig(cfg)

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}
	restore := logging.Install(logger)
	return cfg, report, func() {
		_ = logger.Sync()
		restore()
	}, nil
}

// importProject runs the import described by cfg.
func importProject(cfg *config.Import) (*ingest.Result, error) {
	project, err := cfg.Projection()
	if err != nil {
		return nil, err
	}
	return ingest.ReadFile(cfg.SourcePath(), project, ingest.OptionsFrom(cfg))
}

// prepare loads a valid profile and imports it.
func prepare(projectPath string) (*config.Import, *ingest.Result, *validation.Report, func(), error) {
	cfg, report, done, err := loadAndValidate(projectPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !report.Valid {
		printValidationReport(report)
		done()
		return nil, nil, nil, nil, errInvalidProfile
	}
	res, err := importProject(cfg)
	if err != nil {
		done()
		return nil, nil, nil, nil, err
	}
	report.Merge(res.Report)
	return cfg, res, report, done, nil
}

func runValidate(projectPath string) error {
	_, report, done, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	defer done()

	printValidationReport(report)
	if !report.Valid {
		return errInvalidProfile
	}
	return nil
}

func runImport(projectPath string) error {
	cfg, res, report, done, err := prepare(projectPath)
	if err != nil {
		return err
	}
	defer done()

	printImportSummary(cfg, res)
	fmt.Println()
	printValidationReport(report)
	return nil
}

func runBuildings(projectPath string) error {
	_, res, _, done, err := prepare(projectPath)
	if err != nil {
		return err
	}
	defer done()

	printBuildingTable(res.District.Buildings())
	return nil
}

func runScene(projectPath string, surfaces bool) error {
	cfg, res, report, done, err := prepare(projectPath)
	if err != nil {
		return err
	}
	defer done()

	graph := scene.Assemble(res.District, scene.Options{Version: cfg.Version, Surfaces: surfaces})
	report.Merge(scene.ValidateGraph(graph))

	output := map[string]any{
		"stats":       res.Stats,
		"validation":  report,
		"scene_graph": graph,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runPlan(projectPath string) error {
	_, res, _, done, err := prepare(projectPath)
	if err != nil {
		return err
	}
	defer done()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(scene2d.Assemble2D(res.District))
}

func runServe(ctx context.Context, projectPath, addr string) error {
	cfg, report, done, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	defer done()
	if !report.Valid {
		printValidationReport(report)
		return errInvalidProfile
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	// Re-read the profile on every reload so edits are picked up.
	load := func() (*ingest.Result, error) {
		next, err := config.LoadProject(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		if r := validation.ValidateConfig(next); !r.Valid {
			return nil, fmt.Errorf("%w: %s", errInvalidProfile, r.Summary)
		}
		return importProject(next)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(projectPath, addr, cfg.Version, load)
	if err := srv.Start(ctx); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
