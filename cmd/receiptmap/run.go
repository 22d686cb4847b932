package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/audth517/Japan-Receipt-Map/internal/server"
	"github.com/audth517/Japan-Receipt-Map/internal/tui"
	"github.com/audth517/Japan-Receipt-Map/pkg/assets"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/render"
	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// maxSettleFrames bounds how long render waits for the camera to settle.
const maxSettleFrames = 2000

// loadAndValidate loads the project's .env and configuration and runs
// schema validation.
func loadAndValidate(projectPath string) (*config.SceneConfig, *validation.Report, error) {
	if err := godotenv.Load(filepath.Join(projectPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, nil, fmt.Errorf("applying environment: %w", err)
	}
	return cfg, validation.ValidateSchema(cfg), nil
}

// loadScene builds a ready scene at the configured canvas size.
func loadScene(ctx context.Context, projectPath string) (*scene.State, *assets.Bundle, error) {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid {
		printValidationReport(report)
		return nil, nil, fmt.Errorf("config has validation errors")
	}
	bundle, err := assets.Load(ctx, projectPath, cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := scene.New(cfg, bundle, cfg.Canvas.Width, cfg.Canvas.Height, place.NewRand(cfg.Placement.Seed))
	if err != nil {
		return nil, nil, err
	}
	log.Printf("placed %d of %d receipts", len(st.Points()), len(bundle.Receipts))
	return st, bundle, nil
}

func runValidate(ctx context.Context, projectPath string) error {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if report.Valid {
		bundle, err := assets.Load(ctx, projectPath, cfg)
		if err != nil {
			return err
		}
		st, err := scene.New(cfg, bundle, cfg.Canvas.Width, cfg.Canvas.Height, place.NewRand(cfg.Placement.Seed))
		if err != nil {
			return err
		}
		report.Merge(st.Report())
		report.Merge(scene.Validate(st.Snapshot()))
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runPlace(ctx context.Context, projectPath string, w io.Writer) error {
	st, _, err := loadScene(ctx, projectPath)
	if err != nil {
		return err
	}
	report := st.Report()
	report.Merge(scene.Validate(st.Snapshot()))

	output := map[string]any{
		"mode":       st.Config().Placement.Mode,
		"viewport":   st.Viewport(),
		"regions":    st.Rects(),
		"points":     st.Points(),
		"summary":    st.Summary(),
		"validation": report,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runSummary(ctx context.Context, projectPath string, w io.Writer) error {
	st, _, err := loadScene(ctx, projectPath)
	if err != nil {
		return err
	}
	printSummary(w, st.Summary())
	return nil
}

type renderOptions struct {
	out      string
	clicks   []string
	selectAt string
}

// parsePoint reads "x,y".
func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("point %q: %w", s, err)
	}
	return x, y, nil
}

// settle runs frames until the camera stops.
func settle(st *scene.State) {
	for i := 0; i < maxSettleFrames; i++ {
		if !st.Tick() {
			return
		}
	}
}

func runRender(ctx context.Context, projectPath string, opts renderOptions) error {
	st, bundle, err := loadScene(ctx, projectPath)
	if err != nil {
		return err
	}
	for _, c := range opts.clicks {
		x, y, err := parsePoint(c)
		if err != nil {
			return err
		}
		st.PointerMove(x, y)
		ns := st.Click(x, y)
		settle(st)
		log.Printf("click %s -> %s (%s)", c, ns.Mode, ns)
	}
	if opts.selectAt != "" {
		x, y, err := parsePoint(opts.selectAt)
		if err != nil {
			return err
		}
		st.PointerMove(x, y)
		st.DoubleClick(x, y)
	}

	err = render.SavePNG(opts.out, st.Snapshot(), render.Options{
		Config:      st.Config(),
		Backgrounds: bundle.Backgrounds,
	})
	if err != nil {
		return fmt.Errorf("rendering %s: %w", opts.out, err)
	}
	fmt.Printf("Wrote %s\n", opts.out)
	return nil
}

func runServe(ctx context.Context, projectPath string, port int) error {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("config has validation errors")
	}
	bundle, err := assets.Load(ctx, projectPath, cfg)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	srv, err := server.New(cfg, bundle, port)
	if err != nil {
		return err
	}
	return srv.Start()
}

func runExplore(ctx context.Context, projectPath string) error {
	st, _, err := loadScene(ctx, projectPath)
	if err != nil {
		return err
	}
	return tui.Run(st)
}
