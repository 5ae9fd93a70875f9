// Package generate runs the whole pipeline: read the schema CSV, validate it,
// resolve the dependency order, render every configured backend in memory
// and, only when all of that succeeded, write the artifacts.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
	"golang.org/x/sync/errgroup"
)

// File and directory modes for written artifacts.
const (
	fileMode = 0o644
	dirMode  = 0o750
)

// writeConcurrency bounds the number of files written at once.
const writeConcurrency = 8

// Config configures one generator.
type Config struct {
	Input         string
	OutputDir     string
	BaseURL       string
	Backends      []string
	FastAPILayout string
	// DryRun renders everything but writes nothing.
	DryRun bool
	Logger *slog.Logger
}

// Plan is a validated, ordered schema ready for rendering.
type Plan struct {
	Schema  *schema.Schema
	Catalog *schema.Catalog
	Order   []string
	Levels  [][]string
	Model   *emit.Model
}

// Output is one backend's rendered artifacts.
type Output struct {
	Backend string
	// Dir is where the backend's artifacts are written.
	Dir       string
	Artifacts []emit.Artifact
}

// File is one artifact as written, or as it would be written in a dry run.
type File struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

// Result reports a generation run.
type Result struct {
	Plan   *Plan  `json:"-"`
	Files  []File `json:"files"`
	DryRun bool   `json:"dry_run"`
}

// Generator runs the pipeline for one Config.
type Generator struct {
	cfg      Config
	emitters []emit.Emitter
	logger   *slog.Logger
	// debounce is how long Watch waits for the input to settle.
	debounce time.Duration
}

// New checks cfg and builds the configured emitters. Unknown backends and
// bad backend options fail here, before any input is read.
func New(cfg Config) (*Generator, error) {
	if cfg.Input == "" {
		return nil, errors.New("input path is required")
	}
	if cfg.OutputDir == "" && !cfg.DryRun {
		return nil, errors.New("output directory is required")
	}
	if len(cfg.Backends) == 0 {
		return nil, errors.New("at least one backend is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := emit.Options{BaseURL: cfg.BaseURL, FastAPILayout: cfg.FastAPILayout}
	seen := make(map[string]bool, len(cfg.Backends))
	emitters := make([]emit.Emitter, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		if seen[name] {
			continue
		}
		seen[name] = true
		e, err := emit.New(name, opts)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, e)
	}

	return &Generator{
		cfg:      cfg,
		emitters: emitters,
		logger:   logger,
		debounce: defaultDebounce,
	}, nil
}

// Backends returns the backend names in run order, without duplicates.
func (g *Generator) Backends() []string {
	out := make([]string, 0, len(g.emitters))
	for _, e := range g.emitters {
		out = append(out, e.Name())
	}
	return out
}

// Load reads and validates the input file and resolves its order.
func (g *Generator) Load() (*Plan, error) {
	s, err := schema.ReadFile(g.cfg.Input)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("schema read", "path", g.cfg.Input, "tables", s.Len())

	p, err := Build(s)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("dependency order resolved", "order", p.Order)
	return p, nil
}

// Build validates a parsed schema and resolves its order and levels.
func Build(s *schema.Schema) (*Plan, error) {
	c, err := schema.Validate(s)
	if err != nil {
		return nil, err
	}
	order, err := schema.Resolve(c)
	if err != nil {
		return nil, err
	}
	levels, err := schema.Levels(c)
	if err != nil {
		return nil, err
	}
	m, err := emit.BuildModel(c, order)
	if err != nil {
		return nil, err
	}
	return &Plan{Schema: s, Catalog: c, Order: order, Levels: levels, Model: m}, nil
}

// Render runs every emitter over the plan. Nothing is written; any failure
// fails the whole render.
func (g *Generator) Render(p *Plan) ([]Output, error) {
	outputs := make([]Output, 0, len(g.emitters))
	for _, e := range g.emitters {
		artifacts, err := e.Emit(p.Model)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", e.Name(), err)
		}
		for _, a := range artifacts {
			if !filepath.IsLocal(filepath.FromSlash(a.Path)) {
				return nil, fmt.Errorf("render %s: artifact path %q escapes the backend directory", e.Name(), a.Path)
			}
		}
		outputs = append(outputs, Output{
			Backend:   e.Name(),
			Dir:       filepath.Join(g.cfg.OutputDir, e.Name()),
			Artifacts: artifacts,
		})
		g.logger.Debug("backend rendered", "backend", e.Name(), "artifacts", len(artifacts))
	}
	return outputs, nil
}

// Run loads, renders and writes. Files are written only after every backend
// rendered successfully.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	p, err := g.Load()
	if err != nil {
		return nil, err
	}
	outputs, err := g.Render(p)
	if err != nil {
		return nil, err
	}

	res := &Result{Plan: p, DryRun: g.cfg.DryRun}
	for _, o := range outputs {
		for _, a := range o.Artifacts {
			res.Files = append(res.Files, File{
				Backend: o.Backend,
				Path:    filepath.Join(o.Dir, filepath.FromSlash(a.Path)),
				Bytes:   len(a.Content),
			})
		}
	}
	if g.cfg.DryRun {
		return res, nil
	}

	if err := write(ctx, outputs); err != nil {
		return nil, err
	}
	g.logger.Debug("artifacts written", "files", len(res.Files), "output_dir", g.cfg.OutputDir)
	return res, nil
}

func write(ctx context.Context, outputs []Output) error {
	// Directories first, so concurrent writers never race on MkdirAll.
	dirs := make(map[string]bool)
	for _, o := range outputs {
		for _, a := range o.Artifacts {
			dir := filepath.Dir(filepath.Join(o.Dir, filepath.FromSlash(a.Path)))
			if dirs[dir] {
				continue
			}
			dirs[dir] = true
			if err := os.MkdirAll(dir, dirMode); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(writeConcurrency)
	for _, o := range outputs {
		for _, a := range o.Artifacts {
			path := filepath.Join(o.Dir, filepath.FromSlash(a.Path))
			content := a.Content
			eg.Go(func() error {
				if err := egctx.Err(); err != nil {
					return err
				}
				if err := os.WriteFile(path, content, fileMode); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				return nil
			})
		}
	}
	return eg.Wait()
}
