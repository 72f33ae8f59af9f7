package operation

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/subst/pkg/config"
	"github.com/walteh/subst/pkg/log"
	"github.com/walteh/subst/pkg/status"
	"github.com/walteh/subst/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operator defines the main interface for subst operations
type Operator interface {
	// Apply rewrites every selected file under the configured root
	Apply(ctx context.Context) (*Result, error)
	// Plan lists the files Apply would visit, relative to the root
	Plan(ctx context.Context) ([]string, error)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config is the loaded and validated replacement config
	Config *config.Config
	// Replacer applies rules to one file. Defaults to a SimultaneousReplacer.
	Replacer text.TextReplacer
	// Console receives one line per file. Optional.
	Console *log.Logger
	// DryRun computes results without writing
	DryRun bool
	// Backup keeps a .bak copy of every file before it is rewritten
	Backup bool
}

// 📋 Result is the outcome of one Apply run
type Result struct {
	RunID   string
	DryRun  bool
	Files   []status.FileInfo
	Summary status.Summary
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	if opts.Replacer == nil {
		opts.Replacer = text.NewSimultaneousReplacer(opts.Config.TextOptions())
	}

	rules := opts.Config.Rules()
	if err := opts.Replacer.ValidateRules(rules); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}

	return &operator{
		config:   opts.Config,
		replacer: opts.Replacer,
		console:  opts.Console,
		rules:    rules,
		dryRun:   opts.DryRun,
		backup:   opts.Backup,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	config   *config.Config
	replacer text.TextReplacer
	console  *log.Logger
	rules    []text.ReplacementRule
	dryRun   bool
	backup   bool
}

// Plan implements Operator.Plan
func (o *operator) Plan(ctx context.Context) ([]string, error) {
	return selectFiles(ctx, o.config.Root, o.config.Include, o.excludes())
}

// Apply implements Operator.Apply
func (o *operator) Apply(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().
		Str("root", o.config.Root).
		Bool("dry_run", o.dryRun).
		Msg("starting apply")

	files, err := o.Plan(ctx)
	if err != nil {
		return nil, errors.Errorf("selecting files: %w", err)
	}

	if o.console != nil {
		o.console.StartRun(ctx, log.RunOperation{
			ID:         runID,
			Root:       o.config.Root,
			Comparison: o.config.TextOptions().Comparison.String(),
			Rules:      len(o.rules),
			DryRun:     o.dryRun,
		})
		defer o.console.EndRun(ctx)
	}

	mgr := status.New(o.config.Root, &logger)
	mgr.StartOperation(ctx, len(files))

	ops := make([]Operation, len(files))
	for i, path := range files {
		ops[i] = &fileOperation{op: o, status: mgr, path: path}
	}

	runErr := NewRunner(&logger, o.config.Concurrency).RunAll(ctx, ops)
	mgr.FinishOperation(ctx)

	result := &Result{
		RunID:   runID,
		DryRun:  o.dryRun,
		Files:   mgr.ListFiles(ctx),
		Summary: mgr.Summary(),
	}
	if runErr != nil {
		return result, runErr
	}

	logger.Info().
		Int("files", result.Summary.Files).
		Int("modified", result.Summary.Modified).
		Int("replacements", result.Summary.Replacements).
		Msg("apply complete")

	return result, nil
}

// excludes returns the configured excludes plus paths that must never be
// rewritten: VCS metadata and the config file itself
func (o *operator) excludes() []string {
	excludes := append([]string{}, o.config.Exclude...)
	excludes = append(excludes, AlwaysExclude...)

	if loc := o.config.Location(); loc != "" {
		absRoot, err1 := filepath.Abs(o.config.Root)
		absLoc, err2 := filepath.Abs(loc)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absRoot, absLoc); err == nil && !strings.HasPrefix(rel, "..") {
				excludes = append(excludes, filepath.ToSlash(rel))
			}
		}
	}
	return excludes
}
