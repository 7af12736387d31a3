// Package generator runs the whole pipeline for one configuration file:
// resolve the configuration, parse the template, build the module
// hierarchy, check the design contract and emit the output files.
//
// Every stage either completes or stops the run with a tagged error from
// internal/diag. Nothing is written unless all earlier stages succeeded,
// and the emitter removes its partial output if a later file fails.
package generator

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/robert-at-pretension-io/vgadbg/internal/config"
	"github.com/robert-at-pretension-io/vgadbg/internal/ctxlog"
	"github.com/robert-at-pretension-io/vgadbg/internal/emitter"
	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
	"github.com/robert-at-pretension-io/vgadbg/internal/template"
	"github.com/robert-at-pretension-io/vgadbg/internal/validator"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusSkipped = "skipped"
)

// Generator holds the options of a run.
type Generator struct {
	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Check stops after validation and writes no files
	Check bool

	// SkipContract disables the CUE design contract
	SkipContract bool
}

// Result describes a finished run.
type Result struct {
	Config *config.Config
	Design *hierarchy.Design

	// Files lists the paths written, empty in check mode
	Files []string
}

// New returns a Generator with default options.
func New() *Generator {
	return &Generator{}
}

// Run generates the debugger for the configuration file at configPath. The
// logger is taken from ctx.
func (g *Generator) Run(ctx context.Context, configPath string) (res *Result, err error) {
	log := ctxlog.FromContext(ctx)
	runStart := time.Now()

	timing := newTimingRecorder(runStart, g.resolveTimingPath())
	if terr := timing.Err(); terr != nil {
		log.Warn("timing output disabled", "error", terr)
	}
	defer func() {
		if cerr := timing.Close(); cerr != nil {
			log.Warn("writing timing output", "error", cerr)
		}
	}()
	defer func() {
		status := statusOK
		if err != nil {
			status = statusError
		}
		timing.RecordStage("total", runStart, time.Since(runStart), status)
	}()

	cfg, err := stage(ctx, timing, "config", func() (*config.Config, error) {
		return config.LoadFile(configPath)
	})
	if err != nil {
		return nil, err
	}
	log.Debug("configuration resolved",
		"config", configPath,
		"module", cfg.ModuleName,
		"submodules", len(cfg.Submodules),
		"groups", len(cfg.Groups),
		"prefixes", cfg.Prefixes.Len(),
		"suffixes", cfg.Suffixes.Len(),
		"code_names", cfg.CodeNames.Len(),
		"len_bits", cfg.LenBits.Len())

	tmpl, err := stage(ctx, timing, "template", func() (*template.Template, error) {
		return template.ParseFile(cfg.TemplateFile, template.Options{
			HeaderLines: cfg.HeaderLines,
			Width:       cfg.TemplateWidth,
			Height:      cfg.TemplateHeight,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Debug("template parsed",
		"template", cfg.TemplateFile,
		"blocks", len(tmpl.Blocks),
		"wires", tmpl.WireCount())

	design, err := stage(ctx, timing, "hierarchy", func() (*hierarchy.Design, error) {
		return hierarchy.Build(cfg, tmpl)
	})
	if err != nil {
		return nil, err
	}
	log.Debug("hierarchy built",
		"modules", len(design.Order),
		"size", design.Size,
		"addr_bits", design.AddrBits)

	if g.SkipContract {
		timing.RecordStage("contract", time.Now(), 0, statusSkipped)
		log.Debug("design contract skipped")
	} else {
		_, err = stage(ctx, timing, "contract", func() (struct{}, error) {
			v, err := validator.New()
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, v.Validate(design)
		})
		if err != nil {
			return nil, err
		}
	}

	res = &Result{Config: cfg, Design: design}
	if g.Check {
		timing.RecordStage("emit", time.Now(), 0, statusSkipped)
		log.Info("check passed",
			"modules", len(design.Order),
			"wires", design.WireCount())
		return res, nil
	}

	res.Files, err = stage(ctx, timing, "emit", func() ([]string, error) {
		return emitter.Emit(design)
	})
	if err != nil {
		return nil, err
	}
	log.Info("debugger generated",
		"modules", len(design.Order),
		"wires", design.WireCount(),
		"files", res.Files)

	return res, nil
}

// stage runs fn as the named pipeline stage, recording its timing. A
// cancelled ctx stops the run before the stage starts.
func stage[T any](ctx context.Context, timing *timingRecorder, name string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, errors.Wrapf(err, "before %s stage", name)
	}

	log := ctxlog.FromContext(ctx)
	start := time.Now()
	log.Debug("stage started", "stage", name)

	out, err := fn()
	status := statusOK
	if err != nil {
		status = statusError
	}
	elapsed := time.Since(start)
	timing.RecordStage(name, start, elapsed, status)
	log.Debug("stage finished", "stage", name, "status", status, "duration", elapsed)

	if err != nil {
		return zero, err
	}
	return out, nil
}
