// Package diagnostics collects non-fatal build observations — bundler
// cycles and tree-shaker eliminations — so a caller can report them
// after a run instead of interleaving them with the pipeline itself.
// This mirrors the injectable-collector shape the teacher uses for
// metrics: a small struct the caller owns, passed by reference, never a
// process-wide singleton.
package diagnostics

import (
	"fmt"

	"bennypowers.dev/cembundle/internal/bundle"
	"bennypowers.dev/cembundle/internal/logging"
)

// SkippedModule records a module the tree-shaker eliminated because it
// was unreachable and not flagged side-effecting.
type SkippedModule struct {
	ModuleID string
}

// Sink accumulates Cycle and SkippedModule records across a build. It is
// not safe for concurrent writes from multiple goroutines without
// external synchronization; a single build's passes run synchronously
// per spec.md §5, so none is needed here.
type Sink struct {
	Cycles  []bundle.Cycle
	Skipped []SkippedModule
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// RecordCycles appends every cycle from a bundler run.
func (s *Sink) RecordCycles(cycles []bundle.Cycle) {
	s.Cycles = append(s.Cycles, cycles...)
}

// RecordSkipped appends a module the tree-shaker eliminated.
func (s *Sink) RecordSkipped(moduleID string) {
	s.Skipped = append(s.Skipped, SkippedModule{ModuleID: moduleID})
}

// HasDiagnostics reports whether anything was recorded. Callers use this
// to decide the CLI exit code (2 when cycles were found but the bundle
// still emitted, per spec.md's "cycle is never fatal").
func (s *Sink) HasDiagnostics() bool {
	return len(s.Cycles) > 0 || len(s.Skipped) > 0
}

// Report renders every recorded diagnostic via logger: cycles and the
// closing summary at Warning level, eliminated modules at Debug level.
// It never panics and never returns an error: diagnostics are, by
// construction, non-fatal observations about a build that already
// completed.
func (s *Sink) Report(logger *logging.Logger) {
	for _, c := range s.Cycles {
		logger.Warning("import cycle detected: module %q participates in a dependency cycle", c.ModuleID)
	}
	for _, sk := range s.Skipped {
		logger.Debug("module %q eliminated: unreachable and has no detected side effects", sk.ModuleID)
	}
	if s.HasDiagnostics() {
		logger.Warning(fmt.Sprintf("build completed with %d cycle(s), %d module(s) eliminated", len(s.Cycles), len(s.Skipped)))
	}
}
