// Package pipeline threads a module map through an ordered sequence of
// core passes: tree-shake, bundle, minify, obfuscate. It is a thin
// sequencer with no logic of its own beyond type-checking the hand-off
// between steps.
package pipeline

import (
	"fmt"

	"bennypowers.dev/cembundle/internal/bundle"
	"bennypowers.dev/cembundle/internal/minify"
	"bennypowers.dev/cembundle/internal/modulemap"
	"bennypowers.dev/cembundle/internal/obfuscate"
	"bennypowers.dev/cembundle/internal/treeshake"
)

// Step names one of the four pass kinds a caller can sequence.
type Step string

const (
	StepTreeShake Step = "treeShake"
	StepBundle    Step = "bundle"
	StepMinify    Step = "minify"
	StepObfuscate Step = "obfuscate"
)

// UsageError reports that a step in the pipeline received a value of
// the wrong type for its contract (e.g. a string passed to treeShake,
// or a module map passed to minify/obfuscate). It terminates the
// pipeline; it is never a lexical-tolerance or diagnostics-channel
// concern.
type UsageError struct {
	Step Step
	Want string
	Got  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("pipeline: step %q expected %s, got %s", e.Step, e.Want, e.Got)
}

// Config describes one pipeline run: the ordered steps, the entry
// module id (used by treeShake and bundle), the starting module map,
// and options for minify/obfuscate.
type Config struct {
	Steps         []Step
	EntryID       string
	ModuleMap     *modulemap.ModuleMap
	MinifyOptions minify.Options
	ObfsOptions   obfuscate.Options
}

// Result accumulates the pipeline's final value (exactly one of
// ModuleMap or Source is populated, depending on which step ran last)
// plus any bundler cycle diagnostics encountered along the way.
type Result struct {
	ModuleMap *modulemap.ModuleMap
	Source    string
	Cycles    []bundle.Cycle
}

// Run threads cfg.ModuleMap through cfg.Steps in order. The type
// transition is ModuleMap →(shake)→ ModuleMap →(bundle)→ string
// →(minify|obfuscate)→ string; passing the wrong shape to a step
// returns a *UsageError immediately.
func Run(cfg Config) (Result, error) {
	var (
		currentMap *modulemap.ModuleMap = cfg.ModuleMap
		currentStr string
		haveStr    bool
	)
	var cycles []bundle.Cycle

	for _, step := range cfg.Steps {
		switch step {
		case StepTreeShake:
			if haveStr {
				return Result{}, &UsageError{Step: step, Want: "a module map", Got: "a string"}
			}
			currentMap = treeshake.Shake(currentMap, cfg.EntryID)

		case StepBundle:
			if haveStr {
				return Result{}, &UsageError{Step: step, Want: "a module map", Got: "a string"}
			}
			res := bundle.Bundle(currentMap, cfg.EntryID)
			currentStr = res.Source
			cycles = append(cycles, res.Cycles...)
			haveStr = true

		case StepMinify:
			if !haveStr {
				return Result{}, &UsageError{Step: step, Want: "a string", Got: "a module map"}
			}
			currentStr = minify.Minify(currentStr, cfg.MinifyOptions)

		case StepObfuscate:
			if !haveStr {
				return Result{}, &UsageError{Step: step, Want: "a string", Got: "a module map"}
			}
			currentStr = obfuscate.Obfuscate(currentStr, cfg.ObfsOptions)

		default:
			return Result{}, &UsageError{Step: step, Want: "a known step", Got: string(step)}
		}
	}

	if haveStr {
		return Result{Source: currentStr, Cycles: cycles}, nil
	}
	return Result{ModuleMap: currentMap, Cycles: cycles}, nil
}
