// Package bundle computes a per-module import graph, orders modules
// dependencies-first via depth-first traversal, wraps each module body
// in the fixed CommonJS-style shim, and concatenates the result into one
// deployable string.
package bundle

import (
	"fmt"
	"strings"

	"bennypowers.dev/cembundle/internal/jslex"
	"bennypowers.dev/cembundle/internal/modsyntax"
	"bennypowers.dev/cembundle/internal/modulemap"
)

// wrapperTemplate is bit-exact per spec: the bundler never deviates from
// this shape. "%s" placeholders are, in order: module id, module body,
// module id again.
const wrapperTemplate = `/* Module: %s */
(function (modules, moduleName) {
  var module = { exports: {} };
  var exports = module.exports;
  (function (require, module, exports) {
%s
  })(function (id) { return modules[id]; }, module, exports);
  modules[moduleName] = module.exports;
})(__modules__, '%s');`

// Cycle is a back-edge report: the target module id that closed a cycle
// during the depth-first traversal.
type Cycle struct {
	ModuleID string
}

// Result is the bundler's output plus any cycles it encountered. Cycles
// never prevent emission; they are purely diagnostic.
type Result struct {
	Source string
	Cycles []Cycle
}

// importsOf returns the ordered, de-duplicated-by-first-seen list of
// specifiers a module statically imports, via §4.A/§4.B.
func importsOf(source string) []string {
	syn := modsyntax.FindModuleSyntax(jslex.Tokenize(source))
	var out []string
	seen := make(map[string]struct{})
	for _, imp := range syn.Imports {
		if _, ok := seen[imp.Source]; ok {
			continue
		}
		seen[imp.Source] = struct{}{}
		out = append(out, imp.Source)
	}
	return out
}

// Bundle computes the dependency-first module order from entryID,
// detects cycles, wraps each defined module, and concatenates. Modules
// not reachable from the entry are still emitted, in m's insertion
// order, after the entry's subtree — every module defined in m appears
// exactly once.
func Bundle(m *modulemap.ModuleMap, entryID string) Result {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int)
	var order []string
	var cycles []Cycle

	var visit func(id string)
	visit = func(id string) {
		if state[id] == visiting {
			cycles = append(cycles, Cycle{ModuleID: id})
			return
		}
		if state[id] == visited {
			return
		}
		src, ok := m.Get(id)
		if !ok {
			// Missing module: the bundler skips imports whose specifier
			// isn't in the map. No stub, no error.
			return
		}
		state[id] = visiting
		for _, dep := range importsOf(src) {
			visit(dep)
		}
		state[id] = visited
		order = append(order, id)
	}

	if m.Has(entryID) {
		visit(entryID)
	}
	for _, id := range m.Keys() {
		if state[id] != visited {
			state[id] = visited
			order = append(order, id)
		}
	}

	wrapped := make([]string, 0, len(order))
	for _, id := range order {
		src, _ := m.Get(id)
		wrapped = append(wrapped, fmt.Sprintf(wrapperTemplate, id, src, id))
	}

	var b strings.Builder
	b.WriteString("var __modules__ = {};")
	for _, w := range wrapped {
		b.WriteString("\n\n")
		b.WriteString(w)
	}
	b.WriteString(fmt.Sprintf("\n\nvar __entry__ = __modules__['%s'];", entryID))

	return Result{Source: b.String(), Cycles: cycles}
}
