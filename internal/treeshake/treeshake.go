// Package treeshake builds a dependency graph over a module map and
// eliminates modules unreachable from an entry point, conservatively
// preserving any module it suspects has an observable side effect.
package treeshake

import (
	"bennypowers.dev/cembundle/internal/jslex"
	"bennypowers.dev/cembundle/internal/modsyntax"
	"bennypowers.dev/cembundle/internal/modulemap"
)

// BuildGraph scans every module in m with the tokenizer and module-syntax
// extractor and assembles the dependency graph: import specifiers,
// exported names, re-export sources, and the side-effect flag (any
// "new" identifier token anywhere in the module).
func BuildGraph(m *modulemap.ModuleMap) *modulemap.DependencyGraph {
	g := modulemap.NewDependencyGraph()
	for _, id := range m.Keys() {
		src, _ := m.Get(id)
		tokens := jslex.Tokenize(src)
		syn := modsyntax.FindModuleSyntax(tokens)

		for _, imp := range syn.Imports {
			g.Imports[id] = append(g.Imports[id], imp.Source)
		}

		exports := g.Exports[id]
		if exports == nil {
			exports = make(map[string]struct{})
			g.Exports[id] = exports
		}
		for _, exp := range syn.Exports {
			switch exp.Kind {
			case modsyntax.ExportDefault:
				exports["default"] = struct{}{}
			case modsyntax.ExportAll:
				exports["*"] = struct{}{}
				if exp.Source != "" {
					g.ReexportSrcs[id] = append(g.ReexportSrcs[id], exp.Source)
				}
			case modsyntax.ExportNamed:
				for _, name := range exp.Names {
					exports[name] = struct{}{}
				}
				if exp.Source != "" {
					g.ReexportSrcs[id] = append(g.ReexportSrcs[id], exp.Source)
				}
			}
		}

		g.SideEffects[id] = hasNewIdentifier(tokens)
	}
	return g
}

func hasNewIdentifier(tokens []jslex.Token) bool {
	for _, t := range tokens {
		if (t.Kind == jslex.Identifier || t.Kind == jslex.Keyword) && t.Value == "new" {
			return true
		}
	}
	return false
}

// Shake builds the dependency graph for m, performs reachability from
// entryID, and returns a new ModuleMap preserving m's insertion order
// where every unreachable, side-effect-free module has been replaced by
// empty source. The entry module is always emitted unchanged.
func Shake(m *modulemap.ModuleMap, entryID string) *modulemap.ModuleMap {
	g := BuildGraph(m)
	usage := reachability(g, entryID)

	out := modulemap.New()
	for _, id := range m.Keys() {
		src, _ := m.Get(id)
		if id == entryID {
			out.Set(id, src)
			continue
		}
		if !usage.Has(id) && !g.SideEffects[id] {
			out.Set(id, "")
			continue
		}
		out.Set(id, src)
	}
	return out
}

// reachability walks the dependency graph breadth-first from entryID.
// For every import specifier d of a dequeued module, it merges d's
// complete export set into the usage map and enqueues d if unvisited;
// for every re-export source, it enqueues that source if unvisited.
// Visited modules flagged side-effecting get the side-effect sentinel
// added to their own usage set.
func reachability(g *modulemap.DependencyGraph, entryID string) modulemap.UsageMap {
	usage := make(modulemap.UsageMap)
	visited := map[string]bool{entryID: true}
	queue := []string{entryID}

	markSideEffect := func(id string) {
		if g.SideEffects[id] {
			usage.Mark(id, modulemap.SideEffectSentinel)
		}
	}
	markSideEffect(entryID)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, dep := range g.Imports[id] {
			for name := range g.Exports[dep] {
				usage.Mark(dep, name)
			}
			if !visited[dep] {
				visited[dep] = true
				markSideEffect(dep)
				queue = append(queue, dep)
			}
		}
		for _, src := range g.ReexportSrcs[id] {
			if !visited[src] {
				visited[src] = true
				markSideEffect(src)
				queue = append(queue, src)
			}
		}
	}
	return usage
}
