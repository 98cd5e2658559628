/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package workspace walks a project directory and assembles the ordered
// modulemap.ModuleMap the rest of the toolchain operates on.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"bennypowers.dev/cembundle/internal/modulemap"
	"bennypowers.dev/cembundle/internal/transform"
)

// skippedDirs are never descended into regardless of Include/Exclude.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

// LoadOptions controls which files a Load call considers part of the
// workspace.
type LoadOptions struct {
	// Include, when non-empty, restricts matched files to these doublestar
	// glob patterns (relative to root). Defaults to "**/*.js", "**/*.ts"
	// and "**/*.tsx".
	Include []string
	// Exclude removes files that would otherwise match Include.
	Exclude []string
	// Concurrency bounds how many files are read at once. Defaults to
	// runtime.NumCPU().
	Concurrency int
}

func (o LoadOptions) includePatterns() []string {
	if len(o.Include) > 0 {
		return o.Include
	}
	return []string{"**/*.js", "**/*.ts", "**/*.tsx"}
}

// needsStrip reports whether id's extension requires the TypeScript
// precompile pass before its source reaches the rest of the toolchain.
func needsStrip(id string) bool {
	return strings.HasSuffix(id, ".ts") || strings.HasSuffix(id, ".tsx")
}

// stripIfNeeded runs transform.StripTypes over data when id is a .ts or
// .tsx module. This is strictly an upstream precompile: internal/jslex
// and everything downstream of the loader only ever sees the result, and
// never learns that the original file had type annotations.
func stripIfNeeded(id string, data []byte) ([]byte, error) {
	if !needsStrip(id) {
		return data, nil
	}
	stripped, err := transform.StripTypes(data, id, "")
	if err != nil {
		return nil, fmt.Errorf("workspace: stripping types from %s: %w", id, err)
	}
	return stripped, nil
}

// Load walks root, honoring .gitignore and the Include/Exclude glob lists,
// reads every matched file, and assembles a ModuleMap keyed by module id
// (the path relative to root, with OS separators normalized to "/").
// Module ids are inserted in lexically sorted path order, so a Load of the
// same tree always yields the same ModuleMap regardless of the
// concurrency used to read it.
func Load(ctx context.Context, root string, opts LoadOptions) (*modulemap.ModuleMap, error) {
	ignore := loadGitignore(root)

	ids, err := discover(root, opts, ignore)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(ids))
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(id)))
			if err != nil {
				return fmt.Errorf("workspace: reading %s: %w", id, err)
			}
			data, err = stripIfNeeded(id, data)
			if err != nil {
				return err
			}
			contents[i] = normalizeSpecifiers(id, string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := modulemap.New()
	for i, id := range ids {
		m.Set(id, contents[i])
	}
	return m, nil
}

func discover(root string, opts LoadOptions, ignore *gitignore.GitIgnore) ([]string, error) {
	include := opts.includePatterns()

	var ids []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skippedDirs[d.Name()] || (ignore != nil && ignore.MatchesPath(rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if !matchesAny(include, rel) {
			return nil
		}
		if matchesAny(opts.Exclude, rel) {
			return nil
		}
		ids = append(ids, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: walking %s: %w", root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ig, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return ig
}

// ToModuleID normalizes a path relative to a workspace root into the
// slash-separated form used as a module id throughout the toolchain.
func ToModuleID(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// EntryID resolves an --entry flag value (which may be given relative to
// the current working directory, or already as a module id) against root.
func EntryID(root, entry string) (string, error) {
	if !filepath.IsAbs(entry) {
		if strings.HasPrefix(entry, "./") || strings.HasPrefix(entry, "../") {
			abs, err := filepath.Abs(filepath.Join(root, entry))
			if err != nil {
				return "", err
			}
			return ToModuleID(root, abs)
		}
		return filepath.ToSlash(entry), nil
	}
	return ToModuleID(root, entry)
}
