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

package workspace

import (
	"fmt"
	"io/fs"
	"sort"

	"bennypowers.dev/cembundle/internal/modulemap"
)

// LoadFS assembles a ModuleMap from an in-memory fs.FS (typically a
// testing/fstest.MapFS) instead of the real filesystem, so pipeline and
// server tests can exercise a workspace without touching disk.
func LoadFS(fsys fs.FS, opts LoadOptions) (*modulemap.ModuleMap, error) {
	include := opts.includePatterns()

	var ids []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !matchesAny(include, path) {
			return nil
		}
		if matchesAny(opts.Exclude, path) {
			return nil
		}
		ids = append(ids, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: walking in-memory filesystem: %w", err)
	}
	sort.Strings(ids)

	m := modulemap.New()
	for _, id := range ids {
		data, err := fs.ReadFile(fsys, id)
		if err != nil {
			return nil, fmt.Errorf("workspace: reading %s: %w", id, err)
		}
		data, err = stripIfNeeded(id, data)
		if err != nil {
			return nil, err
		}
		m.Set(id, normalizeSpecifiers(id, string(data)))
	}
	return m, nil
}
