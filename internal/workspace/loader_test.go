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

package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cembundle/internal/workspace"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestLoadDiscoversJSFilesInSortedOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.js":        "export const b = 1;",
		"a.js":        "export const a = 1;",
		"notes.txt":   "ignore me",
		"lib/nest.js": "export const nested = 1;",
	})

	m, err := workspace.Load(context.Background(), root, workspace.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.js", "b.js", "lib/nest.js"}, m.Keys())
}

func TestLoadSkipsNodeModulesAndDist(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.js":                "export const x = 1;",
		"node_modules/dep/dep.js": "export const dep = 1;",
		"dist/bundle.js":          "var x;",
	})

	m, err := workspace.Load(context.Background(), root, workspace.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"index.js"}, m.Keys())
}

func TestLoadHonorsGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.js":       "export const x = 1;",
		"generated.js":   "export const y = 1;",
		".gitignore":     "generated.js\n",
	})

	m, err := workspace.Load(context.Background(), root, workspace.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"index.js"}, m.Keys())
}

func TestLoadExcludeOverridesInclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.js":      "export const app = 1;",
		"src/app.test.js": "export const t = 1;",
	})

	m, err := workspace.Load(context.Background(), root, workspace.LoadOptions{
		Include: []string{"**/*.js"},
		Exclude: []string{"**/*.test.js"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.js"}, m.Keys())
}

func TestEntryIDResolvesRelativeSpecifier(t *testing.T) {
	root := writeTree(t, map[string]string{"src/index.js": "export const x = 1;"})
	id, err := workspace.EntryID(root, "./src/index.js")
	require.NoError(t, err)
	assert.Equal(t, "src/index.js", id)
}

func TestEntryIDPassesThroughBareModuleID(t *testing.T) {
	id, err := workspace.EntryID("/some/root", "src/index.js")
	require.NoError(t, err)
	assert.Equal(t, "src/index.js", id)
}
