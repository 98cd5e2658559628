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
	"path"
	"strings"

	"bennypowers.dev/cembundle/internal/jslex"
)

// normalizeSpecifiers rewrites every relative import/export/re-export
// specifier in source from its as-written form ("./util.js", "../a.js")
// to the root-relative module id it resolves to from importerID's own
// directory. Module ids never carry a "./" prefix, so left as-is these
// specifiers would never match a key in the ModuleMap the rest of the
// toolchain builds (internal/treeshake and internal/bundle key edges on
// the verbatim specifier text). Specifiers that don't start with "./" or
// "../" (bare package names, absolute ids already matching the map) pass
// through untouched.
//
// This rewriting happens here, not in internal/modsyntax, because the
// module id convention is a workspace-loader concern: modsyntax treats
// Source as opaque text and is exercised by tests that key ModuleMaps on
// the literal specifiers its fixtures write.
func normalizeSpecifiers(importerID, source string) string {
	tokens := jslex.Tokenize(source)

	var b strings.Builder
	b.Grow(len(source))
	last := 0
	prevSignificant := ""
	for _, tok := range tokens {
		if tok.Kind != jslex.String {
			if tok.Significant() {
				prevSignificant = tok.Value
			}
			continue
		}
		if prevSignificant != "import" && prevSignificant != "from" {
			prevSignificant = tok.Value
			continue
		}
		prevSignificant = tok.Value

		if tok.End-tok.Start < 2 {
			continue
		}
		quote := tok.Value[0]
		if quote != '\'' && quote != '"' {
			continue
		}
		spec := tok.Value[1 : len(tok.Value)-1]
		if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
			continue
		}
		resolved := resolveSpecifier(importerID, spec)

		b.WriteString(source[last:tok.Start])
		b.WriteByte(quote)
		b.WriteString(resolved)
		b.WriteByte(quote)
		last = tok.End
	}
	b.WriteString(source[last:])
	return b.String()
}

// resolveSpecifier joins a relative specifier onto importerID's directory
// and cleans the result, matching the slash-separated, extension-as-
// written module ids Load/LoadFS produce.
func resolveSpecifier(importerID, spec string) string {
	dir := path.Dir(importerID)
	joined := path.Join(dir, spec)
	return path.Clean(joined)
}
