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

package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cembundle/internal/search"
)

var sampleIDs = []string{"src/app.js", "src/utils/math.js", "src/utils/string.js", "lib/vendor.js"}

func TestFindModulesByRegex(t *testing.T) {
	matches := search.FindModules(sampleIDs, "utils/.*\\.js")
	var ids []string
	for _, m := range matches {
		ids = append(ids, m.ModuleID)
	}
	assert.ElementsMatch(t, []string{"src/utils/math.js", "src/utils/string.js"}, ids)
}

func TestFindModulesFallsBackToFuzzyOnBadRegex(t *testing.T) {
	matches := search.FindModules(sampleIDs, "math[")
	require.NotEmpty(t, matches)
}

func TestFindModulesEmptyQueryReturnsAllSorted(t *testing.T) {
	matches := search.FindModules(sampleIDs, "")
	require.Len(t, matches, len(sampleIDs))
	assert.Equal(t, "lib/vendor.js", matches[0].ModuleID)
}

func TestClosestModuleFindsNearMiss(t *testing.T) {
	closest, ok := search.ClosestModule(sampleIDs, "src/app.jss")
	require.True(t, ok)
	assert.Equal(t, "src/app.js", closest)
}

func TestSlugifyProducesURLSafeName(t *testing.T) {
	assert.Equal(t, "src-utils-math-js", search.Slugify("src/utils/math.js"))
}
