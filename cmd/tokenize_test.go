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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewValueTruncatesAtFirstNewline(t *testing.T) {
	assert.Equal(t, "const a = 1;…", previewValue("const a = 1;\nconst b = 2;"))
}

func TestPreviewValueTruncatesLongSingleLine(t *testing.T) {
	long := "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
	got := previewValue(long)
	assert.True(t, len(got) < len(long))
	assert.Contains(t, got, "…")
}

func TestPreviewValueLeavesShortValueUntouched(t *testing.T) {
	assert.Equal(t, "const", previewValue("const"))
}

func TestRenderTokenTableProducesNoError(t *testing.T) {
	err := renderTokenTable("example.js", nil)
	assert.NoError(t, err)
}
