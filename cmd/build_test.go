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
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cembundle/internal/logging"
	"bennypowers.dev/cembundle/internal/modulemap"
	"bennypowers.dev/cembundle/internal/pipeline"
	"bennypowers.dev/cembundle/internal/platform"
)

func TestStepsForMapsConfigNamesToPipelineSteps(t *testing.T) {
	steps := stepsFor([]string{"shake", "bundle", "minify", "obfuscate"})
	assert.Equal(t, []pipeline.Step{
		pipeline.StepTreeShake,
		pipeline.StepBundle,
		pipeline.StepMinify,
		pipeline.StepObfuscate,
	}, steps)
}

func TestWriteBuildOutputWritesBundledSource(t *testing.T) {
	fsys := platform.NewMapFS(nil)
	output := "dist/bundle.js"

	err := writeBuildOutput(fsys, output, pipeline.Result{Source: "console.log(1);\n"})
	require.NoError(t, err)

	data, err := fsys.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);\n", string(data))
}

func TestReportEsbuildComparisonLogsSizes(t *testing.T) {
	err := reportEsbuildComparison(logging.GetLogger(), "entry.js", `export const   x   =   1  ;`)
	assert.NoError(t, err)
}

func TestWriteBuildOutputFallsBackToModuleMapWhenUnbundled(t *testing.T) {
	m := modulemap.New()
	m.Set("a.js", "const a = 1;")
	m.Set("b.js", "const b = 2;")

	fsys := platform.NewMapFS(nil)
	output := "dist/out.js"

	err := writeBuildOutput(fsys, output, pipeline.Result{ModuleMap: m})
	require.NoError(t, err)

	data, err := fsys.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "const a = 1;")
	assert.Contains(t, string(data), "const b = 2;")
}
