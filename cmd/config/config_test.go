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

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cembundle/cmd/config"
)

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	c := &config.BundleConfig{Entry: "./index.js"}
	assert.NoError(t, config.Validate(c))
}

func TestValidateRejectsMissingEntry(t *testing.T) {
	c := &config.BundleConfig{}
	err := config.Validate(c)
	require.Error(t, err)
}

func TestValidateRejectsUnknownPipelineStep(t *testing.T) {
	c := &config.BundleConfig{
		Entry:    "./index.js",
		Pipeline: []string{"shake", "nonsense"},
	}
	err := config.Validate(c)
	require.Error(t, err)
}

func TestValidateAcceptsFullConfig(t *testing.T) {
	c := &config.BundleConfig{
		Entry:    "./index.js",
		Output:   "dist/bundle.js",
		Include:  []string{"src/**/*.js"},
		Exclude:  []string{"**/*.test.js"},
		Pipeline: config.DefaultPipeline(),
		Minify:   config.MinifyConfig{KeepComments: false},
		Obfuscate: config.ObfuscateConfig{
			EncodeStrings:     true,
			RenameIdentifiers: true,
		},
		Verbose: true,
	}
	assert.NoError(t, config.Validate(c))
}

func TestCloneIsIndependent(t *testing.T) {
	c := &config.BundleConfig{Entry: "./index.js", Include: []string{"a"}}
	clone := c.Clone()
	clone.Include[0] = "b"
	assert.Equal(t, "a", c.Include[0])
	assert.Equal(t, "b", clone.Include[0])
}
