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

// Package config holds the viper-bound configuration shape for the
// cembundle CLI.
package config

// MinifyConfig controls internal/minify.Options at the CLI boundary.
type MinifyConfig struct {
	KeepComments bool `mapstructure:"keepComments" yaml:"keepComments" json:"keepComments,omitempty"`
}

// ObfuscateConfig controls internal/obfuscate.Options at the CLI
// boundary.
type ObfuscateConfig struct {
	EncodeStrings     bool `mapstructure:"encodeStrings" yaml:"encodeStrings" json:"encodeStrings,omitempty"`
	RenameIdentifiers bool `mapstructure:"renameIdentifiers" yaml:"renameIdentifiers" json:"renameIdentifiers,omitempty"`
}

// BundleConfig is the CLI/config-file configuration shape for a
// cembundle run (renamed and trimmed from the teacher's CemConfig,
// which described custom-elements-manifest generation options this
// toolchain has no use for).
type BundleConfig struct {
	ProjectDir string `mapstructure:"projectDir" yaml:"projectDir" json:"projectDir,omitempty"`
	ConfigFile string `mapstructure:"configFile" yaml:"configFile" json:"configFile,omitempty"`
	// Entry module id, as it would appear in an import specifier.
	Entry string `mapstructure:"entry" yaml:"entry" json:"entry"`
	// File path to write the bundle to. If omitted, output goes to stdout.
	Output string `mapstructure:"output" yaml:"output" json:"output,omitempty"`
	// Glob lists the workspace loader uses to select/skip source files.
	Include []string `mapstructure:"include" yaml:"include" json:"include,omitempty"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude,omitempty"`
	// Ordered pipeline step names: "shake", "bundle", "minify", "obfuscate".
	Pipeline  []string        `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline,omitempty"`
	Minify    MinifyConfig    `mapstructure:"minify" yaml:"minify" json:"minify,omitempty"`
	Obfuscate ObfuscateConfig `mapstructure:"obfuscate" yaml:"obfuscate" json:"obfuscate,omitempty"`
	Verbose   bool            `mapstructure:"verbose" yaml:"verbose" json:"verbose,omitempty"`
}

// Clone returns a deep copy of c.
func (c *BundleConfig) Clone() *BundleConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Include != nil {
		clone.Include = append([]string(nil), c.Include...)
	}
	if c.Exclude != nil {
		clone.Exclude = append([]string(nil), c.Exclude...)
	}
	if c.Pipeline != nil {
		clone.Pipeline = append([]string(nil), c.Pipeline...)
	}
	return &clone
}

// DefaultPipeline is used when a config file specifies no pipeline.
func DefaultPipeline() []string {
	return []string{"shake", "bundle", "minify"}
}
