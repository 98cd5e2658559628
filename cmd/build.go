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
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/cembundle/cmd/config"
	"bennypowers.dev/cembundle/internal/diagnostics"
	"bennypowers.dev/cembundle/internal/logging"
	"bennypowers.dev/cembundle/internal/minify"
	"bennypowers.dev/cembundle/internal/obfuscate"
	"bennypowers.dev/cembundle/internal/pipeline"
	"bennypowers.dev/cembundle/internal/platform"
	"bennypowers.dev/cembundle/internal/transform"
	"bennypowers.dev/cembundle/internal/workspace"
	"bennypowers.dev/cembundle/serve"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Tree-shake, bundle, minify and obfuscate a workspace from its entry module",
	Long: `Loads every JavaScript module under the project directory, tree-shakes
modules unreachable from --entry, bundles the survivors into a single
file, and runs any configured minify/obfuscate steps, writing the
result to --output (or stdout).`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("entry", "", "entry module id or path, e.g. ./src/index.js")
	buildCmd.Flags().String("output", "", "file to write the bundle to (default: stdout)")
	buildCmd.Flags().StringSlice("include", nil, "glob patterns selecting source files (default **/*.js, **/*.ts, **/*.tsx)")
	buildCmd.Flags().StringSlice("exclude", nil, "glob patterns excluding matched source files")
	buildCmd.Flags().StringSlice("pipeline", nil, "ordered pipeline steps: shake, bundle, minify, obfuscate")
	buildCmd.Flags().Bool("keep-comments", false, "keep comments during minify")
	buildCmd.Flags().Bool("encode-strings", false, "hex-escape string/template bodies during obfuscate")
	buildCmd.Flags().Bool("rename-identifiers", false, "rename local identifiers during obfuscate")
	buildCmd.Flags().Bool("compare-esbuild", false, "also minify the bundle with esbuild and log a size comparison")

	viper.BindPFlag("entry", buildCmd.Flags().Lookup("entry"))
	viper.BindPFlag("output", buildCmd.Flags().Lookup("output"))
	viper.BindPFlag("include", buildCmd.Flags().Lookup("include"))
	viper.BindPFlag("exclude", buildCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("pipeline", buildCmd.Flags().Lookup("pipeline"))
	viper.BindPFlag("minify.keepComments", buildCmd.Flags().Lookup("keep-comments"))
	viper.BindPFlag("obfuscate.encodeStrings", buildCmd.Flags().Lookup("encode-strings"))
	viper.BindPFlag("obfuscate.renameIdentifiers", buildCmd.Flags().Lookup("rename-identifiers"))
}

func loadBuildConfig() (*config.BundleConfig, error) {
	var c config.BundleConfig
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if len(c.Pipeline) == 0 {
		c.Pipeline = config.DefaultPipeline()
	}
	if err := config.Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// stepsFor converts config pipeline step names to pipeline.Step values.
// config.Validate already rejected any name outside the fixed set, so an
// unrecognized name here would be a programmer error, not user input.
func stepsFor(names []string) []pipeline.Step {
	steps := make([]pipeline.Step, len(names))
	for i, n := range names {
		switch n {
		case "shake":
			steps[i] = pipeline.StepTreeShake
		case "bundle":
			steps[i] = pipeline.StepBundle
		case "minify":
			steps[i] = pipeline.StepMinify
		case "obfuscate":
			steps[i] = pipeline.StepObfuscate
		}
	}
	return steps
}

// runPipelineBuild loads the workspace rooted at cfg.ProjectDir, resolves
// the entry module id, and runs the configured pipeline over it,
// recording any bundler cycles into sink.
func runPipelineBuild(ctx context.Context, cfg *config.BundleConfig, sink *diagnostics.Sink) (pipeline.Result, error) {
	root := cfg.ProjectDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return pipeline.Result{}, err
		}
		root = wd
	}

	m, err := workspace.Load(ctx, root, workspace.LoadOptions{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("loading workspace: %w", err)
	}

	entryID, err := workspace.EntryID(root, cfg.Entry)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("resolving entry: %w", err)
	}
	if !m.Has(entryID) {
		return pipeline.Result{}, fmt.Errorf("entry module %q not found in workspace", entryID)
	}

	result, err := pipeline.Run(pipeline.Config{
		Steps:     stepsFor(cfg.Pipeline),
		EntryID:   entryID,
		ModuleMap: m,
		MinifyOptions: minify.Options{
			KeepComments: cfg.Minify.KeepComments,
		},
		ObfsOptions: obfuscate.Options{
			EncodeStrings:     cfg.Obfuscate.EncodeStrings,
			RenameIdentifiers: cfg.Obfuscate.RenameIdentifiers,
		},
	})
	if err != nil {
		return pipeline.Result{}, err
	}
	sink.RecordCycles(result.Cycles)
	return result, nil
}

// newRebuildFunc returns a closure that reruns the pipeline and publishes
// the result to srv, shared by the watch and serve commands so both stay
// in lockstep on what "rebuild" means.
func newRebuildFunc(cmd *cobra.Command, cfg *config.BundleConfig, srv *serve.Server, logger *logging.Logger) func() {
	return func() {
		sink := diagnostics.NewSink()
		result, err := runPipelineBuild(cmd.Context(), cfg, sink)
		if err != nil {
			logger.Error("build failed: %v", err)
			return
		}
		var data []byte
		if result.Source != "" {
			data = []byte(result.Source)
		}
		srv.Publish(data)
		sink.Report(logger)
		logger.Success("rebuilt bundle (%d bytes)", len(data))
	}
}

func writeBuildOutput(fsys platform.FileSystem, output string, result pipeline.Result) error {
	var data []byte
	if result.Source != "" {
		data = []byte(result.Source)
	} else if result.ModuleMap != nil {
		// No bundle step ran; emit the surviving modules concatenated in
		// workspace order so --output still produces something runnable.
		for _, id := range result.ModuleMap.Keys() {
			src, _ := result.ModuleMap.Get(id)
			data = append(data, []byte(src)...)
			data = append(data, '\n')
		}
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return fsys.WriteFile(output, data, 0o644)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		pterm.Error.Printfln("configuration error: %v", err)
		os.Exit(1)
	}

	logger := logging.GetLogger()
	logger.SetDebugEnabled(cfg.Verbose)

	sink := diagnostics.NewSink()
	result, err := runPipelineBuild(cmd.Context(), cfg, sink)
	if err != nil {
		return err
	}

	if err := writeBuildOutput(platform.NewOSFileSystem(), cfg.Output, result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	sink.Report(logger)
	if cfg.Output != "" {
		logger.Success("wrote bundle to %s", cfg.Output)
	}

	if compare, _ := cmd.Flags().GetBool("compare-esbuild"); compare && result.Source != "" {
		if err := reportEsbuildComparison(logger, cfg.Entry, result.Source); err != nil {
			logger.Error("esbuild comparison failed: %v", err)
		}
	}

	if sink.HasDiagnostics() {
		os.Exit(2)
	}
	return nil
}

// reportEsbuildComparison runs esbuild's own minifier over the bundled
// source and logs how its output size compares to this toolchain's own
// minify/obfuscate pipeline. Diagnostic only: esbuild's result is never
// written anywhere or substituted for result.Source.
func reportEsbuildComparison(logger *logging.Logger, entry, bundled string) error {
	cmp, err := transform.CompareMinify([]byte(bundled), entry, len(bundled))
	if err != nil {
		return err
	}
	logger.Info("size comparison: own=%d bytes, esbuild=%d bytes", cmp.OwnBytes, cmp.EsbuildBytes)
	return nil
}
