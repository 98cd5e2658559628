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

// Package transform strips TypeScript syntax before source reaches the
// tokenizer. It is strictly an upstream step: once a module has passed
// through StripTypes, internal/jslex never sees a type annotation and
// has no notion that one ever existed.
package transform

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Loader selects how esbuild parses the input.
type Loader string

const (
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
	LoaderJS  Loader = "js"
	LoaderJSX Loader = "jsx"
)

func loaderFor(sourcefile string, l Loader) api.Loader {
	switch l {
	case LoaderTSX:
		return api.LoaderTSX
	case LoaderJS:
		return api.LoaderJS
	case LoaderJSX:
		return api.LoaderJSX
	case LoaderTS:
		return api.LoaderTS
	}
	switch {
	case strings.HasSuffix(sourcefile, ".tsx"):
		return api.LoaderTSX
	case strings.HasSuffix(sourcefile, ".jsx"):
		return api.LoaderJSX
	case strings.HasSuffix(sourcefile, ".ts"):
		return api.LoaderTS
	default:
		return api.LoaderJS
	}
}

// StripTypes transforms TypeScript (or JSX) source into plain ES module
// JavaScript using esbuild, strictly as a pre-pass: the jslex tokenizer
// and everything downstream of it only ever sees the result.
func StripTypes(source []byte, sourcefile string, loader Loader) ([]byte, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:     loaderFor(sourcefile, loader),
		Format:     api.FormatESModule,
		Sourcefile: sourcefile,
		TsconfigRaw: `{
			"compilerOptions": {
				"importHelpers": false
			}
		}`,
	})
	if len(result.Errors) > 0 {
		msg := "transform failed:\n"
		for _, e := range result.Errors {
			msg += fmt.Sprintf("  %s\n", e.Text)
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return result.Code, nil
}

// CompareResult reports the size difference between this toolchain's own
// minify step and esbuild's minifier run over the same source, surfaced
// by the --compare-esbuild diagnostic flag.
type CompareResult struct {
	OwnBytes     int
	EsbuildBytes int
}

// CompareMinify runs esbuild's minifier over source and reports its
// output size alongside ownBytes (the size this toolchain's own
// internal/minify step already produced), so a user can sanity-check the
// home-grown minifier against a known-good implementation.
func CompareMinify(source []byte, sourcefile string, ownBytes int) (CompareResult, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:            api.LoaderJS,
		Format:            api.FormatESModule,
		Sourcefile:        sourcefile,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: false,
	})
	if len(result.Errors) > 0 {
		msg := "esbuild comparison failed:\n"
		for _, e := range result.Errors {
			msg += fmt.Sprintf("  %s\n", e.Text)
		}
		return CompareResult{}, fmt.Errorf("%s", msg)
	}
	return CompareResult{OwnBytes: ownBytes, EsbuildBytes: len(result.Code)}, nil
}
