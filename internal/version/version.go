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

// Package version reports build identity for the cembundle binary:
// the module version, commit, and build time, set at link time via
// -ldflags or, failing that, recovered from the embedded Go module's
// build info.
package version

import "runtime/debug"

// These are overridden at build time with:
//
//	-ldflags "-X bennypowers.dev/cembundle/internal/version.version=v1.2.3 \
//	           -X bennypowers.dev/cembundle/internal/version.commit=abc123 \
//	           -X bennypowers.dev/cembundle/internal/version.buildTime=2026-01-01T00:00:00Z"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// BuildInfo is the structured form of the binary's version identity,
// suitable for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// GetVersion returns the short version string, falling back to the
// embedded module version (e.g. "v0.0.0-20260101...-abcdef123456" for a
// `go install`ed binary) when no -ldflags override was supplied.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetBuildInfo returns the full structured build identity.
func GetBuildInfo() BuildInfo {
	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	return BuildInfo{
		Version:   GetVersion(),
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: goVersion,
	}
}
