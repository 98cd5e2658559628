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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"bennypowers.dev/cembundle/internal/search"
	"bennypowers.dev/cembundle/internal/workspace"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find module ids in the workspace by regex or fuzzy match",
	Long: `Loads every JavaScript module under the project directory and lists
the module ids matching query.

query is treated as a case-insensitive regular expression first; if it
fails to compile or matches nothing, it falls back to a fuzzy
substring match. An empty query lists every module id.

Examples:

  cembundle search button
  cembundle search "^src/.*\.js$"
  cembundle search --format json utils
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringSlice("include", nil, "glob patterns selecting source files (default **/*.js, **/*.ts, **/*.tsx)")
	searchCmd.Flags().StringSlice("exclude", nil, "glob patterns excluding matched source files")
	searchCmd.Flags().String("format", "table", "output format: table or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) == 1 {
		query = args[0]
	}

	cfg, err := loadBuildConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if include, _ := cmd.Flags().GetStringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = exclude
	}

	root := cfg.ProjectDir
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}

	m, err := workspace.Load(context.Background(), root, workspace.LoadOptions{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return fmt.Errorf("loading workspace: %w", err)
	}

	matches := search.FindModules(m.Keys(), query)
	if len(matches) == 0 {
		if closest, ok := search.ClosestModule(m.Keys(), query); ok {
			return fmt.Errorf("no module matched %q, did you mean %q?", query, closest)
		}
		return errors.New("no modules found in workspace")
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(matches)
	}
	return renderSearchTable(matches)
}

func renderSearchTable(matches []search.Match) error {
	data := pterm.TableData{{"Module", "Score"}}
	for _, match := range matches {
		data = append(data, []string{match.ModuleID, fmt.Sprintf("%d", match.Score)})
	}
	out, err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false).WithData(data).Srender()
	if err != nil {
		return err
	}
	pterm.Println(out)
	return nil
}
