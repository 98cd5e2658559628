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
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"bennypowers.dev/cembundle/internal/jslex"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Dump the token stream the tokenizer produces for a file",
	Long: `Reads a JavaScript file and prints every token jslex.Tokenize
produces for it — kind, value, and byte offsets — as a table. Useful
for inspecting exactly how a source string lexes, including the
regex-vs-division and template-interpolation decisions.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	tokenizeCmd.Flags().String("format", "table", "output format: table or json")
	tokenizeCmd.Flags().Bool("significant", false, "omit whitespace and comment tokens")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	tokens := jslex.Tokenize(string(data))

	onlySignificant, _ := cmd.Flags().GetBool("significant")
	if onlySignificant {
		filtered := tokens[:0]
		for _, t := range tokens {
			if t.Significant() {
				filtered = append(filtered, t)
			}
		}
		tokens = filtered
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(tokens)
	}
	return renderTokenTable(args[0], tokens)
}

func renderTokenTable(file string, tokens []jslex.Token) error {
	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, []string{
			t.Kind.String(),
			fmt.Sprintf("%d", t.Start),
			fmt.Sprintf("%d", t.End),
			previewValue(t.Value),
		})
	}

	table := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false)
	data := pterm.TableData{{"Kind", "Start", "End", "Value"}}
	data = append(data, rows...)
	out, err := table.WithData(data).Srender()
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println(file)
	pterm.Println(out)
	return nil
}

// previewValue truncates a token's value so a multi-line template or
// block comment doesn't blow up the table's row height.
func previewValue(v string) string {
	const maxLen = 40
	clipped := v
	truncated := false
	if i := indexOfNewline(clipped); i != -1 {
		clipped = clipped[:i]
		truncated = true
	}
	if len(clipped) > maxLen {
		clipped = clipped[:maxLen]
		truncated = true
	}
	if truncated {
		clipped += "…"
	}
	return clipped
}

func indexOfNewline(s string) int {
	for i, r := range s {
		if r == '\n' {
			return i
		}
	}
	return -1
}
