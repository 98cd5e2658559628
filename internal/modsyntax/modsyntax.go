// Package modsyntax classifies import/export statements out of a token
// stream produced by internal/jslex. It never re-tokenizes or re-parses
// expression syntax: it walks the flat token list looking for the fixed
// set of statement shapes the bundler and tree-shaker need, and skips
// everything else.
package modsyntax

import "bennypowers.dev/cembundle/internal/jslex"

// ImportKind distinguishes a bare side-effect import from one that binds
// a default, namespace, or named list.
type ImportKind int

const (
	SideEffect ImportKind = iota
	NamedOrDefault
)

// ImportRecord describes one import statement. Source is the specifier
// with surrounding quotes stripped.
type ImportRecord struct {
	Kind   ImportKind
	Source string
}

// ExportKind distinguishes the three export record shapes.
type ExportKind int

const (
	ExportDefault ExportKind = iota
	ExportNamed
	ExportAll
)

// ExportRecord describes one export statement. Names is populated for
// ExportNamed. Source is populated for re-exports (`export * from "x"`
// or `export { a } from "x"`); it is empty for local exports.
type ExportRecord struct {
	Kind   ExportKind
	Names  []string
	Source string
}

// Syntax is the result of scanning one module's token stream for
// import/export statements.
type Syntax struct {
	Imports []ImportRecord
	Exports []ExportRecord
}

// FindModuleSyntax walks tokens and extracts every import/export
// statement it recognizes. Unrecognized or non-module-syntax tokens are
// skipped; recognized statements are consumed through their terminating
// ";" (or EOF, if the source ends without one).
func FindModuleSyntax(tokens []jslex.Token) Syntax {
	var out Syntax
	i := 0
	n := len(tokens)

	next := func(j int) int {
		for j < n && !tokens[j].Significant() {
			j++
		}
		return j
	}

	for i < n {
		if tokens[i].Kind == jslex.EOF {
			break
		}
		if !tokens[i].Significant() {
			i++
			continue
		}
		tok := tokens[i]
		if tok.Kind == jslex.Keyword && tok.Value == "import" {
			rec, end := parseImport(tokens, i)
			if rec != nil {
				out.Imports = append(out.Imports, *rec)
			}
			i = skipToSemicolon(tokens, end)
			continue
		}
		if tok.Kind == jslex.Keyword && tok.Value == "export" {
			rec, end := parseExport(tokens, i)
			if rec != nil {
				out.Exports = append(out.Exports, *rec)
			}
			i = skipToSemicolon(tokens, end)
			continue
		}
		i++
	}
	return out
}

// skipToSemicolon advances past the next ";" token starting at from,
// or to EOF if none is found. It does not need to track nesting: this
// layer only cares about the statement's source, not its body.
func skipToSemicolon(tokens []jslex.Token, from int) int {
	i := from
	for i < len(tokens) {
		if tokens[i].Kind == jslex.EOF {
			return i
		}
		if tokens[i].Kind == jslex.Punctuator && tokens[i].Value == ";" {
			return i + 1
		}
		i++
	}
	return i
}

func isFrom(t jslex.Token) bool {
	return (t.Kind == jslex.Identifier || t.Kind == jslex.Keyword) && t.Value == "from"
}

func stripQuotes(v string) string {
	if len(v) >= 2 {
		q := v[0]
		if (q == '"' || q == '\'' || q == '`') && v[len(v)-1] == q {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// parseImport recognizes:
//
//	import "X";                          -> side-effect
//	import ...anything... from "X";      -> named-or-default
//
// start points at the "import" keyword token. Returns the record (nil if
// the statement doesn't resolve to a string specifier) and the index to
// resume scanning from.
func parseImport(tokens []jslex.Token, start int) (*ImportRecord, int) {
	n := len(tokens)
	j := start + 1
	j = skipWS(tokens, j)
	if j < n && tokens[j].Kind == jslex.String {
		source := stripQuotes(tokens[j].Value)
		return &ImportRecord{Kind: SideEffect, Source: source}, j + 1
	}
	// Scan forward for a "from" token followed by a string, stopping at
	// the statement boundary so we never cross into the next statement.
	for j < n {
		if tokens[j].Kind == jslex.EOF || (tokens[j].Kind == jslex.Punctuator && tokens[j].Value == ";") {
			break
		}
		if isFrom(tokens[j]) {
			k := skipWS(tokens, j+1)
			if k < n && tokens[k].Kind == jslex.String {
				source := stripQuotes(tokens[k].Value)
				return &ImportRecord{Kind: NamedOrDefault, Source: source}, k + 1
			}
		}
		j++
	}
	return nil, j
}

// parseExport recognizes the six export forms from the fixed grammar.
// start points at the "export" keyword token.
func parseExport(tokens []jslex.Token, start int) (*ExportRecord, int) {
	n := len(tokens)
	j := skipWS(tokens, start+1)
	if j >= n || tokens[j].Kind == jslex.EOF {
		return nil, j
	}
	tok := tokens[j]

	// export * from "X";  or  export *;
	if tok.Kind == jslex.Punctuator && tok.Value == "*" {
		k := skipWS(tokens, j+1)
		if k < n && isFrom(tokens[k]) {
			m := skipWS(tokens, k+1)
			if m < n && tokens[m].Kind == jslex.String {
				return &ExportRecord{Kind: ExportAll, Source: stripQuotes(tokens[m].Value)}, m + 1
			}
		}
		return &ExportRecord{Kind: ExportAll}, k
	}

	// export default ...
	if tok.Kind == jslex.Keyword && tok.Value == "default" {
		return &ExportRecord{Kind: ExportDefault}, j + 1
	}

	// export { a, b, c };  or  export { a, b } from "X";
	if tok.Kind == jslex.Punctuator && tok.Value == "{" {
		names, k := parseNamedList(tokens, j+1)
		k = skipWS(tokens, k)
		if k < n && isFrom(tokens[k]) {
			m := skipWS(tokens, k+1)
			if m < n && tokens[m].Kind == jslex.String {
				return &ExportRecord{Kind: ExportNamed, Names: names, Source: stripQuotes(tokens[m].Value)}, m + 1
			}
		}
		return &ExportRecord{Kind: ExportNamed, Names: names}, k
	}

	// export <const|let|var|function|class> <identifier> ...
	if tok.Kind == jslex.Keyword {
		switch tok.Value {
		case "const", "let", "var", "function", "class":
			k := skipWS(tokens, j+1)
			// function*: skip an optional "*" before the name.
			if k < n && tokens[k].Kind == jslex.Punctuator && tokens[k].Value == "*" {
				k = skipWS(tokens, k+1)
			}
			if k < n && tokens[k].Kind == jslex.Identifier {
				return &ExportRecord{Kind: ExportNamed, Names: []string{tokens[k].Value}}, k + 1
			}
			return nil, k
		}
	}

	return nil, j
}

// parseNamedList collects every identifier inside a `{ ... }` export
// clause, starting just after the opening brace. `as` renames collapse
// to the identifier encountered first (the local/exported-from name);
// this implementation consistently picks that side, per spec's license
// to pick either as long as it's consistent.
func parseNamedList(tokens []jslex.Token, start int) ([]string, int) {
	n := len(tokens)
	var names []string
	j := start
	expectName := true
	for j < n {
		if tokens[j].Kind == jslex.EOF {
			return names, j
		}
		if tokens[j].Kind == jslex.Punctuator && tokens[j].Value == "}" {
			return names, j + 1
		}
		if !tokens[j].Significant() {
			j++
			continue
		}
		if tokens[j].Kind == jslex.Punctuator && tokens[j].Value == "," {
			expectName = true
			j++
			continue
		}
		if tokens[j].Kind == jslex.Identifier || tokens[j].Kind == jslex.Keyword {
			if tokens[j].Value == "as" {
				// Skip the renamed-to identifier; we already recorded the
				// left-hand side.
				j++
				continue
			}
			if expectName {
				names = append(names, tokens[j].Value)
				expectName = false
			}
			j++
			continue
		}
		j++
	}
	return names, j
}

func skipWS(tokens []jslex.Token, j int) int {
	for j < len(tokens) && !tokens[j].Significant() {
		j++
	}
	return j
}
