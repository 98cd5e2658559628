// Package minify strips comments, shortens boolean literals, and
// collapses insignificant whitespace from JavaScript source, operating
// purely on the token stream produced by internal/jslex.
package minify

import (
	"strings"

	"bennypowers.dev/cembundle/internal/jslex"
)

// Options controls the minifier's behavior.
type Options struct {
	// KeepComments, when true, short-circuits all passes: the source is
	// returned with only leading/trailing whitespace trimmed.
	KeepComments bool
}

// Minify preserves semantics for any program that doesn't depend on
// source positions or comments.
func Minify(source string, opts Options) string {
	if opts.KeepComments {
		return strings.TrimSpace(source)
	}

	tokens := jslex.Tokenize(source)

	// Drop comments, rewrite true/false, leave everything else as-is.
	kept := make([]jslex.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == jslex.Comment {
			continue
		}
		if (t.Kind == jslex.Identifier || t.Kind == jslex.Keyword) && t.Value == "true" {
			kept = append(kept, jslex.Token{Kind: jslex.Identifier, Value: "!0", Start: t.Start, End: t.End})
			continue
		}
		if (t.Kind == jslex.Identifier || t.Kind == jslex.Keyword) && t.Value == "false" {
			kept = append(kept, jslex.Token{Kind: jslex.Identifier, Value: "!1", Start: t.Start, End: t.End})
			continue
		}
		kept = append(kept, t)
	}

	var b strings.Builder
	var prevSignificant *jslex.Token
	for i := 0; i < len(kept); i++ {
		t := kept[i]
		if t.Kind == jslex.EOF {
			continue
		}
		if t.Kind == jslex.Whitespace {
			next := nextSignificant(kept, i+1)
			if prevSignificant != nil && wordLike(*prevSignificant) && next != nil && wordLike(*next) {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(t.Value)
		prevSignificant = &t
	}

	return strings.TrimSpace(b.String())
}

func wordLike(t jslex.Token) bool {
	return t.Kind.Word()
}

func nextSignificant(tokens []jslex.Token, from int) *jslex.Token {
	for i := from; i < len(tokens); i++ {
		if tokens[i].Kind == jslex.EOF {
			return nil
		}
		if tokens[i].Kind != jslex.Whitespace {
			t := tokens[i]
			return &t
		}
	}
	return nil
}
