// Package obfuscate hex-encodes string literals and renames local
// identifiers in JavaScript source, operating purely on the token
// stream produced by internal/jslex.
package obfuscate

import (
	"strings"

	"bennypowers.dev/cembundle/internal/jslex"
)

// Options controls which obfuscation passes run.
type Options struct {
	EncodeStrings     bool
	RenameIdentifiers bool
	// FlattenIfs is accepted for interface compatibility but is a no-op
	// in this core, per spec.
	FlattenIfs bool
}

// DefaultOptions matches spec.md §4.F's defaults.
func DefaultOptions() Options {
	return Options{EncodeStrings: true}
}

// Globals is the fixed do-not-rename set from spec.md §6.
var Globals = map[string]struct{}{
	"window": {}, "global": {}, "globalThis": {}, "document": {}, "console": {},
	"Math": {}, "Date": {}, "JSON": {}, "Array": {}, "Object": {}, "String": {},
	"Number": {}, "Boolean": {}, "RegExp": {}, "Promise": {}, "Set": {}, "Map": {},
	"Buffer": {}, "atob": {}, "undefined": {}, "NaN": {}, "Infinity": {},
	"Error": {}, "TypeError": {}, "ReferenceError": {}, "SyntaxError": {},
	"RangeError": {}, "eval": {}, "parseInt": {}, "parseFloat": {}, "isNaN": {},
	"isFinite": {}, "encodeURI": {}, "decodeURI": {}, "encodeURIComponent": {},
	"decodeURIComponent": {}, "require": {}, "module": {}, "exports": {},
	"__dirname": {}, "__filename": {},
}

// Obfuscate tokenizes source and applies the requested passes. When both
// are requested, renaming runs first (on the tokenized source), then
// string encoding runs on the renamed output, re-tokenizing in between.
func Obfuscate(source string, opts Options) string {
	out := source
	if opts.RenameIdentifiers {
		out = renameIdentifiers(out)
	}
	if opts.EncodeStrings {
		out = encodeStrings(out)
	}
	return out
}

// encodeStrings hex-escapes the inner text of every string token, and of
// every template token that contains no "${" substring (templates with
// interpolation are emitted verbatim: correctness over coverage).
func encodeStrings(source string) string {
	tokens := jslex.Tokenize(source)
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case jslex.String:
			b.WriteString(hexEncodeQuoted(t.Value))
		case jslex.Template:
			if strings.Contains(t.Value, "${") {
				b.WriteString(t.Value)
			} else {
				b.WriteString(hexEncodeQuoted(t.Value))
			}
		case jslex.EOF:
		default:
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

// hexEncodeQuoted assumes value is a quoted token (leading/trailing
// quote char identical) and re-emits it with its inner bytes replaced by
// \xHH escapes.
func hexEncodeQuoted(value string) string {
	if len(value) < 2 {
		return value
	}
	q := value[0]
	inner := value[1 : len(value)-1]
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(inner); i++ {
		b.WriteString("\\x")
		writeHexByte(&b, inner[i])
	}
	b.WriteByte(q)
	return b.String()
}

const hexDigits = "0123456789abcdef"

func writeHexByte(b *strings.Builder, c byte) {
	b.WriteByte(hexDigits[c>>4])
	b.WriteByte(hexDigits[c&0x0f])
}

// renameIdentifiers performs the two-pass collect-then-rewrite described
// in spec.md §4.F.
func renameIdentifiers(source string) string {
	tokens := jslex.Tokenize(source)

	assigned := make(map[string]string)
	next := 0

	var prevSignificant *jslex.Token
	for _, t := range tokens {
		if t.Kind == jslex.Identifier && renamable(t, prevSignificant) {
			if _, ok := assigned[t.Value]; !ok {
				assigned[t.Value] = generateName(next)
				next++
			}
		}
		if t.Significant() {
			tok := t
			prevSignificant = &tok
		}
	}

	var b strings.Builder
	prevSignificant = nil
	for _, t := range tokens {
		if t.Kind == jslex.EOF {
			break
		}
		if t.Kind == jslex.Identifier && renamable(t, prevSignificant) {
			b.WriteString(assigned[t.Value])
		} else {
			b.WriteString(t.Value)
		}
		if t.Significant() {
			tok := t
			prevSignificant = &tok
		}
	}
	return b.String()
}

// renamable reports whether t may be renamed: not a keyword (guaranteed
// by kind already, since Kind is Identifier here), not in the Globals
// set, and not in property-access position (the token immediately
// preceding it, ignoring whitespace/comments, is not "." or "?.").
func renamable(t jslex.Token, prevSignificant *jslex.Token) bool {
	if t.Kind != jslex.Identifier {
		return false
	}
	if _, ok := Globals[t.Value]; ok {
		return false
	}
	if prevSignificant != nil && prevSignificant.Kind == jslex.Punctuator {
		if prevSignificant.Value == "." || prevSignificant.Value == "?." {
			return false
		}
	}
	return true
}

// generateName maps n >= 0 to a base-52 string over [a-zA-Z], per the
// recurrence in spec.md §4.F: c = chars[n mod 52], n' = floor(n/52) - 1,
// prepend c, repeat while n' >= 0.
func generateName(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var chars []byte
	for {
		c := alphabet[n%52]
		chars = append([]byte{c}, chars...)
		n = n/52 - 1
		if n < 0 {
			break
		}
	}
	return string(chars)
}
