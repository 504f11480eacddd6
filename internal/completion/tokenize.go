// Package completion connects argument trees to an input line. It splits the
// line into tokens, finds the command, runs the command's tree and falls back
// to file and executable completion when no tree handles the request.
package completion

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Token is one argument of the input line.
type Token struct {
	// Text is the token with quote characters removed.
	Text string
	// Start and End are byte offsets of the raw token in the line.
	Start int
	End   int
	// Open is set when the token has an unterminated quote.
	Open bool
}

// Tokenize splits text on whitespace. Runs between quote characters keep
// their whitespace and lose the quotes; an unterminated quote runs to the end
// of the text.
func Tokenize(text string, quote rune) []Token {
	var (
		tokens []Token
		b      strings.Builder
		start  = -1
		quoted bool
	)

	for i, r := range text {
		switch {
		case r == quote:
			if start < 0 {
				start = i
			}
			quoted = !quoted
		case unicode.IsSpace(r) && !quoted:
			if start >= 0 {
				tokens = append(tokens, Token{Text: b.String(), Start: start, End: i})
				b.Reset()
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
			b.WriteRune(r)
		}
	}

	if start >= 0 {
		tokens = append(tokens, Token{Text: b.String(), Start: start, End: len(text), Open: quoted})
	}
	return tokens
}

// defaultPathExt is used when PATHEXT is not set.
const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// pathExtensions returns the lower-cased executable extensions and whether
// they were configured explicitly through PATHEXT.
func pathExtensions(getenv func(string) string) ([]string, bool) {
	raw := getenv("PATHEXT")
	explicit := raw != ""
	if !explicit {
		raw = defaultPathExt
	}

	var exts []string
	for _, ext := range strings.Split(raw, ";") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts, explicit
}

// CommandName reduces the first word of a line to the name trees are
// registered under: directories and executable extensions are removed and the
// result is lower-cased.
func CommandName(word string, getenv func(string) string) string {
	if i := strings.LastIndexAny(word, `/\`); i >= 0 {
		word = word[i+1:]
	}

	exts, _ := pathExtensions(getenv)
	if ext := strings.ToLower(filepath.Ext(word)); ext != "" && slices.Contains(exts, ext) {
		word = word[:len(word)-len(ext)]
	}
	return strings.ToLower(word)
}
