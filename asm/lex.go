package asm

import "strings"

// delimiters are the single characters that always split a token away from
// whatever precedes or follows them, mirroring the tokenizer regex in
// original_source/rtl/asm.py (`, [ ] + - * / ( ) & | ~ ;`). ':' is added so
// that a label can be written "NAME:" without a separating space -- the
// Python original only recognized a label when the colon was its own
// whitespace-separated token.
const delimiters = ",[]+-*/()&|~;:"

// tokenize splits one source line into tokens, dropping whitespace and
// anything from a ';' comment marker onward.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range line {
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			flush()
		case strings.ContainsRune(delimiters, r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	for i, tok := range tokens {
		if tok == ";" {
			return tokens[:i]
		}
	}
	return tokens
}
