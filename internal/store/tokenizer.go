package store

import (
	"strings"
	"unicode"
)

// span is a token's byte range in the source text.
type span struct {
	start, end int
}

// isSeparator reports whether r splits tokens: any white space or punctuation.
// Underscores are punctuation, so "tx_max" yields "tx" and "max".
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// splitSpans returns the byte ranges of the tokens in text.
func splitSpans(text string) []span {
	var spans []span
	start := -1
	for i, r := range text {
		if isSeparator(r) {
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(text)})
	}
	return spans
}

// Tokenize splits text on white space and punctuation and lower-cases the
// tokens. No stop words are removed and no stemming is applied.
func Tokenize(text string) []string {
	spans := splitSpans(text)
	tokens := make([]string, 0, len(spans))
	for _, s := range spans {
		tokens = append(tokens, strings.ToLower(text[s.start:s.end]))
	}
	return tokens
}

// QueryTerms tokenizes a query and drops repeated terms, keeping first
// occurrence order.
func QueryTerms(query string) []string {
	tokens := Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	terms := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}
