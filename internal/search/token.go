// Package search implements the in-memory document index and its query
// surfaces: relevance-ranked filtered search, boolean-syntax advanced
// search, faceting, fuzzy matching and suggestions.
package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it on runs of non-word characters
// (word characters are letters, digits and underscore), discarding
// empties. Indexing and scoring share this so token boundaries agree
// everywhere.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// stopwords is the fixed English stop-word set used by the
// content-similarity comparator and suggestion phrase extraction. Plain
// tokenization never filters these.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "if": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "so": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// IsStopword reports whether the lower-case token is a stop word.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Keywords tokenizes s and removes stop words.
func Keywords(s string) []string {
	tokens := Tokenize(s)
	out := tokens[:0]
	for _, t := range tokens {
		if !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}
