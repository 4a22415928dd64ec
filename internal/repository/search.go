package repository

import (
	"regexp"
	"strings"
)

const maxSearchTerms = 10

var searchWordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

var searchStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "not": {}, "can": {}, "cannot": {},
	"are": {}, "was": {}, "have": {}, "has": {}, "this": {},
	"that": {}, "from": {}, "please": {}, "help": {}, "when": {}, "what": {}, "how": {},
}

// SearchTerms extracts distinct lowercase words of at least three
// characters, dropping common filler words.
func SearchTerms(text string) []string {
	seen := map[string]struct{}{}
	var terms []string
	for _, w := range searchWordPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := searchStopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return terms
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
