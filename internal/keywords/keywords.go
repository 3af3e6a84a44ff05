// Package keywords turns requirement titles into the keyword lists used for
// matching filenames and scoring recognized text.
package keywords

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the shortest keyword kept; shorter tokens are treated as noise.
const MinLength = 4

var stripper = strings.NewReplacer(".", "", ",", "", ";", "", ":", "", "(", "", ")", "")

// Tokenize lowercases a requirement, strips punctuation and returns the
// whitespace-separated tokens of at least MinLength runes, in order.
func Tokenize(requirement string) []string {
	fields := strings.Fields(strings.ToLower(requirement))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = stripper.Replace(f)
		if utf8.RuneCountInString(f) < MinLength {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// FromRequirements tokenizes every requirement and concatenates the results.
// Repeated keywords are kept, each occurrence counts.
func FromRequirements(requirements []string) []string {
	var all []string
	for _, r := range requirements {
		all = append(all, Tokenize(r)...)
	}
	if all == nil {
		return []string{}
	}
	return all
}
