// Package verifier scores how well recognized document text covers a list of
// requirement titles.
package verifier

import (
	"strings"

	"github.com/BerylCAtieno/loan-document-verifier/internal/keywords"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

// MatchThreshold is the minimum confidence, in percent, for a match.
const MatchThreshold = 30.0

// Verify reports the share of requirement keywords present in text.
// Repeated keywords count toward the total once per occurrence but are
// matched and reported once.
func Verify(text string, requirements []string) models.VerificationResult {
	result := models.VerificationResult{MatchedKeywords: []string{}}
	if text == "" || len(requirements) == 0 {
		return result
	}

	kws := keywords.FromRequirements(requirements)
	if len(kws) == 0 {
		return result
	}

	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, len(kws))
	for _, kw := range kws {
		if _, ok := seen[kw]; ok {
			continue
		}
		if strings.Contains(lower, kw) {
			seen[kw] = struct{}{}
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		}
	}

	result.Confidence = float64(len(result.MatchedKeywords)) / float64(len(kws)) * 100
	result.Matches = result.Confidence >= MatchThreshold
	return result
}
