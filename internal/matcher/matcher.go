// Package matcher ranks candidate files against a requirement list using
// keyword hits in the filename.
package matcher

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/BerylCAtieno/loan-document-verifier/internal/keywords"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

const (
	BaseScore    = 10
	KeywordBonus = 5
	HintBonus    = 15

	// DefaultLimit is how many ranked candidates callers usually keep.
	DefaultLimit = 5
)

// AllowedExtensions are the file types a candidate may have, without the dot.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

type MatchScore struct {
	DocumentID      string   `json:"documentId" yaml:"documentId"`
	Name            string   `json:"name" yaml:"name"`
	Score           int      `json:"score" yaml:"score"`
	MatchedKeywords []string `json:"matchedKeywords" yaml:"matchedKeywords"`
}

// AllowedExtension reports whether the filename has an accepted extension.
func AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	_, ok := AllowedExtensions[ext]
	return ok
}

// Match scores every candidate and returns those scoring above the base score,
// highest first. Equal scores keep their input order.
func Match(candidates []models.CandidateDocument, requirements []string, hint DocTypeHint) []MatchScore {
	kws := keywords.FromRequirements(requirements)

	scores := make([]MatchScore, 0, len(candidates))
	for _, c := range candidates {
		s, ok := score(c, kws, hint)
		if !ok || s.Score <= BaseScore {
			continue
		}
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores
}

func score(c models.CandidateDocument, kws []string, hint DocTypeHint) (MatchScore, bool) {
	if !AllowedExtension(c.Name) {
		return MatchScore{}, false
	}

	name := strings.ToLower(c.Name)
	result := MatchScore{
		DocumentID:      c.ID,
		Name:            c.Name,
		Score:           BaseScore,
		MatchedKeywords: []string{},
	}

	seen := make(map[string]struct{})
	for _, kw := range kws {
		if !strings.Contains(name, kw) {
			continue
		}
		result.Score += KeywordBonus
		if _, dup := seen[kw]; !dup {
			seen[kw] = struct{}{}
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		}
	}

	if hint.matches(name) {
		result.Score += HintBonus
	}

	return result, true
}

// Top keeps the first n scores. A non-positive n keeps everything.
func Top(scores []MatchScore, n int) []MatchScore {
	if n <= 0 || len(scores) <= n {
		return scores
	}
	return scores[:n]
}
