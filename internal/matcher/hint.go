package matcher

import (
	"strings"
	"unicode"
)

// DocTypeHint narrows the kind of document a slot expects.
type DocTypeHint string

const (
	HintNone     DocTypeHint = ""
	HintPrimary  DocTypeHint = "primary"
	HintTax      DocTypeHint = "tax"
	HintIdentity DocTypeHint = "identity"
)

var hintTerms = map[DocTypeHint][]string{
	HintPrimary:  {"article", "certificate", "formation", "incorporation"},
	HintTax:      {"tax", "irs", "ein"},
	HintIdentity: {"license", "passport", "id", "identification"},
}

// ParseDocTypeHint maps free text such as "primary formation document" to a
// hint. Text that names none of the known kinds yields HintNone.
func ParseDocTypeHint(s string) DocTypeHint {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return HintNone
	case strings.Contains(s, "primary"), strings.Contains(s, "formation"):
		return HintPrimary
	case strings.Contains(s, "tax"):
		return HintTax
	case strings.Contains(s, "identity"), strings.Contains(s, "identification"), hasWord(s, "id", "ids"):
		return HintIdentity
	default:
		return HintNone
	}
}

// hasWord reports whether s contains one of words as a whole word.
func hasWord(s string, words ...string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func (h DocTypeHint) matches(lowerName string) bool {
	for _, term := range hintTerms[h] {
		if strings.Contains(lowerName, term) {
			return true
		}
	}
	return false
}
