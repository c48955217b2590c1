package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether the normalized name contains any of the
// matchers, which should already be normalized.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var trailingCountRegex = regexp.MustCompile(`\s*\(\d+\)$`)

// StripTrailingCount removes the "(N)" listing count the catalog appends to
// department and class names.
func StripTrailingCount(name string) string {
	return trailingCountRegex.ReplaceAllString(strings.TrimSpace(name), "")
}

type Match struct {
	Candidate  string
	Similarity float64
}

// BestMatch finds the candidate most similar to name. Candidates containing
// the normalized name are preferred, otherwise the one with the highest
// Jaro-Winkler similarity at or above threshold wins.
func BestMatch(name string, candidates []string, threshold float64) (Match, bool) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return Match{}, false
	}

	for _, c := range candidates {
		if MatchName(c, []string{normalized}) {
			return Match{Candidate: c, Similarity: 1}, true
		}
	}

	var best Match
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity > best.Similarity {
			best = Match{Candidate: c, Similarity: similarity}
		}
	}
	if best.Candidate == "" || best.Similarity < threshold {
		return Match{}, false
	}
	return best, true
}
