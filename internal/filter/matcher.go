package filter

import (
	"strings"
	"unicode"

	"go-bosszp-automation/internal/scraper"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher applies the optional keyword filter to extracted records. With no
// keywords configured everything passes; exclude keywords always apply.
type Matcher struct {
	keywords []string
	excludes []string
}

func NewMatcher(keywords, excludes []string) *Matcher {
	return &Matcher{
		keywords: normalizeAll(keywords),
		excludes: normalizeAll(excludes),
	}
}

// normalizeText lower-cases and strips combining marks so keyword matching is
// insensitive to case and diacritics.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			out = append(out, normalizeText(term))
		}
	}
	return out
}

func (m *Matcher) ShouldInclude(rec *scraper.JobRecord) bool {
	text := normalizeText(rec.Title + " " + rec.Company + " " + rec.Tags + " " + rec.Description)

	for _, excluded := range m.excludes {
		if strings.Contains(text, excluded) {
			return false
		}
	}

	if len(m.keywords) == 0 {
		return true
	}
	for _, keyword := range m.keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
