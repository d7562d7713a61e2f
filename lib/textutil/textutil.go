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
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeName(m)) {
			return true
		}
	}
	return false
}

// organization names come back from scraped pages with inconsistent
// punctuation ("Committee on Finance" vs "Committee on Finance,").
// anything this close is the same body.
const sameNameSimilarity = 0.95

func SameName(a, b string) bool {
	a = NormalizeName(a)
	b = NormalizeName(b)
	if a == b {
		return true
	}
	return matchr.JaroWinkler(a, b, false) >= sameNameSimilarity
}
