package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var numberRegex = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)

// unicode minus, en dash and em dash all show up in scraped cells
var unitReplacer = strings.NewReplacer(
	"%", "",
	"points", "",
	"point", "",
	",", "",
	" ", "",
	" ", "",
	"−", "-",
	"–", "-",
	"—", "-",
)

// ParseValue converts a scraped textual value like "4.4%", "52.5 points"
// or "1,234.5" into a float. The second return is false when the input
// contains no parseable number.
func ParseValue(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	s = unitReplacer.Replace(s)

	match := numberRegex.FindString(s)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
