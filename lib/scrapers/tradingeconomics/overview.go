package tradingeconomics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"macroscan-backend/lib/htmlutil"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// The site's markup inconsistently links indicator rows by slug or by
// label text, so row location runs a list of independent strategies in
// order of specificity.
type rowStrategy func(doc *goquery.Document, country string, spec macrodata.IndicatorSpec) *goquery.Selection

var rowStrategies = []rowStrategy{
	rowBySlugHref,
	rowByLabelText,
}

func rowBySlugHref(doc *goquery.Document, country string, spec macrodata.IndicatorSpec) *goquery.Selection {
	target := fmt.Sprintf("/%s/%s", country, spec.Slug)

	var row *goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if !strings.Contains(anchor.AttrOr("href", ""), target) {
			return true
		}
		tr := anchor.Closest("tr")
		if tr.Length() == 0 {
			return true
		}
		row = tr
		return false
	})
	return row
}

func rowByLabelText(doc *goquery.Document, country string, spec macrodata.IndicatorSpec) *goquery.Selection {
	// normalized matching so ragged anchor whitespace still hits
	matchers := []string{textutil.NormalizeName(spec.RowLabel)}

	var row *goquery.Selection
	doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if !textutil.MatchName(anchor.Text(), matchers) {
			return true
		}
		tr := anchor.Closest("tr")
		if tr.Length() == 0 {
			return true
		}
		row = tr
		return false
	})
	return row
}

// FindIndicatorRow locates the overview table row for one indicator
// and returns its cell texts in column order.
func FindIndicatorRow(doc *goquery.Document, country string, spec macrodata.IndicatorSpec) ([]string, bool) {
	for _, strategy := range rowStrategies {
		row := strategy(doc, country, spec)
		if row == nil {
			continue
		}
		return htmlutil.CellTexts(row), true
	}
	return nil, false
}

var shortRefRegex = regexp.MustCompile(`^([A-Za-z]+)/(\d{2})`)
var longRefRegex = regexp.MustCompile(`^([A-Za-z]+)(\d{4})`)

// ParseReferenceDate parses a reference-period cell like "Dec/25" or
// "Dec 2025" into a first-of-month YYYY-MM-DD date.
func ParseReferenceDate(ref string) (string, bool) {
	clean := strings.NewReplacer(" ", "", " ", "").Replace(ref)

	var monthName string
	var year int
	if m := shortRefRegex.FindStringSubmatch(clean); m != nil {
		monthName = m[1]
		suffix, _ := strconv.Atoi(m[2])
		if suffix < 70 {
			year = 2000 + suffix
		} else {
			year = 1900 + suffix
		}
	} else if m := longRefRegex.FindStringSubmatch(clean); m != nil {
		monthName = m[1]
		year, _ = strconv.Atoi(m[2])
	} else {
		return "", false
	}

	if len(monthName) < 3 {
		return "", false
	}
	monthName = strings.ToUpper(monthName[:1]) + strings.ToLower(monthName[1:3])
	parsed, err := time.Parse("Jan", monthName)
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-01", year, int(parsed.Month())), true
}
