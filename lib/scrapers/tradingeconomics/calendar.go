package tradingeconomics

import (
	"context"
	"log/slog"
	"strings"

	"macroscan-backend/lib/htmlutil"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

type CalendarResult struct {
	Expected    macrodata.Value
	NextRelease string
	Trend       []float64
}

func emptyCalendarResult() CalendarResult {
	return CalendarResult{Expected: macrodata.Absent(macrodata.ReasonMissing)}
}

const trendLength = 6

// calendar rows come as [date, gmt, reference, actual, previous, consensus, teforecast, ...]
const (
	cellDate      = 0
	cellActual    = 3
	cellConsensus = 5
	cellForecast  = 6
)

// ParseCalendar scans the detail page's release-calendar table. The
// trend is the first up-to-6 numeric "actual" cells in row order; the
// first row whose actual does not parse is the upcoming release, whose
// date becomes NextRelease and whose teforecast (falling back to
// consensus) becomes Expected. Malformed rows are skipped; a missing
// table yields an all-absent result.
func ParseCalendar(ctx context.Context, doc *goquery.Document) CalendarResult {
	result := emptyCalendarResult()

	table := findCalendarTable(doc)
	if table == nil {
		slog.DebugContext(ctx, "detail page has no calendar table")
		return result
	}

	foundNext := false
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			// header
			return true
		}
		cells := htmlutil.CellTexts(tr)
		if len(cells) <= cellActual {
			return true
		}

		actual, numeric := textutil.ParseValue(cells[cellActual])
		if numeric {
			if len(result.Trend) < trendLength {
				result.Trend = append(result.Trend, actual)
			}
		} else if !foundNext {
			foundNext = true
			result.NextRelease = cells[cellDate]
			if len(cells) > cellForecast && cells[cellForecast] != "" {
				result.Expected = macrodata.ParseText(cells[cellForecast])
			}
			if !result.Expected.Valid && len(cells) > cellConsensus && cells[cellConsensus] != "" {
				if v := macrodata.ParseText(cells[cellConsensus]); v.Valid {
					result.Expected = v
				}
			}
		}

		return !(len(result.Trend) >= trendLength && foundNext)
	})

	return result
}

func findCalendarTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table[id]").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(t.AttrOr("id", "")), "calendar") {
			return true
		}
		table = t
		return false
	})
	return table
}
