package tradingeconomics

import (
	"strings"
	"testing"

	"macroscan-backend/lib/macrodata"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

var unemploymentSpec = macrodata.IndicatorSpec{
	Key:      "unemployment",
	Name:     "Unemployment",
	RowLabel: "Unemployment Rate",
	Slug:     "unemployment-rate",
}

func TestFindIndicatorRowBySlug(t *testing.T) {
	doc := mustDoc(t, `
		<table><tbody>
			<tr>
				<td><a href="/testland/unemployment-rate">Jobless</a></td>
				<td>4.4%</td>
				<td>4.1%</td>
			</tr>
		</tbody></table>
	`)

	cells, found := FindIndicatorRow(doc, "testland", unemploymentSpec)
	require.True(t, found)
	require.Equal(t, []string{"Jobless", "4.4%", "4.1%"}, cells)
}

func TestFindIndicatorRowFallsBackToLabel(t *testing.T) {
	// no slug-based link anywhere, only matching anchor text
	doc := mustDoc(t, `
		<table><tbody>
			<tr>
				<td><a href="/somewhere/else">Unemployment Rate</a></td>
				<td>4.4%</td>
				<td>4.1%</td>
			</tr>
		</tbody></table>
	`)

	cells, found := FindIndicatorRow(doc, "testland", unemploymentSpec)
	require.True(t, found)
	require.Equal(t, []string{"Unemployment Rate", "4.4%", "4.1%"}, cells)
}

func TestFindIndicatorRowLabelIgnoresRaggedWhitespace(t *testing.T) {
	doc := mustDoc(t, `
		<table><tbody>
			<tr>
				<td><a href="/somewhere/else">Unemployment
					Rate</a></td>
				<td>4.4%</td>
				<td>4.1%</td>
			</tr>
		</tbody></table>
	`)

	cells, found := FindIndicatorRow(doc, "testland", unemploymentSpec)
	require.True(t, found)
	require.Equal(t, "4.4%", cells[1])
}

func TestFindIndicatorRowMissing(t *testing.T) {
	doc := mustDoc(t, `
		<table><tbody>
			<tr>
				<td><a href="/testland/interest-rate">Interest Rate</a></td>
				<td>5.5%</td>
			</tr>
		</tbody></table>
	`)

	_, found := FindIndicatorRow(doc, "testland", unemploymentSpec)
	require.False(t, found)
}

func TestFindIndicatorRowPrefersSlug(t *testing.T) {
	// the label strategy alone would land on the first row
	doc := mustDoc(t, `
		<table><tbody>
			<tr>
				<td><a href="/glossary/unemployment">Unemployment Rate explained</a></td>
				<td>bogus</td>
				<td>bogus</td>
			</tr>
			<tr>
				<td><a href="/testland/unemployment-rate">Unemployment Rate</a></td>
				<td>4.4%</td>
				<td>4.1%</td>
			</tr>
		</tbody></table>
	`)

	cells, found := FindIndicatorRow(doc, "testland", unemploymentSpec)
	require.True(t, found)
	require.Equal(t, []string{"Unemployment Rate", "4.4%", "4.1%"}, cells)
}

func TestParseReferenceDate(t *testing.T) {
	cases := []struct {
		ref  string
		date string
		ok   bool
	}{
		{ref: "Dec/25", date: "2025-12-01", ok: true},
		{ref: "Dec 2025", date: "2025-12-01", ok: true},
		{ref: "Jan/99", date: "1999-01-01", ok: true},
		{ref: "Mar/26", date: "2026-03-01", ok: true},
		{ref: "December 2025", date: "2025-12-01", ok: true},
		{ref: "Q3", ok: false},
		{ref: "", ok: false},
	}

	for _, test := range cases {
		date, ok := ParseReferenceDate(test.ref)
		require.Equal(t, test.ok, ok, "ref: %q", test.ref)
		if test.ok {
			require.Equal(t, test.date, date, "ref: %q", test.ref)
		}
	}
}
