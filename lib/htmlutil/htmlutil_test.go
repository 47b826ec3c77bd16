package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCellTexts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tbody>
			<tr>
				<td><a href="/x">Unemployment   Rate</a></td>
				<td>4.4%</td>
				<td> 4.1% </td>
			</tr>
		</tbody></table>
	`))
	require.NoError(t, err)

	cells := CellTexts(doc.Find("tr").First())
	require.Equal(t, []string{"Unemployment Rate", "4.4%", "4.1%"}, cells)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b", CleanText("  a \n\t b "))
}

func TestFlatText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><p>Unemployment is expected to be</p><b>4.3</b><span>percent</span></div>`,
	))
	require.NoError(t, err)

	text := FlatText(doc.Selection)
	require.Contains(t, text, "to be 4.3 percent")
}
