package macro

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"macroscan-backend/lib/macrodata"

	"github.com/jedib0t/go-pretty/v6/table"
)

// formatValue renders a value for tables and CSV: absent is empty,
// whole numbers drop the decimals, everything else keeps two.
func formatValue(v macrodata.Value) string {
	if !v.Valid {
		return ""
	}
	if v.Float == float64(int64(v.Float)) {
		return strconv.FormatInt(int64(v.Float), 10)
	}
	return fmt.Sprintf("%.2f", v.Float)
}

var outputHeader = []string{
	"Country", "Indicator",
	"Current", "Previous", "Difference", "Expected Future", "Surprise",
	"Published", "Next Release",
}

func observationCells(obs Observation) []string {
	return []string{
		obs.Country,
		obs.Indicator,
		formatValue(obs.Current),
		formatValue(obs.Previous),
		formatValue(obs.Difference),
		formatValue(obs.Expected),
		formatValue(obs.Surprise),
		obs.Published,
		obs.NextRelease,
	}
}

// RenderTable writes the scan as a human-readable table.
func RenderTable(w io.Writer, result ScanResult) {
	if len(result.Observations) == 0 {
		fmt.Fprintln(w, "No data to display.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{}
	for _, h := range outputHeader {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, obs := range result.Observations {
		row := table.Row{}
		for _, cell := range observationCells(obs) {
			row = append(row, cell)
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// WriteFiles saves the scan under dir as latest_macro.csv and
// latest_macro.json, overwriting the previous run.
func WriteFiles(dir string, result ScanResult) error {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}

	timestamp := result.Time.Format("2006-01-02T15:04:05Z")

	csvFile, err := os.Create(filepath.Join(dir, "latest_macro.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	writer := csv.NewWriter(csvFile)
	err = writer.Write(append(append([]string{}, outputHeader...), "TimestampUTC", "Source"))
	if err != nil {
		return err
	}
	for _, obs := range result.Observations {
		err := writer.Write(append(observationCells(obs), timestamp, result.Source))
		if err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	contents, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "latest_macro.json"), contents, 0600)
}
