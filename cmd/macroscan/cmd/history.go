package cmd

import (
	"fmt"
	"os"

	"macroscan-backend/lib/util/serviceutil"
	"macroscan-backend/services/macro/history"
	historydb "macroscan-backend/services/macro/history/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int64

var historyCmd = &cobra.Command{
	Use:   "history <country> <indicator>",
	Short: "Show past scans of one indicator series.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if config.Database.File == "" && config.Database.Url == "" {
			serviceutil.Fatal("no history available", fmt.Errorf("no database in config"))
		}
		db, err := config.Database.OpenDB(historydb.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open history database", err)
		}
		store := history.NewStore(db)

		points, err := store.Pull(cmd.Context(), args[0], args[1], historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to query history", err)
		}
		if len(points) == 0 {
			fmt.Println("No data to display.")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Scan", "Current", "Previous", "Expected", "Difference", "Surprise"})

		format := func(valid bool, f float64) string {
			if !valid {
				return ""
			}
			return fmt.Sprintf("%.2f", f)
		}
		for _, p := range points {
			t.AppendRow(table.Row{
				p.Time.Format("2006-01-02 15:04"),
				p.ScanId,
				format(p.Current.Valid, p.Current.Float),
				format(p.Previous.Valid, p.Previous.Float),
				format(p.Expected.Valid, p.Expected.Float),
				format(p.Difference.Valid, p.Difference.Float),
				format(p.Surprise.Valid, p.Surprise.Float),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func init() {
	historyCmd.Flags().Int64Var(&historyLimit, "limit", 30, "maximum number of scans to show")
	rootCmd.AddCommand(historyCmd)
}
