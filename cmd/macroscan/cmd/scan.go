package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	teapi "macroscan-backend/lib/apis/tradingeconomics"
	"macroscan-backend/lib/cachefile"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/restyutil"
	tescrape "macroscan-backend/lib/scrapers/tradingeconomics"
	"macroscan-backend/lib/util/serviceutil"
	"macroscan-backend/services/macro"
	"macroscan-backend/services/macro/history"
	historydb "macroscan-backend/services/macro/history/db"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch every configured indicator for every configured country.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		retry := restyutil.RetryPolicy{
			RateLimit: time.Duration(config.RateLimitSeconds * float64(time.Second)),
		}
		timeout := time.Duration(config.TimeoutSeconds) * time.Second

		// with debug artifacts enabled, raw request/response dumps also
		// land next to them
		var httpDump restyutil.InstrumentOutput
		if config.DebugDir != "" {
			httpDump = restyutil.NewFilesystemOutput(filepath.Join(config.DebugDir, "http"))
		}

		var source macro.Source
		switch config.Source {
		case "api":
			if config.ApiKey == "" {
				serviceutil.Fatal("api source selected", fmt.Errorf("no api_key in config"))
			}
			client := teapi.NewClient(teapi.ClientOptions{
				ApiKey:  config.ApiKey,
				Timeout: timeout,
				Retry:   retry,
			})
			client.SetInstrumentOutput(httpDump)
			source = client
		case "scrape":
			client := tescrape.NewClient(tescrape.ClientOptions{
				Timeout:  timeout,
				Retry:    retry,
				DebugDir: config.DebugDir,
			})
			client.SetInstrumentOutput(httpDump)
			source = client
		default:
			serviceutil.Fatal("invalid config", fmt.Errorf("unknown source: %s", config.Source))
		}

		cache := cachefile.New[macrodata.Record](
			filepath.Join(config.OutputDir, "cache.json"),
			time.Duration(config.CacheTtlMinutes)*time.Minute,
		)

		options := macro.Options{
			Source:     source,
			SourceName: config.Source,
			Countries:  config.Countries,
			Indicators: config.Indicators,
			Cache:      cache,
		}
		if config.Database.File != "" || config.Database.Url != "" {
			db, err := config.Database.OpenDB(historydb.Schema)
			if err != nil {
				serviceutil.Fatal("failed to open history database", err)
			}
			store := history.NewStore(db)
			options.History = &store
		}

		service, err := macro.NewService(options)
		if err != nil {
			serviceutil.Fatal("failed to initialize scan service", err)
		}

		result, err := service.Scan(ctx)
		if err != nil {
			serviceutil.Fatal("scan failed", err)
		}

		macro.RenderTable(os.Stdout, result)
		err = macro.WriteFiles(config.OutputDir, result)
		if err != nil {
			serviceutil.Fatal("failed to write output files", err)
		}

		if len(config.Report.Recipients) > 0 {
			reporter := macro.NewReporter(config.Report.Smtp, config.Report.Recipients)
			err := reporter.SendReport(ctx, result, filepath.Join(config.OutputDir, "latest_macro.csv"))
			if err != nil {
				serviceutil.Fatal("failed to send report email", err)
			}
		}

		if !result.Ok() {
			fmt.Fprintf(
				os.Stderr, "only %d/%d indicators fetched, marking the run failed\n",
				result.Succeeded, len(result.Observations),
			)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
