package cmd

import (
	"context"
	"fmt"
	"os"

	"macroscan-backend/lib/configutil"
	configlibsql "macroscan-backend/lib/configutil/libsql"
	"macroscan-backend/services/macro"

	"github.com/spf13/cobra"
)

type ReportConfig struct {
	Smtp       macro.SmtpConfig `json:"smtp"`
	Recipients []string         `json:"recipients"`
}

type Config struct {
	// "scrape" or "api"
	Source string `json:"source"`
	// only used by the api source
	ApiKey           string   `json:"api_key"`
	Countries        []string `json:"countries"`
	Indicators       []string `json:"indicators"`
	TimeoutSeconds   int      `json:"timeout_seconds"`
	RateLimitSeconds float64  `json:"rate_limit_seconds"`
	CacheTtlMinutes  int      `json:"cache_ttl_minutes"`
	OutputDir        string   `json:"output_dir"`
	// failed page fetches are dumped here, "" disables the artifacts
	DebugDir string              `json:"debug_dir"`
	Database configlibsql.Struct `json:"database"`
	Report   ReportConfig        `json:"report"`
}

func (c Config) withDefaults() Config {
	if c.Source == "" {
		c.Source = "scrape"
	}
	if len(c.Countries) == 0 {
		c.Countries = []string{"united-states"}
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	if c.RateLimitSeconds == 0 {
		c.RateLimitSeconds = 2
	}
	if c.CacheTtlMinutes == 0 {
		c.CacheTtlMinutes = 60
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	return c
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "macroscan",
	Short: "macroscan pulls macroeconomic indicators from Trading Economics.",
}

func ExecuteContext(ctx context.Context) {
	// a missing config file just means built-in defaults
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config = cfg.withDefaults()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
