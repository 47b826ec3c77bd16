// Package tradingeconomics wraps the Trading Economics REST API. It is
// an alternative source to the HTML scraper for accounts that have an
// API key; without a valid key the API answers 403 for everything.
package tradingeconomics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/restyutil"
	"macroscan-backend/lib/telemetry"
	"macroscan-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("macroscan.lib.apis.tradingeconomics")

const DefaultBaseUrl = "https://api.tradingeconomics.com"

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// account API key, sent as the "c" query parameter
	ApiKey string
	// per-request socket timeout, defaults to 30s
	Timeout time.Duration
	Retry   restyutil.RetryPolicy
}

type Client struct {
	http    *resty.Client
	baseUrl string
	apiKey  string
	retry   restyutil.RetryPolicy
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(opts.Timeout)

	return &Client{
		http:    client,
		baseUrl: strings.TrimSuffix(opts.BaseUrl, "/"),
		apiKey:  opts.ApiKey,
		retry:   opts.Retry,
	}
}

func (c *Client) SetInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.http, tracer, out)
}

// one element of the /country/{country} response array
type countryItem struct {
	Category      string   `json:"category"`
	LatestValue   *float64 `json:"latestValue"`
	PreviousValue *float64 `json:"previousValue"`
	TeForecast    *float64 `json:"teforecast"`
	Forecast      *float64 `json:"forecast"`
}

func optionalValue(p *float64) macrodata.Value {
	if p == nil {
		return macrodata.Absent(macrodata.ReasonMissing)
	}
	return macrodata.Number(*p)
}

// FetchAll pulls every indicator of one country in a single API call
// and maps the response categories onto the given indicator specs by
// normalized row label. A failed request fails the whole country and
// yields an empty map; an unmatched category only leaves that one
// indicator absent.
func (c *Client) FetchAll(ctx context.Context, country string, specs []macrodata.IndicatorSpec) map[string]macrodata.Record {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()

	results := map[string]macrodata.Record{}

	endpoint := fmt.Sprintf("%s/country/%s?c=%s", c.baseUrl, url.PathEscape(country), url.QueryEscape(c.apiKey))
	body, err := restyutil.FetchText(ctx, c.http, endpoint, c.retry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "api request failed")
		slog.ErrorContext(ctx, "country request failed", "country", country, "err", err)
		return results
	}

	var items []countryItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode api response")
		slog.ErrorContext(ctx, "failed to decode country response", "country", country, "err", err)
		return results
	}

	lookup := map[string]countryItem{}
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		lookup[textutil.NormalizeName(item.Category)] = item
	}

	for _, spec := range specs {
		record := macrodata.Record{
			Current:  macrodata.Absent(macrodata.ReasonMissing),
			Previous: macrodata.Absent(macrodata.ReasonMissing),
			Expected: macrodata.Absent(macrodata.ReasonMissing),
		}

		item, ok := lookup[textutil.NormalizeName(spec.RowLabel)]
		if ok {
			record.Current = optionalValue(item.LatestValue)
			record.Previous = optionalValue(item.PreviousValue)
			if item.TeForecast != nil {
				record.Expected = macrodata.Number(*item.TeForecast)
			} else {
				record.Expected = optionalValue(item.Forecast)
			}
		} else {
			slog.ErrorContext(
				ctx, "no category matches indicator",
				"country", country,
				"key", spec.Key,
				"label", spec.RowLabel,
				"closest", closestCategory(spec.RowLabel, items),
			)
		}

		results[spec.Key] = record
	}

	return results
}

// closestCategory names the response category most similar to the
// wanted label, purely to make mapping gaps easy to diagnose from logs.
func closestCategory(label string, items []countryItem) string {
	best := ""
	bestScore := 0.0
	normalized := textutil.NormalizeName(label)
	for _, item := range items {
		score := matchr.JaroWinkler(normalized, textutil.NormalizeName(item.Category), false)
		if score > bestScore {
			bestScore = score
			best = item.Category
		}
	}
	return best
}
