// Package tradingeconomics scrapes macro indicator values from the
// public Trading Economics pages: the per-country indicators overview
// table and the per-indicator detail page with its release calendar.
package tradingeconomics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"macroscan-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://tradingeconomics.com"

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// per-request socket timeout, defaults to 30s
	Timeout time.Duration
	// retry/backoff/rate-limit policy shared with the API client
	Retry restyutil.RetryPolicy
	// directory failed fetches are dumped into, "" disables artifacts
	DebugDir string
}

type Client struct {
	http    *resty.Client
	baseUrl string
	retry   restyutil.RetryPolicy
	debug   *restyutil.FilesystemOutput
	// one country's overview page is shared by all of its indicators,
	// so fetch it once and keep it around for the run
	overviews *expirable.LRU[string, *goquery.Document]
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetTimeout(opts.Timeout)

	var debug *restyutil.FilesystemOutput
	if opts.DebugDir != "" {
		out := restyutil.NewFilesystemOutput(opts.DebugDir)
		debug = &out
	}

	return &Client{
		http:      client,
		baseUrl:   strings.TrimSuffix(opts.BaseUrl, "/"),
		retry:     opts.Retry,
		debug:     debug,
		overviews: expirable.NewLRU[string, *goquery.Document](16, nil, time.Minute*10),
	}
}

func (c *Client) SetInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.http, tracer, out)
}

// fetchDocument fetches and parses a page, writing a debug artifact
// when the fetch fails.
func (c *Client) fetchDocument(ctx context.Context, url, artifactName string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "fetchDocument")
	defer span.End()

	body, err := restyutil.FetchText(ctx, c.http, url, c.retry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		if c.debug != nil {
			c.debug.WriteFailureArtifact(artifactName, url, err.Error(), body)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

// FetchOverview fetches and parses the country's indicators overview
// page, reusing a previously fetched document when still fresh.
func (c *Client) FetchOverview(ctx context.Context, country string) (*goquery.Document, error) {
	if doc, ok := c.overviews.Get(country); ok {
		return doc, nil
	}

	url := fmt.Sprintf("%s/%s/indicators", c.baseUrl, country)
	doc, err := c.fetchDocument(ctx, url, "indicators_page")
	if err != nil {
		return nil, err
	}
	c.overviews.Add(country, doc)
	return doc, nil
}
