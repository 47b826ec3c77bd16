// Package macro orchestrates full scan runs: every configured country
// crossed with every configured indicator, pulled from a data source,
// cached, validated and enriched with derived columns.
package macro

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"macroscan-backend/lib/cachefile"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/telemetry"
	"macroscan-backend/services/macro/history"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("macroscan.services.macro")

// Source yields one country's records keyed by indicator key. The
// scraper and the API client both satisfy this.
type Source interface {
	FetchAll(ctx context.Context, country string, specs []macrodata.IndicatorSpec) map[string]macrodata.Record
}

type Options struct {
	Source Source
	// recorded in outputs and history, e.g. "scrape" or "api"
	SourceName string
	Countries  []string
	// indicator keys to scan, empty means the full built-in catalog
	Indicators []string
	// optional, raw records are cached before validation
	Cache *cachefile.Cache[macrodata.Record]
	// optional, scans are persisted when set
	History *history.Store
}

type Service struct {
	source     Source
	sourceName string
	countries  []string
	specs      []macrodata.IndicatorSpec
	cache      *cachefile.Cache[macrodata.Record]
	history    *history.Store
}

func NewService(opts Options) (Service, error) {
	if opts.Source == nil {
		return Service{}, fmt.Errorf("no data source configured")
	}
	if len(opts.Countries) == 0 {
		return Service{}, fmt.Errorf("no countries configured")
	}

	catalog := macrodata.SpecsByKey(macrodata.DefaultIndicators())
	var specs []macrodata.IndicatorSpec
	if len(opts.Indicators) == 0 {
		specs = macrodata.DefaultIndicators()
	} else {
		for _, key := range opts.Indicators {
			spec, ok := catalog[key]
			if !ok {
				return Service{}, fmt.Errorf("unknown indicator key: %s", key)
			}
			specs = append(specs, spec)
		}
	}

	return Service{
		source:     opts.Source,
		sourceName: opts.SourceName,
		countries:  opts.Countries,
		specs:      specs,
		cache:      opts.Cache,
		history:    opts.History,
	}, nil
}

// Observation is one fully processed (country, indicator) cell.
type Observation struct {
	Country     string          `json:"country"`
	Key         string          `json:"key"`
	Indicator   string          `json:"indicator"`
	Current     macrodata.Value `json:"current"`
	Previous    macrodata.Value `json:"previous"`
	Expected    macrodata.Value `json:"expected"`
	Difference  macrodata.Value `json:"difference"`
	Surprise    macrodata.Value `json:"surprise"`
	Published   string          `json:"published,omitempty"`
	NextRelease string          `json:"next_release,omitempty"`
	Trend       []float64       `json:"trend,omitempty"`
	FromCache   bool            `json:"from_cache,omitempty"`
}

type ScanResult struct {
	Id           string        `json:"id"`
	Time         time.Time     `json:"time"`
	Source       string        `json:"source"`
	Observations []Observation `json:"data"`
	Succeeded    int           `json:"succeeded"`
}

// Ok reports whether enough of the scan worked to call the run a
// success: at least 75% of all (country, indicator) cells carry a
// validated current value, and never fewer than one.
func (r ScanResult) Ok() bool {
	total := len(r.Observations)
	if total == 0 {
		return false
	}
	needed := int(0.75 * float64(total))
	if needed < 1 {
		needed = 1
	}
	return r.Succeeded >= needed
}

// Scan runs the full countries-by-indicators matrix. Per-country source
// calls only happen when at least one of the country's indicators
// misses the cache; individual failures degrade to absent cells and
// never abort the run.
func (s Service) Scan(ctx context.Context) (ScanResult, error) {
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()

	id, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate scan id")
		return ScanResult{}, err
	}
	span.SetAttributes(attribute.String("scan_id", id))

	result := ScanResult{
		Id:     id,
		Time:   time.Now().UTC(),
		Source: s.sourceName,
	}

	for _, country := range s.countries {
		// fetched lazily, one source call covers the whole country,
		// even when the source comes back empty
		var fetched map[string]macrodata.Record
		fetchedOnce := false

		for _, spec := range s.specs {
			cacheKey := country + ":" + spec.Key

			record, fromCache := s.cacheGet(cacheKey)
			if !fromCache {
				if !fetchedOnce {
					fetched = s.source.FetchAll(ctx, country, s.specs)
					fetchedOnce = true
				}
				var ok bool
				record, ok = fetched[spec.Key]
				if !ok {
					record = macrodata.Record{
						Current:  macrodata.Absent(macrodata.ReasonMissing),
						Previous: macrodata.Absent(macrodata.ReasonMissing),
						Expected: macrodata.Absent(macrodata.ReasonMissing),
					}
				}
				s.cacheSet(ctx, cacheKey, record)
			} else {
				slog.DebugContext(ctx, "using cached record", "country", country, "key", spec.Key)
			}

			current := macrodata.Validate(spec.Key, record.Current)
			previous := macrodata.Validate(spec.Key, record.Previous)
			expected := macrodata.Validate(spec.Key, record.Expected)

			if current.Valid {
				result.Succeeded++
			}

			result.Observations = append(result.Observations, Observation{
				Country:     country,
				Key:         spec.Key,
				Indicator:   spec.Name,
				Current:     current,
				Previous:    previous,
				Expected:    expected,
				Difference:  macrodata.Difference(current, previous),
				Surprise:    macrodata.Difference(current, expected),
				Published:   record.Published,
				NextRelease: record.NextRelease,
				Trend:       record.Trend,
				FromCache:   fromCache,
			})
		}
	}

	span.SetAttributes(
		attribute.Int("observations", len(result.Observations)),
		attribute.Int("succeeded", result.Succeeded),
	)

	if s.history != nil {
		err := s.history.Push(ctx, toHistoryScan(result))
		if err != nil {
			// a scan with unstored history is still a usable scan
			span.RecordError(err)
			slog.ErrorContext(ctx, "failed to persist scan history", "scan_id", id, "err", err)
		}
	}

	return result, nil
}

func (s Service) cacheGet(key string) (macrodata.Record, bool) {
	if s.cache == nil {
		return macrodata.Record{}, false
	}
	return s.cache.Get(key)
}

func (s Service) cacheSet(ctx context.Context, key string, record macrodata.Record) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(key, record)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist cache", "key", key, "err", err)
	}
}

func toHistoryScan(result ScanResult) history.Scan {
	scan := history.Scan{
		Id:     result.Id,
		Time:   result.Time,
		Source: result.Source,
	}
	for _, obs := range result.Observations {
		scan.Observations = append(scan.Observations, history.Observation{
			Country:     obs.Country,
			Indicator:   obs.Key,
			Current:     obs.Current,
			Previous:    obs.Previous,
			Expected:    obs.Expected,
			Difference:  obs.Difference,
			Surprise:    obs.Surprise,
			Published:   obs.Published,
			NextRelease: obs.NextRelease,
		})
	}
	return scan
}
