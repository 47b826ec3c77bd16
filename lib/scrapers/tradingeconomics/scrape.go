package tradingeconomics

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"macroscan-backend/lib/htmlutil"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/textutil"

	"go.opentelemetry.io/otel/codes"
)

var expectedTextRegex = regexp.MustCompile(`(?i)is\s+expected\s+to\s+be\s+([-+]?[0-9]*\.?[0-9]+)`)

// FetchDetail fetches one indicator's own page and extracts the
// expected value, next release date and recent trend. Free text of the
// form "is expected to be <number>" wins over the calendar-derived
// expected value; next release and trend always come from the calendar.
func (c *Client) FetchDetail(ctx context.Context, country, slug string) (CalendarResult, error) {
	ctx, span := tracer.Start(ctx, "FetchDetail")
	defer span.End()

	url := fmt.Sprintf("%s/%s/%s", c.baseUrl, country, slug)
	doc, err := c.fetchDocument(ctx, url, fmt.Sprintf("%s_%s", country, slug))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return emptyCalendarResult(), err
	}

	result := ParseCalendar(ctx, doc)

	text := htmlutil.FlatText(doc.Selection)
	if m := expectedTextRegex.FindStringSubmatch(text); m != nil {
		if value, ok := textutil.ParseValue(m[1]); ok {
			result.Expected = macrodata.Number(value)
		}
	}

	return result, nil
}

// FetchAll scrapes every given indicator for one country. The overview
// page is fetched once and shared; when it cannot be fetched at all the
// whole country fails and the returned map is empty. Everything past
// that degrades per indicator: a missing row or a failed detail page
// only leaves that indicator's fields absent.
func (c *Client) FetchAll(ctx context.Context, country string, specs []macrodata.IndicatorSpec) map[string]macrodata.Record {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()

	results := map[string]macrodata.Record{}

	doc, err := c.FetchOverview(ctx, country)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch overview page")
		slog.ErrorContext(ctx, "failed to fetch indicators overview", "country", country, "err", err)
		return results
	}

	for _, spec := range specs {
		record := macrodata.Record{
			Current:  macrodata.Absent(macrodata.ReasonMissing),
			Previous: macrodata.Absent(macrodata.ReasonMissing),
			Expected: macrodata.Absent(macrodata.ReasonMissing),
		}

		cells, found := FindIndicatorRow(doc, country, spec)
		if found && len(cells) >= 3 {
			// the overview table lays out [label, current, previous, ...]
			record.Current = macrodata.ParseText(cells[1])
			record.Previous = macrodata.ParseText(cells[2])
			if len(cells) >= 5 {
				if published, ok := ParseReferenceDate(cells[len(cells)-1]); ok {
					record.Published = published
				}
			}
			slog.DebugContext(ctx, "located indicator row", "country", country, "key", spec.Key, "cells", cells)
		} else {
			slog.ErrorContext(ctx, "indicator row not found or malformed", "country", country, "key", spec.Key)
		}

		detail, err := c.FetchDetail(ctx, country, spec.Slug)
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch indicator detail page", "country", country, "key", spec.Key, "err", err)
			record.Expected = macrodata.Absent(macrodata.ReasonFetchFailed)
		} else {
			record.Expected = detail.Expected
			record.NextRelease = detail.NextRelease
			record.Trend = detail.Trend
		}

		results[spec.Key] = record
	}

	return results
}
