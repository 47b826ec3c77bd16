package macro

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"macroscan-backend/lib/cachefile"
	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/testutil"
	"macroscan-backend/services/macro/history"
	historydb "macroscan-backend/services/macro/history/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeSource struct {
	calls   int
	records map[string]map[string]macrodata.Record
}

func (s *fakeSource) FetchAll(ctx context.Context, country string, specs []macrodata.IndicatorSpec) map[string]macrodata.Record {
	s.calls++
	return s.records[country]
}

func TestScanComputesDerivedColumns(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/macro"})
	defer cleanup()

	source := &fakeSource{records: map[string]map[string]macrodata.Record{
		"testland": {
			"unemployment": {
				Current:   macrodata.Number(4.4),
				Previous:  macrodata.Number(4.1),
				Expected:  macrodata.Number(4.3),
				Published: "2025-12-01",
				Trend:     []float64{4.0, 4.1, 4.2, 4.1, 4.3, 4.4},
			},
		},
	}}

	service, err := NewService(Options{
		Source:     source,
		SourceName: "scrape",
		Countries:  []string{"testland"},
		Indicators: []string{"unemployment"},
	})
	require.NoError(t, err)

	result, err := service.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	require.Equal(t, 1, result.Succeeded)
	require.True(t, result.Ok())
	require.NotEmpty(t, result.Id)

	want := Observation{
		Country:    "testland",
		Key:        "unemployment",
		Indicator:  "Unemployment",
		Current:    macrodata.Number(4.4),
		Previous:   macrodata.Number(4.1),
		Expected:   macrodata.Number(4.3),
		Difference: macrodata.Number(0.3),
		Surprise:   macrodata.Number(0.1),
		Published:  "2025-12-01",
		Trend:      []float64{4.0, 4.1, 4.2, 4.1, 4.3, 4.4},
	}
	if diff := cmp.Diff(want, result.Observations[0]); diff != "" {
		t.Fatalf("observation mismatch (-want +got):\n%s", diff)
	}
}

func TestScanRejectsImplausibleValues(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/macro"})
	defer cleanup()

	source := &fakeSource{records: map[string]map[string]macrodata.Record{
		"testland": {
			"unemployment": {
				Current:  macrodata.Number(99),
				Previous: macrodata.Number(4.1),
			},
		},
	}}

	service, err := NewService(Options{
		Source:     source,
		SourceName: "scrape",
		Countries:  []string{"testland"},
		Indicators: []string{"unemployment"},
	})
	require.NoError(t, err)

	result, err := service.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.Succeeded)
	require.False(t, result.Ok())

	obs := result.Observations[0]
	require.False(t, obs.Current.Valid)
	require.Equal(t, macrodata.ReasonOutOfRange, obs.Current.Reason)
	// no current value means no derived columns either
	require.False(t, obs.Difference.Valid)
	require.False(t, obs.Surprise.Valid)
}

func TestScanReusesCachedRecords(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/macro"})
	defer cleanup()

	source := &fakeSource{records: map[string]map[string]macrodata.Record{
		"testland": {
			"unemployment": {Current: macrodata.Number(4.4), Previous: macrodata.Number(4.1)},
		},
	}}
	cache := cachefile.New[macrodata.Record](filepath.Join(t.TempDir(), "cache.json"), time.Hour)

	service, err := NewService(Options{
		Source:     source,
		SourceName: "scrape",
		Countries:  []string{"testland"},
		Indicators: []string{"unemployment"},
		Cache:      cache,
	})
	require.NoError(t, err)

	first, err := service.Scan(context.Background())
	require.NoError(t, err)
	require.False(t, first.Observations[0].FromCache)
	require.Equal(t, 1, source.calls)

	second, err := service.Scan(context.Background())
	require.NoError(t, err)
	require.True(t, second.Observations[0].FromCache)
	// the source is never consulted when every indicator is cached
	require.Equal(t, 1, source.calls)

	require.InDelta(t, 4.4, second.Observations[0].Current.Float, 1e-9)
}

func TestScanMissingIndicatorStaysAbsent(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/macro"})
	defer cleanup()

	source := &fakeSource{records: map[string]map[string]macrodata.Record{}}

	service, err := NewService(Options{
		Source:     source,
		SourceName: "scrape",
		Countries:  []string{"testland"},
		Indicators: []string{"unemployment", "interest_rate"},
	})
	require.NoError(t, err)

	result, err := service.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Observations, 2)
	require.Equal(t, 0, result.Succeeded)
	for _, obs := range result.Observations {
		require.False(t, obs.Current.Valid)
		require.Equal(t, macrodata.ReasonMissing, obs.Current.Reason)
	}
	// a nil response still counts as the country's one source call
	require.Equal(t, 1, source.calls)
}

func TestScanPersistsHistory(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/macro",
		DbSchema: historydb.Schema,
	})
	defer cleanup()
	store := history.NewStore(setup.DB)

	source := &fakeSource{records: map[string]map[string]macrodata.Record{
		"testland": {
			"unemployment": {Current: macrodata.Number(4.4), Previous: macrodata.Number(4.1)},
		},
	}}

	service, err := NewService(Options{
		Source:     source,
		SourceName: "scrape",
		Countries:  []string{"testland"},
		Indicators: []string{"unemployment"},
		History:    &store,
	})
	require.NoError(t, err)

	result, err := service.Scan(context.Background())
	require.NoError(t, err)

	points, err := store.Pull(context.Background(), "testland", "unemployment", 10)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, result.Id, points[0].ScanId)
	require.InDelta(t, 4.4, points[0].Current.Float, 1e-9)
}

func TestNewServiceRejectsUnknownIndicator(t *testing.T) {
	_, err := NewService(Options{
		Source:     &fakeSource{},
		Countries:  []string{"testland"},
		Indicators: []string{"gross-national-happiness"},
	})
	require.Error(t, err)
}

func TestScanResultOk(t *testing.T) {
	obs := func(n int, succeeded int) ScanResult {
		r := ScanResult{Succeeded: succeeded}
		r.Observations = make([]Observation, n)
		return r
	}

	require.True(t, obs(4, 3).Ok())
	require.False(t, obs(4, 2).Ok())
	require.False(t, obs(0, 0).Ok())
	// a single cell always needs to succeed
	require.True(t, obs(1, 1).Ok())
	require.False(t, obs(1, 0).Ok())
}
