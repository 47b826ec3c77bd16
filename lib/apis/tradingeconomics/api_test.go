package tradingeconomics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/restyutil"
	"macroscan-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const countryResponse = `[
	{"category": "Unemployment Rate", "latestValue": 4.4, "previousValue": 4.1, "teforecast": 4.3},
	{"category": "Interest Rate", "latestValue": 5.5, "previousValue": 5.5, "forecast": 5.25},
	{"category": "GDP Growth Rate", "latestValue": 0.3}
]`

var apiSpecs = []macrodata.IndicatorSpec{
	{Key: "unemployment", Name: "Unemployment", RowLabel: "Unemployment Rate", Slug: "unemployment-rate"},
	{Key: "interest_rate", Name: "Interest Rate", RowLabel: "Interest Rate", Slug: "interest-rate"},
	{Key: "gdp_growth_qoq", Name: "GDP Growth", RowLabel: "GDP Growth Rate", Slug: "gdp-growth"},
	{Key: "ppi", Name: "PPI", RowLabel: "Producer Prices Change", Slug: "producer-prices-change"},
}

func newApiTestClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientOptions{
		BaseUrl: srv.URL,
		ApiKey:  "test-key",
		Retry: restyutil.RetryPolicy{
			Sleep: func(d time.Duration) {},
		},
	})
}

func TestFetchAllMapsCategories(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:te-api")
	defer cleanup()

	client := newApiTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/country/testland", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("c"))
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Write([]byte(countryResponse))
	}))

	records := client.FetchAll(context.Background(), "testland", apiSpecs)
	require.Len(t, records, len(apiSpecs))

	want := macrodata.Record{
		Current:  macrodata.Number(4.4),
		Previous: macrodata.Number(4.1),
		Expected: macrodata.Number(4.3),
	}
	if diff := cmp.Diff(want, records["unemployment"]); diff != "" {
		t.Fatalf("unemployment mismatch (-want +got):\n%s", diff)
	}

	// teforecast missing, falls back to forecast
	require.InDelta(t, 5.25, records["interest_rate"].Expected.Float, 1e-9)

	// fields absent from the response stay absent
	gdp := records["gdp_growth_qoq"]
	require.True(t, gdp.Current.Valid)
	require.False(t, gdp.Previous.Valid)
	require.False(t, gdp.Expected.Valid)

	// a category with no response entry is all-absent but still present
	ppi := records["ppi"]
	require.False(t, ppi.Current.Valid)
	require.Equal(t, macrodata.ReasonMissing, ppi.Current.Reason)
}

func TestFetchAllRequestFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:te-api")
	defer cleanup()

	client := newApiTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// what the API answers without a valid key
		w.WriteHeader(http.StatusForbidden)
	}))

	records := client.FetchAll(context.Background(), "testland", apiSpecs)
	require.Empty(t, records)
}

func TestFetchAllBadJson(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:te-api")
	defer cleanup()

	client := newApiTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))

	records := client.FetchAll(context.Background(), "testland", apiSpecs)
	require.Empty(t, records)
}

func TestClosestCategory(t *testing.T) {
	items := []countryItem{
		{Category: "Unemployment Rate"},
		{Category: "Interest Rate"},
	}
	require.Equal(t, "Unemployment Rate", closestCategory("Unemployment", items))
}
