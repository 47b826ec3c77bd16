package restyutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func scriptedServer(t *testing.T, statuses []int, body string) (*httptest.Server, *int) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Less(t, calls, len(statuses), "more requests than scripted responses")
		status := statuses[calls]
		calls++
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFetchTextBacksOffOnRetryableStatus(t *testing.T) {
	srv, calls := scriptedServer(t, []int{503, 503, 200}, "overview page")

	var delays []time.Duration
	policy := RetryPolicy{
		RateLimit: time.Second,
		Sleep: func(d time.Duration) {
			delays = append(delays, d)
		},
	}

	body, err := FetchText(context.Background(), resty.New(), srv.URL, policy)
	require.NoError(t, err)
	require.Equal(t, "overview page", body)
	require.Equal(t, 3, *calls)
	// two backoff sleeps (r, 2r) followed by the post-success rate limit sleep
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, time.Second}, delays)
}

func TestFetchTextFailsImmediatelyOnPermanentStatus(t *testing.T) {
	srv, calls := scriptedServer(t, []int{404}, "")

	var delays []time.Duration
	policy := RetryPolicy{
		RateLimit: time.Second,
		Sleep: func(d time.Duration) {
			delays = append(delays, d)
		},
	}

	_, err := FetchText(context.Background(), resty.New(), srv.URL, policy)
	require.Error(t, err)
	require.Equal(t, 1, *calls)
	require.Empty(t, delays)
}

func TestFetchTextExhaustsAttempts(t *testing.T) {
	srv, calls := scriptedServer(t, []int{503, 503, 503, 503, 503}, "")

	policy := RetryPolicy{
		RateLimit: time.Millisecond,
		Sleep:     func(time.Duration) {},
	}

	_, err := FetchText(context.Background(), resty.New(), srv.URL, policy)
	require.Error(t, err)
	require.Equal(t, 5, *calls)
}

func TestWriteFailureArtifact(t *testing.T) {
	dir := t.TempDir()
	out := NewFilesystemOutput(dir)

	name := out.WriteFailureArtifact(
		"indicators_page",
		"https://example.com/testland/indicators",
		"failed to fetch indicators page",
		"<html></html>",
	)
	require.True(t, strings.HasPrefix(name, "indicators_page_"))
	require.True(t, strings.HasSuffix(name, ".html"))

	contents, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Contains(t, string(contents), "<!-- URL: https://example.com/testland/indicators -->")
	require.Contains(t, string(contents), "<!-- Reason: failed to fetch indicators page -->")
	require.Contains(t, string(contents), "<html></html>")
}
