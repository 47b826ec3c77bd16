package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// statuses worth retrying, everything else non-200 fails immediately
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type RetryPolicy struct {
	// number of attempts before giving up, defaults to 5
	Attempts int
	// slept after every successful fetch to throttle the next call,
	// also the initial backoff delay (doubled on each retry)
	RateLimit time.Duration
	// overridable in tests, defaults to time.Sleep
	Sleep func(time.Duration)
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return 5
	}
	return p.Attempts
}

func (p RetryPolicy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// FetchText GETs a url under the retry policy and returns the response
// body. 429/5xx statuses and transport errors back off and retry, any
// other non-200 status fails immediately. On an HTTP-level failure the
// body retrieved (if any) is returned alongside the error so callers
// can persist it for post-mortem inspection.
func FetchText(ctx context.Context, client *resty.Client, url string, policy RetryPolicy) (string, error) {
	delay := policy.RateLimit
	var lastBody string
	var lastErr error

	for attempt := 1; attempt <= policy.attempts(); attempt++ {
		res, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			lastErr = err
			slog.WarnContext(
				ctx, "error fetching url",
				"url", url,
				"attempt", attempt,
				"err", err,
			)
			policy.sleep(delay)
			delay *= 2
			continue
		}

		status := res.StatusCode()
		if status == http.StatusOK {
			// politeness delay towards the remote host
			policy.sleep(policy.RateLimit)
			return res.String(), nil
		}
		if retryableStatus[status] {
			lastBody = res.String()
			lastErr = fmt.Errorf("http %d for %s", status, url)
			slog.WarnContext(
				ctx, "received retryable status",
				"url", url,
				"status", status,
				"attempt", attempt,
				"delay", delay,
			)
			policy.sleep(delay)
			delay *= 2
			continue
		}

		slog.ErrorContext(ctx, "received failure status", "url", url, "status", status)
		return res.String(), fmt.Errorf("http %d for %s", status, url)
	}

	slog.ErrorContext(ctx, "exhausted fetch attempts", "url", url, "err", lastErr)
	return lastBody, lastErr
}
