package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// ClientOptions tunes the HTTP stack shared by the REST and GraphQL clients.
type ClientOptions struct {
	Token          string
	RequestTimeout time.Duration
	RetryMax       int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	RateLimitSleep time.Duration
	Logger         *slog.Logger
}

// NewHTTPClient builds an authenticated client that waits out secondary rate limits
// and retries 5xx and 429 responses with backoff. Other 4xx responses are returned as is.
// The last response of an exhausted retry is passed through so callers keep the status code.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.HTTPClient.Timeout = opts.RequestTimeout
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		retryClient.Logger = opts.Logger
	} else {
		retryClient.Logger = nil
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(
		&retryablehttp.RoundTripper{Client: retryClient},
		github_ratelimit.WithSingleSleepLimit(opts.RateLimitSleep, nil),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}
