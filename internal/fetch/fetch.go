// Package fetch retrieves post HTML through an ordered chain of strategies:
// an authenticated provider passthrough when configured, a direct
// browser-mimicking request, then a rotating list of public relay templates.
// The first strategy to return a usable page wins; later strategies are
// never consulted.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"reelproxy/internal/config"
	"reelproxy/internal/httputil"
	"reelproxy/internal/media"
)

// Defaults applied by New when an Options field is zero.
const (
	DefaultProviderTimeout = 20 * time.Second
	DefaultDirectTimeout   = 15 * time.Second
	DefaultRelayTimeout    = 10 * time.Second
	DefaultDirectAttempts  = 3
	DefaultRelayAttempts   = 2
	DefaultBackoffBase     = 500 * time.Millisecond
	DefaultBackoffStep     = 500 * time.Millisecond
)

// maxBodySize bounds how much HTML a single fetch reads.
const maxBodySize = int64(20 * 1024 * 1024)

// Options configures a Fetcher. All values are externally supplied; zero
// fields fall back to the package defaults.
type Options struct {
	// ProviderEndpoint and ProviderKey enable the authenticated provider
	// strategy. An empty key disables it.
	ProviderEndpoint string
	ProviderKey      string
	ProviderTimeout  time.Duration

	DirectTimeout  time.Duration
	RelayTimeout   time.Duration
	DirectAttempts int
	RelayAttempts  int

	// Linear backoff schedule between retries: base + attempt-index*step.
	BackoffBase time.Duration
	BackoffStep time.Duration

	// Referer sent on direct requests, pointing at the origin site.
	Referer string

	Endpoints []Endpoint
	Selector  Selector
}

// OptionsFromConfig builds fetch Options from service configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	selector, err := NewSelector(cfg.Fetch.RelaySelection)
	if err != nil {
		return Options{}, err
	}

	endpoints := make([]Endpoint, 0, len(cfg.Fetch.RelayTemplates))
	for _, t := range cfg.Fetch.RelayTemplates {
		endpoints = append(endpoints, Endpoint{Template: t})
	}

	return Options{
		ProviderEndpoint: cfg.Provider.Endpoint,
		ProviderKey:      cfg.Provider.Key,
		ProviderTimeout:  cfg.Provider.Timeout.Std(),
		DirectTimeout:    cfg.Fetch.DirectTimeout.Std(),
		RelayTimeout:     cfg.Fetch.RelayTimeout.Std(),
		DirectAttempts:   cfg.Fetch.DirectAttempts,
		RelayAttempts:    cfg.Fetch.RelayAttempts,
		BackoffBase:      cfg.Fetch.BackoffBase.Std(),
		BackoffStep:      cfg.Fetch.BackoffStep.Std(),
		Referer:          cfg.Fetch.Referer,
		Endpoints:        endpoints,
		Selector:         selector,
	}, nil
}

// Fetcher resolves a post URL to its raw HTML. Safe for concurrent use;
// the only shared mutable state is the selector's rotation counter.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    zerolog.Logger
}

// New creates a Fetcher. Per-attempt deadlines come from Options, so the
// underlying client carries no whole-request timeout of its own.
func New(opts Options, log zerolog.Logger) *Fetcher {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.DirectTimeout <= 0 {
		opts.DirectTimeout = DefaultDirectTimeout
	}
	if opts.RelayTimeout <= 0 {
		opts.RelayTimeout = DefaultRelayTimeout
	}
	if opts.DirectAttempts < 1 {
		opts.DirectAttempts = DefaultDirectAttempts
	}
	if opts.RelayAttempts < 1 {
		opts.RelayAttempts = DefaultRelayAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffStep < 0 {
		opts.BackoffStep = DefaultBackoffStep
	}
	if opts.Selector == nil {
		opts.Selector = OrderedSelector{}
	}

	return &Fetcher{
		opts:   opts,
		client: httputil.NewClient(0),
		log:    log,
	}
}

// FetchPage runs the strategy chain for target and returns the first
// successful page. Failures within a strategy fall through to the next one;
// only exhaustion of the whole chain is reported to the caller.
func (f *Fetcher) FetchPage(ctx context.Context, target string) (*media.Page, error) {
	var (
		last     error
		blocked  bool
		notFound bool
	)
	record := func(err error) {
		last = err
		var se *statusError
		if errors.As(err, &se) {
			switch se.code {
			case http.StatusForbidden, http.StatusTooManyRequests:
				blocked = true
			case http.StatusNotFound:
				notFound = true
			}
		}
	}

	if f.opts.ProviderKey != "" {
		html, err := f.fetchOnce(ctx, f.providerURL(target), f.opts.ProviderTimeout, "")
		if err == nil {
			return &media.Page{HTML: html, Source: media.SourceProvider}, nil
		}
		// Provider failure is never fatal to the overall fetch.
		f.log.Warn().Err(err).Msg("provider fetch failed, falling back")
		record(err)
	}

	html, err := f.withRetry(ctx, f.opts.DirectAttempts, func() (string, error) {
		return f.fetchOnce(ctx, target, f.opts.DirectTimeout, f.opts.Referer)
	})
	if err == nil {
		return &media.Page{HTML: html, Source: media.SourceDirect}, nil
	}
	f.log.Debug().Err(err).Msg("direct fetch failed")
	record(err)

	for _, i := range f.opts.Selector.Order(len(f.opts.Endpoints)) {
		ep := f.opts.Endpoints[i]
		html, err := f.withRetry(ctx, f.opts.RelayAttempts, func() (string, error) {
			return f.fetchOnce(ctx, ep.Rewrite(target), f.opts.RelayTimeout, "")
		})
		if err == nil {
			return &media.Page{HTML: html, Source: media.SourceRelay}, nil
		}
		f.log.Debug().Err(err).Str("relay", ep.Template).Msg("relay fetch failed")
		record(err)
	}

	if blocked {
		return nil, media.Wrap(media.KindUpstreamBlocked, "target appears to block requests, try again later", last)
	}
	if notFound {
		return nil, media.Wrap(media.KindNotFound, "post not found at origin", last)
	}
	return nil, media.Wrap(media.KindExhausted, "every fetch strategy failed", last)
}

// withRetry runs op up to attempts times with linearly increasing backoff.
// Terminal upstream statuses stop the retry loop early; the chain-level
// fallthrough is the caller's concern.
func (f *Fetcher) withRetry(ctx context.Context, attempts int, op func() (string, error)) (string, error) {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			&linearBackOff{base: f.opts.BackoffBase, step: f.opts.BackoffStep},
			uint64(attempts-1),
		),
		ctx,
	)

	var html string
	err := backoff.Retry(func() error {
		h, err := op()
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.terminal() {
				return backoff.Permanent(err)
			}
			return err
		}
		html = h
		return nil
	}, bo)
	if err != nil {
		return "", err
	}
	return html, nil
}

// fetchOnce issues a single GET and returns the body when the response has
// status < 400 and is non-empty. Timeouts count as network failures.
func (f *Fetcher) fetchOnce(ctx context.Context, fetchURL string, timeout time.Duration, referer string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httputil.SetBrowserHeaders(req, referer)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty response body")
	}

	return string(body), nil
}

// providerURL rewrites the target into an authenticated provider request,
// passing the original URL through as a query parameter.
func (f *Fetcher) providerURL(target string) string {
	q := url.Values{}
	q.Set("api_key", f.opts.ProviderKey)
	q.Set("url", target)
	return strings.TrimRight(f.opts.ProviderEndpoint, "?&/") + "/?" + q.Encode()
}

// statusError reports an upstream response with status >= 400.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// terminal reports whether the status should end retries for the current
// strategy. 4xx responses are terminal for the strategy; 5xx are retried.
func (e *statusError) terminal() bool {
	return e.code >= 400 && e.code < 500
}
