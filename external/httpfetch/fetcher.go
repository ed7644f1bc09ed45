// Package httpfetch is the single outbound HTTP path to the data providers.
// It paces calls per host, backs off on 429 and disables itself for good on
// the first 403.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/metrics"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	defaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 8 << 20
	defaultUserAgent    = "matchfeed/1.0"
)

var (
	ErrRateLimited = usecase.ErrRateLimited
	ErrForbidden   = usecase.ErrUpstreamRejected
	ErrTransport   = usecase.ErrDependencyUnavailable
)

var sensitiveParams = []string{"api_token", "token", "apikey", "key"}

// StatusError is a non-2xx answer that is neither 429 nor 403.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d url=%s body=%s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

type Config struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MinInterval    time.Duration
	Retry          resilience.RetryPolicy
	CircuitBreaker resilience.CircuitBreakerConfig
	Clock          resilience.Clock
	Logger         *logging.Logger
	UserAgent      string
	MaxBodyBytes   int64
	// Secrets are scrubbed from anything logged or returned.
	Secrets []string
}

type Status struct {
	Latched   bool                    `json:"latched"`
	Reason    string                  `json:"reason,omitempty"`
	LatchedAt *time.Time              `json:"latchedAt,omitempty"`
	Breaker   resilience.CircuitState `json:"breaker"`
}

type Fetcher struct {
	client       *http.Client
	clock        resilience.Clock
	logger       *logging.Logger
	retry        resilience.RetryPolicy
	breaker      *resilience.CircuitBreaker
	latch        *resilience.Latch
	flight       singleflight.Group
	userAgent    string
	maxBodyBytes int64
	minInterval  time.Duration
	secrets      []string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = resilience.SystemClock{}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if client.Timeout <= 0 {
		client.Timeout = cfg.Timeout
	}
	if client.Timeout <= 0 {
		client.Timeout = defaultTimeout
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	secrets := make([]string, 0, len(cfg.Secrets))
	for _, s := range cfg.Secrets {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}

	f := &Fetcher{
		client:       client,
		clock:        clock,
		logger:       logger.Named("httpfetch"),
		retry:        resilience.NormalizeRetryPolicy(cfg.Retry),
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker, clock),
		latch:        &resilience.Latch{},
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
		minInterval:  max(cfg.MinInterval, 0),
		secrets:      secrets,
		limiters:     make(map[string]*rate.Limiter),
	}
	f.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		f.logger.Warn("upstream circuit breaker changed state", "from", from, "to", to)
	})
	return f
}

// OnLatched registers fn to run once when a 403 disables the fetcher. It
// runs immediately if that already happened.
func (f *Fetcher) OnLatched(fn func(reason error)) {
	f.latch.OnTrip(fn)
}

func (f *Fetcher) Disabled() bool {
	return f.latch.Tripped()
}

func (f *Fetcher) Status() Status {
	st := Status{Latched: f.latch.Tripped(), Breaker: f.breaker.State()}
	if st.Latched {
		if reason := f.latch.Reason(); reason != nil {
			st.Reason = reason.Error()
		}
		at := f.latch.At()
		st.LatchedAt = &at
	}
	return st
}

// GetJSON fetches rawURL and decodes the body into target.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, header http.Header, target any) error {
	body, err := f.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", f.redactURL(rawURL), err)
	}
	return nil
}

// Get returns the body of a 2xx answer. Identical concurrent requests share
// one upstream call.
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if err := f.latchedErr(); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", usecase.ErrInvalidInput, f.redactURL(rawURL))
	}

	out, err, _ := f.flight.Do(flightKey(rawURL, header), func() (any, error) {
		return f.fetch(ctx, parsed, header)
	})
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return append([]byte(nil), body...), nil
}

func (f *Fetcher) fetch(ctx context.Context, target *url.URL, header http.Header) ([]byte, error) {
	host := target.Host
	display := f.redactURL(target.String())
	backOff := f.retry.NewBackOff()

	for attempt := 0; ; attempt++ {
		if err := f.latchedErr(); err != nil {
			return nil, err
		}
		if err := f.breaker.Allow(); err != nil {
			metrics.ObserveFetch(host, "circuit_open", 0)
			return nil, fmt.Errorf("%w: %s: %v", ErrTransport, host, err)
		}
		if err := f.pace(ctx, host); err != nil {
			f.breaker.Release()
			return nil, err
		}

		started := f.clock.Now()
		status, body, err := f.roundTrip(ctx, target, header)
		elapsed := f.clock.Now().Sub(started)
		if err != nil {
			if ctx.Err() != nil {
				f.breaker.Release()
				return nil, ctx.Err()
			}
			f.breaker.RecordFailure()
			metrics.ObserveFetch(host, "error", elapsed)
			return nil, fmt.Errorf("%w: get %s: %s", ErrTransport, display, f.scrub(err.Error()))
		}

		switch {
		case status >= 200 && status < 300:
			f.breaker.RecordSuccess()
			metrics.ObserveFetch(host, "ok", elapsed)
			return body, nil

		case status == http.StatusTooManyRequests:
			f.breaker.Release()
			metrics.ObserveFetch(host, "rate_limited", elapsed)
			if attempt >= f.retry.MaxRetries {
				f.logger.WarnContext(ctx, "upstream rate limit retries exhausted", "url", display, "attempts", attempt+1)
				return nil, fmt.Errorf("%w: %s after %d attempts", ErrRateLimited, display, attempt+1)
			}
			delay := backOff.NextBackOff()
			metrics.FetchRetriesTotal.WithLabelValues(host).Inc()
			f.logger.InfoContext(ctx, "upstream rate limited, backing off", "url", display, "attempt", attempt+1, "delay", delay.String())
			if err := f.clock.Sleep(ctx, delay); err != nil {
				return nil, err
			}

		case status == http.StatusForbidden:
			f.breaker.Release()
			metrics.ObserveFetch(host, "forbidden", elapsed)
			reason := crerr.Wrapf(ErrForbidden, "%s answered 403", host)
			if f.latch.Trip(reason, f.clock.Now()) {
				metrics.FetcherDisabled.Set(1)
				f.logger.ErrorContext(ctx, "upstream rejected request, fetching disabled until restart", "url", display)
			}
			return nil, reason

		default:
			if status >= http.StatusInternalServerError {
				f.breaker.RecordFailure()
			} else {
				f.breaker.Release()
			}
			metrics.ObserveFetch(host, "status_"+statusClass(status), elapsed)
			return nil, &StatusError{StatusCode: status, URL: display, Body: abbreviate(f.scrub(string(body)))}
		}
	}
}

func (f *Fetcher) roundTrip(ctx context.Context, target *url.URL, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, f.maxBodyBytes+1)); err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(buf.Len()) > f.maxBodyBytes {
		return 0, nil, fmt.Errorf("response body exceeds %d bytes", f.maxBodyBytes)
	}
	return resp.StatusCode, append([]byte(nil), buf.B...), nil
}

// pace blocks until the host's minimum interval since the previous call has
// passed.
func (f *Fetcher) pace(ctx context.Context, host string) error {
	if f.minInterval <= 0 {
		return nil
	}
	now := f.clock.Now()
	delay := f.limiter(host).ReserveN(now, 1).DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	return f.clock.Sleep(ctx, delay)
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(f.minInterval), 1)
		f.limiters[host] = lim
	}
	return lim
}

func (f *Fetcher) latchedErr() error {
	if !f.latch.Tripped() {
		return nil
	}
	if reason := f.latch.Reason(); reason != nil {
		return reason
	}
	return ErrForbidden
}

func (f *Fetcher) redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return f.scrub(rawURL)
	}
	query := parsed.Query()
	changed := false
	for _, param := range sensitiveParams {
		if query.Has(param) {
			query.Set(param, "REDACTED")
			changed = true
		}
	}
	if changed {
		parsed.RawQuery = query.Encode()
	}
	return f.scrub(parsed.String())
}

func (f *Fetcher) scrub(value string) string {
	for _, secret := range f.secrets {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return value
}

func flightKey(rawURL string, header http.Header) string {
	if len(header) == 0 {
		return rawURL
	}
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(rawURL)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.Join(header[k], ","))
	}
	return b.String()
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

func abbreviate(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
