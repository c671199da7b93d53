package timing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
	"results_sync/internal/platform/resilience"
)

const (
	userAgent = "ResultsSync/1.0"
	// maxPages guards against a provider that ignores the page parameter.
	maxPages = 1000
)

// Config holds timing API client configuration.
type Config struct {
	BaseURL        string
	Credentials    Credentials
	PageSize       int
	PageSizeParam  string
	Timeout        time.Duration
	TokenMargin    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Observer receives one call per HTTP request issued against the timing API.
type Observer interface {
	ObserveAPIRequest(endpoint, outcome string, elapsed time.Duration)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// Client talks to the timing API. It is safe for concurrent use by many sync passes.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	pageSize       int
	pageSizeParam  string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	tokens   *TokenSource
	breaker  *resilience.Breaker
	observer Observer
	logger   *logging.Logger
}

type Option func(*Client)

// WithCircuitBreaker rejects requests while the provider is failing. Only
// failures worth retrying count against the provider unless settings.Trips
// says otherwise.
func WithCircuitBreaker(settings resilience.Settings) Option {
	if settings.Trips == nil {
		settings.Trips = retryable
	}
	return func(c *Client) { c.breaker = resilience.NewBreaker(settings) }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new timing API client.
func New(cfg Config, logger *logging.Logger, opts ...Option) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.PageSizeParam == "" {
		cfg.PageSizeParam = "size"
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:       cfg.PageSize,
		pageSizeParam:  cfg.PageSizeParam,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", "timing"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = NewTokenSource(c.httpClient, c.baseURL, cfg.Credentials, cfg.TokenMargin, logger)
	return c
}

// Tokens exposes the shared token source.
func (c *Client) Tokens() *TokenSource {
	return c.tokens
}

func (c *Client) PageSize() int {
	return c.pageSize
}

// ListEvents lists every event visible to the account.
func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := c.getRows(ctx, "events", "event", nil, eventsKey)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		event, ok := toEvent(row)
		if !ok {
			c.logger.WarnContext(ctx, "skipping event without id")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) ListRaces(ctx context.Context, eventID int64) ([]domain.Race, error) {
	rows, err := c.getRows(ctx, "races", fmt.Sprintf("event/%d/races", eventID), nil, racesKey)
	if err != nil {
		return nil, err
	}

	races := make([]domain.Race, 0, len(rows))
	for _, row := range rows {
		if race, ok := toRace(eventID, row); ok {
			races = append(races, race)
		}
	}
	return races, nil
}

// ListResults fetches one page of overall results. Pages start at 1.
func (c *Client) ListResults(ctx context.Context, eventID int64, page, pageSize int) (Page[domain.RawResultRow], error) {
	path := fmt.Sprintf("event/%d/results", eventID)
	return c.getPage(ctx, "results", path, page, pageSize)
}

// ListBrackets returns bracket definitions with Kind left unset.
func (c *Client) ListBrackets(ctx context.Context, eventID int64) ([]domain.Bracket, error) {
	rows, err := c.getRows(ctx, "brackets", fmt.Sprintf("event/%d/bracket", eventID), nil, bracketsKey)
	if err != nil {
		return nil, err
	}

	brackets := make([]domain.Bracket, 0, len(rows))
	for _, row := range rows {
		if bracket, ok := toBracket(eventID, row); ok {
			brackets = append(brackets, bracket)
		}
	}
	return brackets, nil
}

func (c *Client) ListBracketResults(ctx context.Context, bracketID int64, page, pageSize int) (Page[domain.RawResultRow], error) {
	path := fmt.Sprintf("bracket/%d/results", bracketID)
	return c.getPage(ctx, "bracket_results", path, page, pageSize)
}

// FetchAllResults pages through every overall result row of an event.
func (c *Client) FetchAllResults(ctx context.Context, eventID int64) ([]domain.RawResultRow, error) {
	return c.paginate(ctx, "results", func(ctx context.Context, page int) (Page[domain.RawResultRow], error) {
		return c.ListResults(ctx, eventID, page, c.pageSize)
	})
}

func (c *Client) FetchAllBracketResults(ctx context.Context, bracketID int64) ([]domain.RawResultRow, error) {
	return c.paginate(ctx, "bracket results", func(ctx context.Context, page int) (Page[domain.RawResultRow], error) {
		return c.ListBracketResults(ctx, bracketID, page, c.pageSize)
	})
}

// paginate keeps requesting pages while they come back full. Any page failure
// discards what was accumulated for this resource.
func (c *Client) paginate(ctx context.Context, resource string, fetch func(context.Context, int) (Page[domain.RawResultRow], error)) ([]domain.RawResultRow, error) {
	var all []domain.RawResultRow

	for page := 1; page <= maxPages; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			if errors.Is(err, domain.ErrAuth) {
				return nil, err
			}
			return nil, domain.PageFetchError(resource, page, err)
		}

		all = append(all, p.Items...)

		c.logger.DebugContext(ctx, "fetched page",
			"resource", resource,
			"page", page,
			"rows", len(p.Items),
			"total", len(all),
		)

		if !p.Full() {
			return all, nil
		}
	}

	return nil, domain.PageFetchError(resource, maxPages+1, fmt.Errorf("more than %d full pages", maxPages))
}

func (c *Client) getPage(ctx context.Context, endpoint, path string, page, pageSize int) (Page[domain.RawResultRow], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set(c.pageSizeParam, strconv.Itoa(pageSize))

	rows, err := c.getRows(ctx, endpoint, path, query, resultsKey)
	if err != nil {
		return Page[domain.RawResultRow]{}, err
	}
	return Page[domain.RawResultRow]{Number: page, Size: pageSize, Items: rows}, nil
}

func (c *Client) getRows(ctx context.Context, endpoint, path string, query url.Values, envelope domain.FieldChain) ([]domain.Row, error) {
	body, err := c.fetchWithRetry(ctx, endpoint, path, query)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	switch v := decoded.(type) {
	case []any:
		return domain.FieldChain{"items"}.Rows(domain.Row{"items": v}), nil
	case map[string]any:
		return envelope.Rows(domain.Row(v)), nil
	default:
		return nil, nil
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var body []byte
		body, err = c.attempt(ctx, endpoint, target)
		if err == nil {
			return body, nil
		}
		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.WarnContext(ctx, "request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if errors.Is(err, domain.ErrAuth) {
		return nil, err
	}
	return nil, fmt.Errorf("%s after %d attempts: %w", endpoint, c.maxAttempts, err)
}

func (c *Client) attempt(ctx context.Context, endpoint, target string) ([]byte, error) {
	var body []byte
	request := func() error {
		started := time.Now()
		var err error
		body, err = c.doRequest(ctx, target)
		c.observe(endpoint, err, time.Since(started))
		return err
	}

	if c.breaker == nil {
		return body, request()
	}
	if err := c.breaker.Execute(request); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, target string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.tokens.Invalidate()
		return nil, domain.AuthError(&statusError{code: resp.StatusCode})
	case resp.StatusCode != http.StatusOK:
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) observe(endpoint string, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	var se *statusError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAuth):
		outcome = "auth_error"
	case errors.As(err, &se):
		outcome = strconv.Itoa(se.code)
	default:
		outcome = "error"
	}
	c.observer.ObserveAPIRequest(endpoint, outcome, elapsed)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if c.maxBackoff > 0 && backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// retryable covers 429, 5xx and transport failures. Auth failures and an open
// circuit are returned immediately.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrAuth) || errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}
