package timing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

// Credentials for the password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// TokenSource owns the bearer token shared by every sync pass.
// Concurrent callers that find the token expired wait on a single refresh.
type TokenSource struct {
	httpClient *http.Client
	tokenURL   string
	creds      Credentials
	margin     time.Duration
	logger     *logging.Logger
	now        func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	flight singleflight.Group
}

func NewTokenSource(httpClient *http.Client, baseURL string, creds Credentials, margin time.Duration, logger *logging.Logger) *TokenSource {
	return &TokenSource{
		httpClient: httpClient,
		tokenURL:   strings.TrimRight(baseURL, "/") + "/oauth2/token",
		creds:      creds,
		margin:     margin,
		logger:     logger.With("component", "token_source"),
		now:        time.Now,
	}
}

// Token returns the cached bearer token, refreshing it when expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cached(); ok {
		return token, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches a new token. A refresh already in flight is joined, not duplicated.
func (s *TokenSource) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.flight.Do("token", func() (any, error) {
		if token, ok := s.cached(); ok {
			return token, nil
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next call refreshes.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *TokenSource) cached() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || !s.now().Before(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *TokenSource) fetch(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("grant_type", "password")
	query.Set("client_id", s.creds.ClientID)
	query.Set("client_secret", s.creds.ClientSecret)
	query.Set("username", s.creds.Username)
	query.Set("password", s.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tokenURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", domain.AuthError(fmt.Errorf("create token request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	issuedAt := s.now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", domain.AuthError(fmt.Errorf("request token: %s", s.redact(err.Error())))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.AuthError(fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var body tokenResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", domain.AuthError(fmt.Errorf("decode token response: %w", err))
	}
	if body.AccessToken == "" {
		return "", domain.AuthError(fmt.Errorf("token response has no access_token"))
	}

	ttl := time.Duration(body.ExpiresIn) * time.Second
	expiresAt := issuedAt.Add(ttl - s.margin)
	if ttl <= s.margin {
		expiresAt = issuedAt.Add(ttl / 2)
	}

	s.mu.Lock()
	s.token = body.AccessToken
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "refreshed api token", "expires_at", expiresAt)
	return body.AccessToken, nil
}

func (s *TokenSource) redact(msg string) string {
	for _, secret := range []string{s.creds.ClientSecret, s.creds.Password} {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, url.QueryEscape(secret), "[REDACTED]")
		msg = strings.ReplaceAll(msg, secret, "[REDACTED]")
	}
	return msg
}
