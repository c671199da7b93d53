package timing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
	"results_sync/internal/platform/resilience"
)

type fakeAPI struct {
	t *testing.T

	tokenCalls   atomic.Int32
	tokenStatus  int
	tokenTTL     int64
	tokenDelay   time.Duration
	resultsCalls atomic.Int32

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{
		t:           t,
		tokenStatus: http.StatusOK,
		tokenTTL:    3600,
		handlers:    make(map[string]http.HandlerFunc),
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) handle(path string, h http.HandlerFunc) {
	a.mu.Lock()
	a.handlers[path] = h
	a.mu.Unlock()
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/oauth2/token" {
		a.tokenCalls.Add(1)
		if a.tokenDelay > 0 {
			time.Sleep(a.tokenDelay)
		}
		if r.URL.Query().Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if a.tokenStatus != http.StatusOK {
			w.WriteHeader(a.tokenStatus)
			return
		}
		n := a.tokenCalls.Load()
		writeJSON(a.t, w, map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "bearer",
			"expires_in":   a.tokenTTL,
		})
		return
	}

	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	a.mu.Lock()
	h, ok := a.handlers[r.URL.Path]
	a.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h(w, r)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	body, err := sonic.Marshal(v)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func resultRows(page, n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]any{
			"entry_id":   page*1000 + i,
			"first_name": "Runner",
			"bib":        strconv.Itoa(page*1000 + i),
		})
	}
	return rows
}

func newTestClient(srv *httptest.Server, mutate func(*Config), opts ...Option) *Client {
	cfg := Config{
		BaseURL: srv.URL,
		Credentials: Credentials{
			ClientID:     "client",
			ClientSecret: "s3cret",
			Username:     "timer",
			Password:     "hunter2",
		},
		PageSize:       50,
		PageSizeParam:  "size",
		Timeout:        5 * time.Second,
		TokenMargin:    time.Minute,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, logging.NewNop(), opts...)
}

func TestFetchAllResults_StopsOnShortPage(t *testing.T) {
	api, srv := newFakeAPI(t)
	sizes := map[int]int{1: 50, 2: 50, 3: 50, 4: 12}

	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("size"))
		writeJSON(t, w, map[string]any{"results": resultRows(page, sizes[page])})
	})

	client := newTestClient(srv, nil)

	rows, err := client.FetchAllResults(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, rows, 162)
	assert.Equal(t, int32(4), api.resultsCalls.Load())
	assert.Equal(t, int32(1), api.tokenCalls.Load())
}

func TestFetchAllResults_EmptyFirstPage(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		writeJSON(t, w, map[string]any{"results": []any{}})
	})

	rows, err := newTestClient(srv, nil).FetchAllResults(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int32(1), api.resultsCalls.Load())
}

func TestFetchAllResults_ResultsPerPageParam(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("results_per_page"))
		assert.Empty(t, r.URL.Query().Get("size"))
		writeJSON(t, w, resultRows(1, 3))
	})

	client := newTestClient(srv, func(cfg *Config) {
		cfg.PageSize = 25
		cfg.PageSizeParam = "results_per_page"
	})

	rows, err := client.FetchAllResults(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFetchAllResults_PageFailureIsFatal(t *testing.T) {
	api, srv := newFakeAPI(t)
	var page2Calls atomic.Int32

	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 2 {
			page2Calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, map[string]any{"results": resultRows(page, 50)})
	})

	rows, err := newTestClient(srv, nil).FetchAllResults(context.Background(), 7)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, domain.ErrPageFetch))
	assert.False(t, errors.Is(err, domain.ErrAuth))
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, int32(2), page2Calls.Load(), "retried up to max attempts")
}

func TestFetchAllResults_ClientErrorNotRetried(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := newTestClient(srv, nil).FetchAllResults(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPageFetch))
	assert.Equal(t, int32(1), api.resultsCalls.Load())
}

func TestFetchAllResults_AuthFailureIsFatal(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.tokenStatus = http.StatusUnauthorized
	api.handle("/event/7/results", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		writeJSON(t, w, map[string]any{"results": resultRows(1, 1)})
	})

	_, err := newTestClient(srv, nil).FetchAllResults(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
	assert.False(t, errors.Is(err, domain.ErrPageFetch))
	assert.Equal(t, int32(0), api.resultsCalls.Load())
	assert.Equal(t, int32(1), api.tokenCalls.Load(), "auth failure is not retried")
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestDataCallUnauthorizedInvalidatesToken(t *testing.T) {
	api, srv := newFakeAPI(t)
	var calls atomic.Int32
	api.handle("/event", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, map[string]any{"events": []any{}})
	})

	client := newTestClient(srv, nil)

	_, err := client.ListEvents(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))

	_, err = client.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
}

func TestToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.tokenDelay = 50 * time.Millisecond
	api.handle("/event", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"events": []any{}})
	})

	client := newTestClient(srv, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListEvents(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.tokenCalls.Load())
}

func TestToken_RefreshesAfterExpiryMinusMargin(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.tokenTTL = 120

	client := newTestClient(srv, nil)
	now := time.Date(2026, 4, 18, 7, 0, 0, 0, time.UTC)
	client.tokens.now = func() time.Time { return now }

	first, err := client.tokens.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	cached, err := client.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.Equal(t, int32(1), api.tokenCalls.Load())

	now = now.Add(2 * time.Second)
	refreshed, err := client.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, refreshed)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
}

func TestListEvents_DecodesFieldVariants(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"events": []any{
			map[string]any{"event_id": 11, "name": "Spring 10K", "start_time": 1776495600, "end_time": 1776502800},
			map[string]any{"id": "12", "event_name": "Fall Half", "start_time": "2026-10-18T07:00:00Z"},
			map[string]any{"name": "no id"},
		}})
	})

	events, err := newTestClient(srv, nil).ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, int64(11), events[0].ID)
	assert.Equal(t, time.Unix(1776495600, 0).UTC(), events[0].StartAt)
	require.NotNil(t, events[0].EndAt)

	assert.Equal(t, int64(12), events[1].ID)
	assert.Equal(t, "Fall Half", events[1].Name)
	assert.Nil(t, events[1].EndAt)
}

func TestListBrackets_DecodesBareArray(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/bracket", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{
			map[string]any{"bracket_id": 1, "bracket_name": "Female", "wants_leaderboard": "T"},
			map[string]any{"id": 2, "name": "30-34", "bracket_type": "AGE", "race_id": 3, "wants_leaderboard": true},
			map[string]any{"bracket_id": 4, "name": "Overall"},
		})
	})

	brackets, err := newTestClient(srv, nil).ListBrackets(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, brackets, 3)

	assert.Equal(t, "Female", brackets[0].Name)
	assert.True(t, brackets[0].WantsLeaderboard)
	assert.Equal(t, "AGE", brackets[1].TypeTag)
	require.NotNil(t, brackets[1].RaceID)
	assert.Equal(t, int64(3), *brackets[1].RaceID)
	assert.False(t, brackets[2].WantsLeaderboard)
	assert.Equal(t, int64(7), brackets[2].EventID)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveAPIRequest(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, endpoint+":"+outcome)
	o.mu.Unlock()
}

func TestCircuitBreakerRejectsWhileOpen(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/races", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	observer := &recordingObserver{}
	client := newTestClient(srv, nil,
		WithCircuitBreaker(resilience.Settings{Threshold: 2, Cooldown: time.Minute, Probes: 1}),
		WithObserver(observer),
	)

	_, err := client.ListRaces(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, int32(2), api.resultsCalls.Load())

	_, err = client.ListRaces(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, int32(2), api.resultsCalls.Load())
	assert.Equal(t, []string{"races:503", "races:503"}, observer.outcomes)
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/event/7/races", func(w http.ResponseWriter, r *http.Request) {
		api.resultsCalls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	client := newTestClient(srv, nil,
		WithCircuitBreaker(resilience.Settings{Threshold: 1, Cooldown: time.Minute, Probes: 1}),
	)

	for i := 0; i < 3; i++ {
		_, err := client.ListRaces(context.Background(), 7)
		require.Error(t, err)
		assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
	}
	assert.Equal(t, int32(3), api.resultsCalls.Load())
}
