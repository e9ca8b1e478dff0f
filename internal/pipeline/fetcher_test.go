package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/finops/internal/util"
	"github.com/ppiankov/finops/internal/worker"
)

func newTestSession(t *testing.T, robots *util.RobotsChecker, limiter *worker.Limiter) *Session {
	t.Helper()
	s, err := NewSession(SessionConfig{
		Timeout:   5 * time.Second,
		UserAgent: "finops-test/1.0",
		MaxBytes:  1 << 20,
		Robots:    robots,
		Limiter:   limiter,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func noSleep(t *testing.T) *atomic.Int32 {
	t.Helper()
	var sleeps atomic.Int32
	orig := fetchSleepFunc
	fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
		sleeps.Add(1)
		return nil
	}
	t.Cleanup(func() { fetchSleepFunc = orig })
	return &sleeps
}

func TestSession_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "finops-test/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><body><div class="table_wrapper"><table></table></div></body></html>`)
	}))
	defer server.Close()

	s := newTestSession(t, nil, nil)
	body, err := s.Fetch(context.Background(), Request{URL: server.URL, WaitFor: ".table_wrapper"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(body) == 0 {
		t.Error("Expected a body")
	}
}

func TestSession_MarkerMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>loading...</body></html>")
	}))
	defer server.Close()

	s := newTestSession(t, nil, nil)
	_, err := s.Fetch(context.Background(), Request{URL: server.URL, WaitFor: ".table_wrapper, .rayanDynamicStatement"})
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("Expected ErrMarkerNotFound, got %v", err)
	}
	if !isRetryableFetchError(err) {
		t.Error("Expected a missing marker to be retryable")
	}
}

func TestSession_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestSession(t, nil, nil)
	_, err := s.Fetch(context.Background(), Request{URL: server.URL})

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("Expected a 404 StatusError, got %v", err)
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
}

func TestSession_Robots(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\nCrawl-delay: 2\n")
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	limiter := worker.NewLimiter(100, 1, 0)
	s := newTestSession(t, util.NewRobotsChecker("finops-test/1.0", time.Second), limiter)

	if _, err := s.Fetch(context.Background(), Request{URL: server.URL + "/private/x"}); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("Expected ErrDisallowed, got %v", err)
	}
	if isRetryableFetchError(fmt.Errorf("wrapped: %w", ErrDisallowed)) {
		t.Error("Expected robots denial to be permanent")
	}
	if _, err := s.Fetch(context.Background(), Request{URL: server.URL + "/public"}); err != nil {
		t.Fatalf("Expected public path to be fetched, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected 1 page hit, got %d", hits.Load())
	}
}

func TestRetrier_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	sleeps := noSleep(t)
	r := Retrier{MaxAttempts: 3, Wait: time.Second}
	body, err := r.Do(context.Background(), newTestSession(t, nil, nil), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(body) != "<html>OK</html>" {
		t.Errorf("Unexpected body: %s", body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
	if sleeps.Load() != 2 {
		t.Errorf("Expected 2 waits, got %d", sleeps.Load())
	}
}

func TestRetrier_AllAttemptsExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	noSleep(t)
	r := Retrier{MaxAttempts: 3, Wait: time.Second}
	_, err := r.Do(context.Background(), newTestSession(t, nil, nil), Request{URL: server.URL})

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("Expected the final 502, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts.Load())
	}
}

func TestRetrier_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	noSleep(t)
	r := Retrier{MaxAttempts: 3, Wait: time.Second}
	if _, err := r.Do(context.Background(), newTestSession(t, nil, nil), Request{URL: server.URL}); err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 404 not to be retried, got %d attempts", attempts.Load())
	}
}

func TestRetry_Generic(t *testing.T) {
	noSleep(t)

	calls := 0
	v, err := Retry(context.Background(), Retrier{MaxAttempts: 3}, "sheet", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, ErrMarkerNotFound
		}
		return 42, nil
	})
	if err != nil || v != 42 || calls != 3 {
		t.Errorf("Expected 42 on the 3rd call, got %d, %v after %d calls", v, err, calls)
	}

	calls = 0
	_, err = Retry(context.Background(), Retrier{MaxAttempts: 3}, "sheet", func(ctx context.Context) (int, error) {
		calls++
		return 0, ErrMarkerNotFound
	})
	if !errors.Is(err, ErrMarkerNotFound) || calls != 3 {
		t.Errorf("Expected final marker error after 3 calls, got %v after %d", err, calls)
	}
}

func TestRetry_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	orig := fetchSleepFunc
	fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	defer func() { fetchSleepFunc = orig }()

	calls := 0
	_, err := Retry(ctx, Retrier{MaxAttempts: 3}, "page 1", func(ctx context.Context) (string, error) {
		calls++
		return "", &StatusError{Code: 503, Status: "503 Service Unavailable"}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("Expected cancellation after 1 call, got %v after %d", err, calls)
	}
}

// flakyFetcher fails with err for the first failures calls
type flakyFetcher struct {
	failures int
	err      error
	calls    int
}

func (f *flakyFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []byte("ok"), nil
}

func TestRetrier_UnknownTransportErrorIsRetried(t *testing.T) {
	sleeps := noSleep(t)

	f := &flakyFetcher{failures: 2, err: errors.New("net::ERR_CONNECTION_RESET")}
	body, err := Retrier{MaxAttempts: 3}.Do(context.Background(), f, Request{URL: "http://codal.test/x"})
	if err != nil {
		t.Fatalf("Expected success on the 3rd attempt, got %v", err)
	}
	if string(body) != "ok" || f.calls != 3 {
		t.Errorf("Expected body ok after 3 calls, got %q after %d", body, f.calls)
	}
	if sleeps.Load() != 2 {
		t.Errorf("Expected 2 waits, got %d", sleeps.Load())
	}

	f = &flakyFetcher{failures: 5, err: errors.New("browser crashed")}
	if _, err := (Retrier{MaxAttempts: 3}).Do(context.Background(), f, Request{URL: "http://codal.test/x"}); err == nil || f.calls != 3 {
		t.Errorf("Expected final error after 3 calls, got %v after %d", err, f.calls)
	}
}

func TestRetrier_PermanentWrapperStopsRetries(t *testing.T) {
	noSleep(t)

	f := &flakyFetcher{failures: 5, err: Permanent(errors.New("invalid selector"))}
	_, err := Retrier{MaxAttempts: 3}.Do(context.Background(), f, Request{URL: "http://codal.test/x"})
	var pe *PermanentError
	if !errors.As(err, &pe) || f.calls != 1 {
		t.Errorf("Expected one attempt with a permanent error, got %v after %d", err, f.calls)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"marker", fmt.Errorf("%w: .table_wrapper", ErrMarkerNotFound), true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"status 429", &StatusError{Code: 429}, true},
		{"status 503", &StatusError{Code: 503}, true},
		{"status 400", &StatusError{Code: 400}, false},
		{"status 404 wrapped", fmt.Errorf("sheet: %w", &StatusError{Code: 404}), false},
		{"robots", fmt.Errorf("%w: /private", ErrDisallowed), false},
		{"permanent", Permanent(errors.New("create request: bad url")), false},
		{"plain transport", errors.New("net::ERR_CONNECTION_RESET"), true},
		{"wrapped transport", fmt.Errorf("fetch: %w", errors.New("connection refused")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
