package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/ppiankov/finops/internal/util"
	"github.com/ppiankov/finops/internal/worker"
)

var (
	// ErrMarkerNotFound is returned when the page lacks the element a
	// request waits for. It is transient: the portal renders sheets lazily.
	ErrMarkerNotFound = errors.New("element not found")
	// ErrDisallowed is returned when robots.txt forbids the URL
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Request is one fetch of the portal
type Request struct {
	URL string
	// WaitFor is a CSS selector that must be present in the returned
	// document. Empty accepts any body.
	WaitFor string
}

// Fetcher obtains raw page content
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// SessionConfig configures one fetch session
type SessionConfig struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Robots, when set, gates every request. Crawl delays it reports are
	// applied to Limiter when both are set.
	Robots  *util.RobotsChecker
	Limiter *worker.Limiter
}

// Session is a long-lived HTTP client with its own cookie jar
type Session struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
}

// NewSession creates a new session with the given configuration
func NewSession(cfg SessionConfig) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20_000_000
	}

	return &Session{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		robots:    cfg.Robots,
		limiter:   cfg.Limiter,
	}, nil
}

// Fetch retrieves the body of req.URL and checks its WaitFor marker
func (s *Session) Fetch(ctx context.Context, r Request) ([]byte, error) {
	if err := s.checkRobots(ctx, r.URL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json,text/csv;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if r.WaitFor != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		if doc.Find(r.WaitFor).Length() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, r.WaitFor)
		}
	}

	return body, nil
}

func (s *Session) checkRobots(ctx context.Context, rawURL string) error {
	if s.robots == nil {
		return nil
	}
	allowed, delay, err := s.robots.Allowed(ctx, rawURL)
	if err != nil {
		return Permanent(err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}
	if s.limiter != nil && delay > 0 {
		if u, err := url.Parse(rawURL); err == nil {
			s.limiter.SetHostDelay(u.Host, delay)
		}
	}
	return nil
}

// Close drops idle connections
func (s *Session) Close() {
	s.httpClient.CloseIdleConnections()
}
