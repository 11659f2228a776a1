package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// handlerTransport serves every request from h, whatever the host, so tests
// can use literal hosts such as http://a.test.
type handlerTransport struct {
	h http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.h.ServeHTTP(rec, req)
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// testFetchConfig returns a FetchConfig whose client routes to h.
func testFetchConfig(h http.Handler) FetchConfig {
	return FetchConfig{
		UserAgent: DefaultUserAgent,
		Timeout:   time.Second,
		Client:    &http.Client{Timeout: time.Second, Transport: handlerTransport{h: h}},
	}
}

// sitesHandler serves a fixed HTML body per host; unknown hosts get 404.
func sitesHandler(pages map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.Host]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	})
}

// fakeScraper returns canned results per URL.
type fakeScraper struct {
	mu      sync.Mutex
	results map[string][]ResultRecord
	errs    map[string]error
	delay   map[string]time.Duration
	calls   []string
}

func (s *fakeScraper) Scrape(_ context.Context, siteURL string, _ FilterSpec) ([]ResultRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, siteURL)
	d := s.delay[siteURL]
	s.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if err := s.errs[siteURL]; err != nil {
		return nil, err
	}
	return s.results[siteURL], nil
}

// fakeSearcher returns canned fallback results.
type fakeSearcher struct {
	records  []ResultRecord
	err      error
	called   int
	keywords []string
}

func (s *fakeSearcher) Name() string { return GoogleNewsName }

func (s *fakeSearcher) Search(_ context.Context, keywords []string) ([]ResultRecord, error) {
	s.called++
	s.keywords = keywords
	return s.records, s.err
}

var errBoom = errors.New("boom")
