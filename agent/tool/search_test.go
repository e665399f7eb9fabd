package tool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

type fakeProvider struct {
	name    string
	results []contractx.SearchResult
	err     error
	calls   atomic.Int64
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, _ string, _ int) ([]contractx.SearchResult, error) {
	f.calls.Add(1)
	return f.results, f.err
}

func TestSearchFallsThroughFailedProviders(t *testing.T) {
	t.Parallel()

	failing := &fakeProvider{name: "broken", err: errors.New("boom")}
	empty := &fakeProvider{name: "empty"}
	working := &fakeProvider{name: "working", results: []contractx.SearchResult{{Title: "hit", URL: "https://x", Snippet: "s"}}}

	s := NewSearchWithProviders(8, failing, empty, working)
	results := s.Search(context.Background(), "what is backpressure", 3)
	if len(results) != 1 || results[0].Title != "hit" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if failing.calls.Load() != 1 || empty.calls.Load() != 1 {
		t.Fatal("earlier providers were not tried in order")
	}
}

func TestSearchNeverFails(t *testing.T) {
	t.Parallel()

	s := NewSearchWithProviders(8,
		&fakeProvider{name: "a", err: errors.New("down")},
		&fakeProvider{name: "b", err: errors.New("also down")},
	)
	if results := s.Search(context.Background(), "anything", 3); results != nil {
		t.Fatalf("exhausted chain must yield nil, got %+v", results)
	}
}

func TestSearchCachesByNormalizedQuery(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "p", results: []contractx.SearchResult{{Title: "t", URL: "u"}}}
	s := NewSearchWithProviders(8, p)

	s.Search(context.Background(), "Go Channels", 3)
	s.Search(context.Background(), "  go channels ", 3)
	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1 (cache hit)", got)
	}

	// Different result budget is a different cache entry.
	s.Search(context.Background(), "go channels", 5)
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("provider called %d times, want 2", got)
	}
}

func TestSearchCachesNegativeResults(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "p", err: errors.New("down")}
	s := NewSearchWithProviders(8, p)

	s.Search(context.Background(), "q", 3)
	s.Search(context.Background(), "q", 3)
	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1 (negative cache)", got)
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "p", results: []contractx.SearchResult{
		{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"},
	}}
	s := NewSearchWithProviders(8, p)
	if got := s.Search(context.Background(), "q", 2); len(got) != 2 {
		t.Fatalf("results len = %d, want 2", len(got))
	}
}

func TestTavilyProviderParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"results":[{"title":"Backpressure","url":"https://a","content":"flow control"}]}`))
	}))
	defer srv.Close()

	p := newTavilyProvider("key", srv.URL, time.Second)
	results, err := p.Search(context.Background(), "backpressure", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Snippet != "flow control" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestTavilyProviderRequiresKey(t *testing.T) {
	t.Parallel()

	p := newTavilyProvider("", "", time.Second)
	if _, err := p.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDDGHTMLProviderParsesResults(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<div class="result">
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fdoc">Example Doc</a>
			<a class="result__snippet">A snippet about things.</a>
		</div>
		<div class="result">
			<a class="result__a" href="https://plain.example/page">Plain Link</a>
		</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := newDDGHTMLProvider(srv.URL, time.Second)
	results, err := p.Search(context.Background(), "example", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if results[0].URL != "https://example.com/doc" {
		t.Fatalf("uddg redirect not unwrapped: %s", results[0].URL)
	}
	if results[0].Title != "Example Doc" || results[0].Snippet != "A snippet about things." {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
}

func TestStackExchangeProviderParsesItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("site"); got != "stackoverflow" {
			t.Errorf("site = %s, want stackoverflow", got)
		}
		w.Write([]byte(`{"items":[{"title":"How do goroutines work?","link":"https://stackoverflow.com/q/1","is_answered":true,"tags":["go","concurrency"]}]}`))
	}))
	defer srv.Close()

	p := newStackExchangeProvider(srv.URL, time.Second)
	results, err := p.Search(context.Background(), "goroutines", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results len = %d, want 1", len(results))
	}
	if results[0].Snippet != "tags: go, concurrency (answered)" {
		t.Fatalf("unexpected snippet: %s", results[0].Snippet)
	}
}

func TestExecutorWebSearch(t *testing.T) {
	t.Parallel()

	searcher := NewSearchWithProviders(8, &fakeProvider{
		name:    "p",
		results: []contractx.SearchResult{{Title: "t", URL: "u", Snippet: "s"}},
	})
	executor := NewExecutor(contractx.AgentRoleInterviewer, searcher)

	out, err := executor(context.Background(), ToolWebSearch, map[string]any{"query": "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" || len(out.Results) != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}

	out, err = executor(context.Background(), ToolWebSearch, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("missing query must produce a tool error message")
	}

	out, err = executor(context.Background(), "unknown.tool", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("unknown tool must produce an unavailable message")
	}
}
