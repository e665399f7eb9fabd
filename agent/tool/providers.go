package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

const (
	defaultHTTPTimeout = 8 * time.Second
	maxResponseBytes   = 1 << 20
)

// Provider is one source in the search fallback chain. A provider may fail
// or return nothing; the chain decides what that means.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// tavilyProvider calls the Tavily REST API. Only active when a key is
// configured; the chain skips it otherwise.
type tavilyProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newTavilyProvider(apiKey, baseURL string, timeout time.Duration) *tavilyProvider {
	if baseURL == "" {
		baseURL = "https://api.tavily.com/search"
	}
	return &tavilyProvider{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (p *tavilyProvider) Name() string { return "tavily" }

func (p *tavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return nil, fmt.Errorf("tavily api key is not configured")
	}
	body, err := json.Marshal(map[string]any{
		"api_key":     p.apiKey,
		"query":       query,
		"max_results": maxResults,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	out := make([]contractx.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, contractx.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}

// ddgHTMLProvider scrapes the DuckDuckGo HTML endpoint. No key needed, so
// it is the first unauthenticated fallback.
type ddgHTMLProvider struct {
	baseURL string
	client  *http.Client
}

func newDDGHTMLProvider(baseURL string, timeout time.Duration) *ddgHTMLProvider {
	if baseURL == "" {
		baseURL = "https://html.duckduckgo.com/html/"
	}
	return &ddgHTMLProvider{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (p *ddgHTMLProvider) Name() string { return "duckduckgo_html" }

func (p *ddgHTMLProvider) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; interview-coach/1.0)")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var out []contractx.SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		if title == "" || href == "" {
			return true
		}
		out = append(out, contractx.SearchResult{Title: title, URL: resolveDDGHref(href), Snippet: snippet})
		return len(out) < maxResults
	})
	return out, nil
}

// resolveDDGHref unwraps the uddg redirect parameter DuckDuckGo puts in
// result links.
func resolveDDGHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// ddgAPIProvider hits the DuckDuckGo instant-answer JSON API. It mostly
// answers definitional queries; technical questions often come back empty,
// which the chain treats as a miss.
type ddgAPIProvider struct {
	baseURL string
	client  *http.Client
}

func newDDGAPIProvider(baseURL string, timeout time.Duration) *ddgAPIProvider {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com/"
	}
	return &ddgAPIProvider{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (p *ddgAPIProvider) Name() string { return "duckduckgo_api" }

func (p *ddgAPIProvider) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	q := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_redirect":   {"1"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		Heading       string `json:"Heading"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	var out []contractx.SearchResult
	if parsed.AbstractText != "" {
		out = append(out, contractx.SearchResult{
			Title:   parsed.Heading,
			URL:     parsed.AbstractURL,
			Snippet: parsed.AbstractText,
		})
	}
	for _, rt := range parsed.RelatedTopics {
		if len(out) >= maxResults {
			break
		}
		if rt.Text == "" || rt.FirstURL == "" {
			continue
		}
		out = append(out, contractx.SearchResult{Title: clipTitle(rt.Text), URL: rt.FirstURL, Snippet: rt.Text})
	}
	return out, nil
}

func clipTitle(text string) string {
	if i := strings.IndexAny(text, ".-"); i > 0 && i < 80 {
		return strings.TrimSpace(text[:i])
	}
	if len(text) > 80 {
		return text[:80]
	}
	return text
}

// searxProvider queries a SearXNG instance. Only active when an instance
// URL is configured.
type searxProvider struct {
	baseURL string
	client  *http.Client
}

func newSearxProvider(baseURL string, timeout time.Duration) *searxProvider {
	return &searxProvider{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (p *searxProvider) Name() string { return "searx" }

func (p *searxProvider) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	if strings.TrimSpace(p.baseURL) == "" {
		return nil, fmt.Errorf("searx instance url is not configured")
	}
	q := url.Values{"q": {query}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.baseURL, "/")+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	out := make([]contractx.SearchResult, 0, maxResults)
	for _, r := range parsed.Results {
		if len(out) >= maxResults {
			break
		}
		out = append(out, contractx.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}

// stackExchangeProvider is the last resort: the Stack Exchange search API
// scoped to Stack Overflow, which still answers most programming queries
// when general search is down.
type stackExchangeProvider struct {
	baseURL string
	client  *http.Client
}

func newStackExchangeProvider(baseURL string, timeout time.Duration) *stackExchangeProvider {
	if baseURL == "" {
		baseURL = "https://api.stackexchange.com/2.3/search/advanced"
	}
	return &stackExchangeProvider{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (p *stackExchangeProvider) Name() string { return "stackoverflow" }

func (p *stackExchangeProvider) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	q := url.Values{
		"order":    {"desc"},
		"sort":     {"relevance"},
		"q":        {query},
		"site":     {"stackoverflow"},
		"pagesize": {strconv.Itoa(maxResults)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Items []struct {
			Title      string   `json:"title"`
			Link       string   `json:"link"`
			IsAnswered bool     `json:"is_answered"`
			Tags       []string `json:"tags"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	out := make([]contractx.SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		snippet := "tags: " + strings.Join(item.Tags, ", ")
		if item.IsAnswered {
			snippet += " (answered)"
		}
		out = append(out, contractx.SearchResult{Title: item.Title, URL: item.Link, Snippet: snippet})
	}
	return out, nil
}
