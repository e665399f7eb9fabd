// Package tool implements the web-search fallback chain and the tool
// catalog exposed to the interviewer model.
package tool

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

const (
	defaultMaxResults = 3
	defaultCacheSize  = 128
)

// Config is the search-chain configuration, loaded under the SEARCH prefix.
type Config struct {
	TavilyAPIKey string        `split_words:"true"`
	SearxURL     string        `split_words:"true"`
	MaxResults   int           `split_words:"true" default:"3"`
	CacheSize    int           `split_words:"true" default:"128"`
	Timeout      time.Duration `split_words:"true" default:"8s"`
}

// Search walks a fixed provider chain until one of them returns results.
// By contract it never fails: errors and empty responses both mean "try
// the next provider", and exhausting the chain yields an empty slice.
type Search struct {
	providers []Provider
	cache     *queryCache
}

var _ contractx.Searcher = (*Search)(nil)

// NewSearch wires the full chain in fallback order. Key-gated providers
// stay in the chain and fail fast when unconfigured.
func NewSearch(cfg Config) *Search {
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Search{
		providers: []Provider{
			newTavilyProvider(cfg.TavilyAPIKey, "", cfg.Timeout),
			newDDGHTMLProvider("", cfg.Timeout),
			newDDGAPIProvider("", cfg.Timeout),
			newSearxProvider(cfg.SearxURL, cfg.Timeout),
			newStackExchangeProvider("", cfg.Timeout),
		},
		cache: newQueryCache(cacheSize),
	}
}

// NewSearchWithProviders builds a chain over an explicit provider list.
func NewSearchWithProviders(cacheSize int, providers ...Provider) *Search {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Search{providers: providers, cache: newQueryCache(cacheSize)}
}

func (s *Search) Search(ctx context.Context, query string, maxResults int) []contractx.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	key := cacheKey(query, maxResults)
	if hit, ok := s.cache.get(key); ok {
		return hit
	}

	for _, p := range s.providers {
		results, err := p.Search(ctx, query, maxResults)
		if err != nil {
			log.Debug().Str("provider", p.Name()).Err(err).Msg("search provider failed, falling through")
			continue
		}
		if len(results) == 0 {
			continue
		}
		if len(results) > maxResults {
			results = results[:maxResults]
		}
		s.cache.put(key, results)
		log.Debug().Str("provider", p.Name()).Int("results", len(results)).Msg("search resolved")
		return results
	}

	// Negative results are cached too: a query the whole chain missed will
	// miss again within the same session.
	s.cache.put(key, nil)
	return nil
}

func cacheKey(query string, maxResults int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(query), maxResults)
}

// queryCache is a small LRU keyed by normalized query.
type queryCache struct {
	mu      sync.Mutex
	cap     int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key     string
	results []contractx.SearchResult
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{
		cap:     capacity,
		order:   list.New(),
		entries: make(map[string]*list.Element, capacity),
	}
}

func (c *queryCache) get(key string) ([]contractx.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).results, true
}

func (c *queryCache) put(key string, results []contractx.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).results = results
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, results: results})
	for c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
