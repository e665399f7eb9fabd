package contract

import "context"

// Capability is the single generative boundary. A role-specific prompt and
// schema are selected from the role; the payload is serialized context. The
// returned text is expected, but not trusted, to be one JSON object matching
// the role's schema; parsing and repair happen on the caller's side.
type Capability interface {
	Invoke(ctx context.Context, role AgentRole, payload map[string]any) (string, error)
}

// Searcher is the web-search fallback chain. It never fails: exhausting
// every provider yields an empty slice.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []SearchResult
}
