package interview

import "strings"

// resourcesByKeyword backs the final feedback when the manager model
// returns no study resources. Matched on substrings of the reported gaps.
var resourcesByKeyword = []struct {
	keyword  string
	resource string
}{
	{"sql", "SQLBolt interactive lessons and the PostgreSQL tutorial on joins and indexes"},
	{"database", "Designing Data-Intensive Applications, ch. 1-3"},
	{"http", "MDN HTTP guide: methods, status codes, caching headers"},
	{"rest", "REST API Design Rulebook, plus the Stripe API reference as a worked example"},
	{"concurrency", "The language's official concurrency guide, then implement a worker pool from scratch"},
	{"design", "System Design Interview by Alex Xu, vol. 1"},
	{"test", "Working Effectively with Legacy Code, ch. on characterization tests"},
	{"git", "Pro Git, ch. 2-3 (branching and merging)"},
	{"oop", "Head First Design Patterns, the strategy and observer chapters"},
	{"cach", "Web caching chapter of High Performance Browser Networking"},
	{"security", "OWASP Top 10 overview and the auth section of your framework's docs"},
	{"performance", "Your runtime's profiling guide; profile one slow endpoint end to end"},
}

const defaultResource = "Pick the weakest topic from this interview and build a small project that exercises it."

// fillResources substitutes gap-matched study pointers when the model
// returned none.
func fillResources(gaps, resources []string) []string {
	if len(resources) > 0 {
		return resources
	}
	seen := make(map[string]bool, 4)
	var out []string
	for _, gap := range gaps {
		lower := strings.ToLower(gap)
		for _, entry := range resourcesByKeyword {
			if strings.Contains(lower, entry.keyword) && !seen[entry.resource] {
				seen[entry.resource] = true
				out = append(out, entry.resource)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, defaultResource)
	}
	return out
}
