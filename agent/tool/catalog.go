package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

const ToolWebSearch = "web_search"

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// BuildForRole returns the tool catalog and executor for a generative role.
// Only the interviewer gets tools: it is the one role that may need fresh
// material for a follow-up question.
func BuildForRole(role contractx.AgentRole, searcher contractx.Searcher) ([]*schema.ToolInfo, Executor) {
	return infosForRole(role), NewExecutor(role, searcher)
}

func NewExecutor(role contractx.AgentRole, searcher contractx.Searcher) Executor {
	fallback := DefaultExecutor(role)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolWebSearch:
			return executeWebSearch(ctx, searcher, args)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func DefaultExecutor(role contractx.AgentRole) Executor {
	return func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for role=%s", tool, role),
		}, nil
	}
}

func executeWebSearch(ctx context.Context, searcher contractx.Searcher, args map[string]any) (contractx.ToolResult, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return contractx.ToolResult{Tool: ToolWebSearch, Error: "query argument is required"}, nil
	}
	maxResults := 0
	if v, ok := args["max_results"].(float64); ok {
		maxResults = int(v)
	}
	results := searcher.Search(ctx, query, maxResults)
	if len(results) == 0 {
		return contractx.ToolResult{Tool: ToolWebSearch, Error: "no results found"}, nil
	}
	return contractx.ToolResult{Tool: ToolWebSearch, Results: results}, nil
}

func infosForRole(role contractx.AgentRole) []*schema.ToolInfo {
	switch role {
	case contractx.AgentRoleInterviewer:
		return []*schema.ToolInfo{
			{
				Name: ToolWebSearch,
				Desc: "Search the web for up-to-date technical material to ground a question.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"query":       {Type: schema.String, Desc: "Search query", Required: true},
					"max_results": {Type: schema.Number, Desc: "Maximum number of results"},
				}),
			},
		}
	default:
		return nil
	}
}
