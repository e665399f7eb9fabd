// Package scenario replays a scripted list of candidate messages through
// the orchestrator. Combined with the offline capability it gives fully
// reproducible end-to-end transcripts.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	interviewx "github.com/tanpawarit/Interview-Coach-Agent/agent/agents/interview"
	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

// Load reads a scenario file: either a bare JSON array of messages or an
// object with a "messages" field. Blank entries are dropped.
func Load(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]string, error) {
	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return compact(bare), nil
	}

	var wrapped struct {
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("scenario: not a message array or {\"messages\": [...]}: %w", err)
	}
	return compact(wrapped.Messages), nil
}

func compact(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Exchange pairs a scripted message with the agent's reply.
type Exchange struct {
	UserMessage string
	Reply       string
	Done        bool
}

// Run starts a session and feeds every scripted message in order. The
// replay stops early when the interview wraps up; remaining messages are
// dropped with the session already done.
func Run(ctx context.Context, orch *interviewx.Orchestrator, sessionID string, profile contractx.Profile, messages []string) ([]Exchange, error) {
	opening, err := orch.StartSession(ctx, sessionID, profile)
	if err != nil {
		return nil, err
	}
	exchanges := []Exchange{{Reply: opening}}

	for _, msg := range messages {
		out, err := orch.HandleMessage(ctx, sessionID, msg)
		if err != nil {
			return exchanges, err
		}
		exchanges = append(exchanges, Exchange{UserMessage: msg, Reply: out.Reply, Done: out.Done})
		if out.Done {
			break
		}
	}
	return exchanges, nil
}
