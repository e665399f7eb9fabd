package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

// Offline is a deterministic stand-in for the live capability. It answers
// every role from the payload alone, with no network access, so scenario
// replays and tests produce identical transcripts on every run.
type Offline struct{}

var _ contractx.Capability = (*Offline)(nil)

func NewOffline() *Offline { return &Offline{} }

func (o *Offline) Invoke(_ context.Context, role contractx.AgentRole, payload map[string]any) (string, error) {
	switch role {
	case contractx.AgentRoleObserver:
		return o.observe(payload)
	case contractx.AgentRolePlanner:
		return o.plan(payload)
	case contractx.AgentRoleInterviewer:
		return o.compose(payload)
	case contractx.AgentRoleManager:
		return o.review(payload)
	default:
		return "", fmt.Errorf("%w: role=%s", contractx.ErrUnknownRole, role)
	}
}

// observe grades purely on surface features of the answer. Crude, but
// stable: the same transcript always yields the same scores.
func (o *Offline) observe(payload map[string]any) (string, error) {
	answer := stringField(payload, "user_message")
	lower := strings.ToLower(answer)

	correctness := string(contractx.CorrectnessPartially)
	score := 0.5
	switch {
	case strings.Contains(lower, "don't know") || strings.Contains(lower, "no idea") || strings.Contains(lower, "не знаю"):
		correctness = string(contractx.CorrectnessIncorrect)
		score = 0.0
	case len(strings.Fields(answer)) >= 20:
		correctness = string(contractx.CorrectnessCorrect)
		score = 1.0
	}

	out := contractx.ObserverAnalysis{
		Intent:       contractx.IntentNormalAnswer,
		Correctness:  contractx.Correctness(correctness),
		Score:        score,
		Strengths:    []string{"attempted the question"},
		Gaps:         []string{"depth not assessed in offline mode"},
		InternalMemo: "offline heuristic grading",
	}
	return marshal(out)
}

func (o *Offline) plan(payload map[string]any) (string, error) {
	topicID := stringField(payload, "suggested_topic_id")
	difficulty := intField(payload, "suggested_difficulty", 2)

	out := contractx.InterviewerPlan{
		NextAction:   contractx.ActionAsk,
		NextQuestion: fmt.Sprintf("Explain the core concepts of %s and walk me through how you have applied them.", strings.ReplaceAll(topicID, "_", " ")),
		TopicID:      topicID,
		Difficulty:   difficulty,
		InternalMemo: "offline plan follows the suggested topic",
	}
	return marshal(out)
}

// compose echoes the planned question verbatim so replayed transcripts
// stay byte-stable.
func (o *Offline) compose(payload map[string]any) (string, error) {
	out := contractx.InterviewerPlan{
		NextAction:   contractx.NextAction(stringField(payload, "next_action")),
		NextQuestion: stringField(payload, "next_question"),
		TopicID:      stringField(payload, "topic_id"),
		Difficulty:   intField(payload, "difficulty", 2),
		InternalMemo: "offline compose passthrough",
	}
	if out.NextAction == "" {
		out.NextAction = contractx.ActionAsk
	}
	return marshal(out)
}

func (o *Offline) review(payload map[string]any) (string, error) {
	avg := floatField(payload, "average_score")

	decision := contractx.DecisionNoHire
	switch {
	case avg >= 0.9:
		decision = contractx.DecisionStrongHire
	case avg >= 0.75:
		decision = contractx.DecisionHire
	}

	out := contractx.FinalFeedback{
		Decision:   decision,
		Confidence: 0.5,
		Strengths:  []string{"completed the interview"},
		Gaps:       []string{"offline mode cannot judge answer depth"},
		Resources:  []string{"review the fundamentals of every topic scored below 0.7"},
	}
	return marshal(out)
}

func marshal(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: marshal offline response: %v", contractx.ErrModelInvoke, err)
	}
	return string(raw), nil
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func intField(payload map[string]any, key string, fallback int) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func floatField(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
