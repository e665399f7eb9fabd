// Package parse turns raw generative output into well-typed wire objects.
// The policy trades strict correctness for availability: strict JSON first,
// then extraction of the first balanced object substring, then
// schema-specific defaults. It never returns an error for malformed text.
package parse

import (
	"encoding/json"
	"strings"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

// Route records which branch of the repair policy produced the object, so
// the orchestrator can trace recoveries without surfacing them to the user.
type Route string

const (
	RouteStrict    Route = "strict"
	RouteExtracted Route = "extracted"
	RouteDefaults  Route = "defaults"
)

// FallbackQuestion is the deterministic question substituted when no usable
// planner output can be obtained or a planned question is a repeat.
const FallbackQuestion = "Tell me about a difficult bug you fixed recently and how you approached it."

// StripFences removes a markdown code fence wrapper that models sometimes
// put around JSON output, including a dangling opening fence on truncated
// responses.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := s[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {") {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// FirstJSONObject scans for the first balanced top-level JSON object in s.
// The scanner is string- and escape-aware, so braces inside string literals
// do not affect the depth. Truncated objects report ok=false.
func FirstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// decode applies the strict-then-extract steps. ok=false means both failed
// and the caller must fall back to schema defaults.
func decode[T any](raw string, out *T) (Route, bool) {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return RouteStrict, true
	}
	if obj, found := FirstJSONObject(cleaned); found {
		if err := json.Unmarshal([]byte(obj), out); err == nil {
			return RouteExtracted, true
		}
	}
	return RouteDefaults, false
}

// ObserverAnalysis parses observer output. Malformed text or invalid fields
// degrade to conservative defaults (UNKNOWN correctness, zero score) instead
// of aborting the turn.
func ObserverAnalysis(raw string) (contractx.ObserverAnalysis, Route) {
	var a contractx.ObserverAnalysis
	route, ok := decode(raw, &a)
	if !ok {
		return defaultObserverAnalysis(), RouteDefaults
	}
	normalizeObserverAnalysis(&a)
	return a, route
}

func defaultObserverAnalysis() contractx.ObserverAnalysis {
	return contractx.ObserverAnalysis{
		Intent:      contractx.IntentNormalAnswer,
		Correctness: contractx.CorrectnessUnknown,
		Score:       0,
	}
}

func normalizeObserverAnalysis(a *contractx.ObserverAnalysis) {
	switch a.Intent {
	case contractx.IntentNormalAnswer, contractx.IntentOffTopic,
		contractx.IntentRoleReversal, contractx.IntentStop:
	default:
		a.Intent = contractx.IntentNormalAnswer
	}
	switch a.Correctness {
	case contractx.CorrectnessCorrect, contractx.CorrectnessPartially,
		contractx.CorrectnessIncorrect, contractx.CorrectnessUnknown:
	default:
		a.Correctness = contractx.CorrectnessUnknown
	}
	if a.Score < 0 {
		a.Score = 0
	} else if a.Score > 1 {
		a.Score = 1
	}
}

// InterviewerPlan parses planner output. The fallbackTopicID is the
// tracker's own selection, used when the plan is unusable.
func InterviewerPlan(raw, fallbackTopicID string, fallbackDifficulty int) (contractx.InterviewerPlan, Route) {
	var p contractx.InterviewerPlan
	route, ok := decode(raw, &p)
	if !ok {
		return defaultInterviewerPlan(fallbackTopicID, fallbackDifficulty), RouteDefaults
	}
	normalizeInterviewerPlan(&p, fallbackTopicID, fallbackDifficulty)
	return p, route
}

func defaultInterviewerPlan(topicID string, difficulty int) contractx.InterviewerPlan {
	return contractx.InterviewerPlan{
		NextAction:   contractx.ActionAsk,
		NextQuestion: FallbackQuestion,
		TopicID:      topicID,
		Difficulty:   difficulty,
	}
}

func normalizeInterviewerPlan(p *contractx.InterviewerPlan, fallbackTopicID string, fallbackDifficulty int) {
	switch p.NextAction {
	case contractx.ActionAsk, contractx.ActionClarify,
		contractx.ActionMoveOn, contractx.ActionWrapUp:
	default:
		p.NextAction = contractx.ActionAsk
	}
	if strings.TrimSpace(p.NextQuestion) == "" {
		p.NextQuestion = FallbackQuestion
	}
	if strings.TrimSpace(p.TopicID) == "" {
		p.TopicID = fallbackTopicID
	}
	if p.Difficulty < 1 || p.Difficulty > 5 {
		p.Difficulty = fallbackDifficulty
	}
}

// FinalFeedback parses hiring-manager output, degrading to a conservative
// NoHire-with-zero-confidence record when the output is unusable.
func FinalFeedback(raw string) (contractx.FinalFeedback, Route) {
	var f contractx.FinalFeedback
	route, ok := decode(raw, &f)
	if !ok {
		return defaultFinalFeedback(), RouteDefaults
	}
	normalizeFinalFeedback(&f)
	return f, route
}

func defaultFinalFeedback() contractx.FinalFeedback {
	return contractx.FinalFeedback{
		Decision:   contractx.DecisionNoHire,
		Confidence: 0,
	}
}

func normalizeFinalFeedback(f *contractx.FinalFeedback) {
	switch strings.ToUpper(strings.ReplaceAll(string(f.Decision), "_", "")) {
	case "STRONGHIRE":
		f.Decision = contractx.DecisionStrongHire
	case "HIRE":
		f.Decision = contractx.DecisionHire
	default:
		f.Decision = contractx.DecisionNoHire
	}
	if f.Confidence < 0 {
		f.Confidence = 0
	} else if f.Confidence > 1 {
		f.Confidence = 1
	}
}
