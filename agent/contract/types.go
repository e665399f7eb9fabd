package contract

import (
	"fmt"
	"regexp"
	"strings"

	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

type AgentRole string

const (
	AgentRoleObserver    AgentRole = "observer"
	AgentRolePlanner     AgentRole = "planner"
	AgentRoleInterviewer AgentRole = "interviewer"
	AgentRoleManager     AgentRole = "manager"
)

// Intent is the observer's classification of the candidate's last message.
type Intent string

const (
	IntentNormalAnswer Intent = "NORMAL_ANSWER"
	IntentOffTopic     Intent = "OFF_TOPIC"
	IntentRoleReversal Intent = "ROLE_REVERSAL"
	IntentStop         Intent = "STOP"
)

type Correctness string

const (
	CorrectnessCorrect   Correctness = "CORRECT"
	CorrectnessPartially Correctness = "PARTIALLY"
	CorrectnessIncorrect Correctness = "INCORRECT"
	CorrectnessUnknown   Correctness = "UNKNOWN"
)

// AnalysisFlags carries safety signals the observer raises on an answer.
type AnalysisFlags struct {
	PromptInjection bool `json:"prompt_injection"`
	Controversial   bool `json:"controversial"`
}

// ObserverAnalysis is the observer role's wire schema. Field names and enum
// values are part of the generative boundary contract and must round-trip
// unchanged.
type ObserverAnalysis struct {
	Intent       Intent        `json:"intent"`
	Correctness  Correctness   `json:"correctness"`
	Score        float64       `json:"score"` // normalized 0..1
	Strengths    []string      `json:"strengths,omitempty"`
	Gaps         []string      `json:"gaps,omitempty"`
	FollowupHint string        `json:"followup_hint,omitempty"`
	Flags        AnalysisFlags `json:"flags"`
	InternalMemo string        `json:"internal_memo,omitempty"`
}

type NextAction string

const (
	ActionAsk     NextAction = "ASK"
	ActionClarify NextAction = "CLARIFY"
	ActionMoveOn  NextAction = "MOVE_ON"
	ActionWrapUp  NextAction = "WRAP_UP"
)

// InterviewerPlan is the planner role's wire schema. TopicID must reference
// a topic present in the session plan; the orchestrator substitutes its own
// selection otherwise.
type InterviewerPlan struct {
	NextAction   NextAction `json:"next_action"`
	NextQuestion string     `json:"next_question"`
	TopicID      string     `json:"topic_id"`
	Difficulty   int        `json:"difficulty"`
	InternalMemo string     `json:"internal_memo,omitempty"`
}

type Decision string

const (
	DecisionStrongHire Decision = "StrongHire"
	DecisionHire       Decision = "Hire"
	DecisionNoHire     Decision = "NoHire"
)

// FinalFeedback is the hiring-manager role's wire schema, produced once per
// session during wrap-up.
type FinalFeedback struct {
	Decision   Decision                `json:"decision"`
	Confidence float64                 `json:"confidence"` // 0..1
	Strengths  []string                `json:"strengths"`
	Gaps       []string                `json:"gaps"`
	Resources  []string                `json:"resources"`
	Coverage   topicx.CoverageSnapshot `json:"coverage"`
}

type Grade string

const (
	GradeJunior Grade = "Junior"
	GradeMiddle Grade = "Middle"
	GradeSenior Grade = "Senior"
)

// ParseGrade normalizes free-form grade input. Unrecognized values are
// reported so the caller can fall back to the default topic subset.
func ParseGrade(s string) (Grade, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior", "jun":
		return GradeJunior, true
	case "middle", "mid":
		return GradeMiddle, true
	case "senior", "sen":
		return GradeSenior, true
	}
	return "", false
}

// Profile describes the candidate. Experience is free text with optional
// numeric years ("3 года", "about 8 years").
type Profile struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Grade      Grade  `json:"grade"`
	Experience string `json:"experience"`
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: participant name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Position) == "" {
		return fmt.Errorf("%w: position is required", ErrValidation)
	}
	if strings.TrimSpace(string(p.Grade)) == "" {
		return fmt.Errorf("%w: grade is required", ErrValidation)
	}
	return nil
}

var yearsRe = regexp.MustCompile(`\d+`)

// ExperienceYears extracts the first integer from the free-text experience
// field. Returns -1 when no number is present.
func (p Profile) ExperienceYears() int {
	m := yearsRe.FindString(p.Experience)
	if m == "" {
		return -1
	}
	years := 0
	for _, ch := range m {
		years = years*10 + int(ch-'0')
	}
	return years
}

// SearchResult is one hit from the web-search fallback chain.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ToolResult is the envelope a tool call returns to the model. Error is a
// message the model can read, not a Go error: tool failures are data.
type ToolResult struct {
	Tool    string         `json:"tool"`
	Results []SearchResult `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
}
