// Package interviewnode holds the lambda-node functions of the turn graph.
// Each node takes the shared GraphState, does one thing, and passes it on;
// the graph wiring lives with the orchestrator.
package interviewnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	parsex "github.com/tanpawarit/Interview-Coach-Agent/agent/parse"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply  string
	TurnID int
	WrapUp bool
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState

	Analysis      contractx.ObserverAnalysis
	AnalysisRoute parsex.Route
	Selection     topicx.Selection
	Plan          contractx.InterviewerPlan
	PlanRoute     parsex.Route

	WrapRequested bool
	Visible       string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
