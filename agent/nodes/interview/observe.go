package interviewnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	parsex "github.com/tanpawarit/Interview-Coach-Agent/agent/parse"
)

// Observe grades the candidate's message against the question on the floor.
// A failed model call degrades to the default analysis instead of failing
// the turn: a grading outage must not end the interview.
func Observe(ctx context.Context, in *GraphState, capability contractx.Capability) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	payload := map[string]any{
		"question":       in.Session.LastQuestion,
		"user_message":   in.Text,
		"topic_id":       in.Session.CurrentTopicID,
		"position":       in.Session.Profile.Position,
		"grade":          string(in.Session.Profile.Grade),
		"recent_context": in.Session.RecentQAText(),
		"known_facts":    in.Session.KnownFactsText(),
	}

	raw, err := capability.Invoke(ctx, contractx.AgentRoleObserver, payload)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("observer invoke failed, using default analysis")
		raw = ""
	}

	in.Analysis, in.AnalysisRoute = parsex.ObserverAnalysis(raw)
	if in.AnalysisRoute != parsex.RouteStrict {
		log.Debug().Str("session_id", in.SessionID).Str("route", string(in.AnalysisRoute)).Msg("observer output needed repair")
	}
	return in, nil
}
