package interviewnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	parsex "github.com/tanpawarit/Interview-Coach-Agent/agent/parse"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

// PlanTurn selects the next topic deterministically, then lets the planner
// refine the decision. The planner's output is advisory: an unknown topic
// id or an out-of-range difficulty is corrected back to the deterministic
// selection before anything reaches the candidate.
func PlanTurn(ctx context.Context, in *GraphState, capability contractx.Capability) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	// The selected question is answered on the turn after the in-flight
	// one, so selection runs with that turn's index. The topic scored a
	// moment ago in RecordProgress carries LastAskedTurn equal to the
	// in-flight turn and lands exactly in the cooldown window.
	turnIndex := st.NextTurnID() + 1
	in.Selection = topicx.SelectNextTopic(st.Plan, st.Tracker.ProgressMap(), st.Difficulty, turnIndex)

	payload := map[string]any{
		"position":             st.Profile.Position,
		"grade":                string(st.Profile.Grade),
		"coverage":             st.Tracker.Snapshot(),
		"topics":               st.Tracker.ProgressMap(),
		"suggested_topic_id":   in.Selection.Topic.ID,
		"suggested_reason":     in.Selection.Reason,
		"suggested_difficulty": in.Selection.Difficulty,
		"analysis":             in.Analysis,
		"recent_context":       st.RecentQAText(),
	}

	raw, err := capability.Invoke(ctx, contractx.AgentRolePlanner, payload)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("planner invoke failed, using deterministic selection")
		raw = ""
	}

	in.Plan, in.PlanRoute = parsex.InterviewerPlan(raw, in.Selection.Topic.ID, in.Selection.Difficulty)
	validatePlan(in)
	return in, nil
}

func validatePlan(in *GraphState) {
	st := in.Session

	if !st.Plan.Contains(in.Plan.TopicID) {
		log.Debug().Str("session_id", in.SessionID).Str("topic_id", in.Plan.TopicID).Msg("planner chose unknown topic, substituting selection")
		in.Plan.TopicID = in.Selection.Topic.ID
		if in.Plan.NextQuestion == "" {
			in.Plan.NextQuestion = parsex.FallbackQuestion
		}
	}

	// Difficulty moves at most one step per turn.
	lo, hi := st.Difficulty-1, st.Difficulty+1
	if in.Plan.Difficulty < lo {
		in.Plan.Difficulty = lo
	} else if in.Plan.Difficulty > hi {
		in.Plan.Difficulty = hi
	}
	in.Plan.Difficulty = topicx.ClampDifficulty(in.Plan.Difficulty)

	// WRAP_UP is the branch's call, not the planner's; before coverage
	// targets are met it degrades to asking the selected topic.
	if in.Plan.NextAction == contractx.ActionWrapUp {
		in.Plan.NextAction = contractx.ActionAsk
		in.Plan.TopicID = in.Selection.Topic.ID
	}
}
