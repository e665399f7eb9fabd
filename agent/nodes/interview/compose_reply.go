package interviewnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	parsex "github.com/tanpawarit/Interview-Coach-Agent/agent/parse"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
)

// ComposeReply turns the validated plan into the visible message. The
// interviewer model rewords the planned question in its own voice; if the
// result duplicates an earlier question, a neutral fallback replaces it.
func ComposeReply(ctx context.Context, in *GraphState, capability contractx.Capability) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	payload := map[string]any{
		"candidate_name":  st.Profile.Name,
		"next_action":     string(in.Plan.NextAction),
		"next_question":   in.Plan.NextQuestion,
		"topic_id":        in.Plan.TopicID,
		"difficulty":      in.Plan.Difficulty,
		"feedback_points": feedbackPoints(in.Analysis),
		"recent_context":  st.RecentQAText(),
	}
	if in.Analysis.Intent == contractx.IntentRoleReversal {
		payload["candidate_question"] = in.Text
	}

	visible := in.Plan.NextQuestion
	raw, err := capability.Invoke(ctx, contractx.AgentRoleInterviewer, payload)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("interviewer invoke failed, using planned question verbatim")
	} else {
		composed, route := parsex.InterviewerPlan(raw, in.Plan.TopicID, in.Plan.Difficulty)
		if route != parsex.RouteDefaults && strings.TrimSpace(composed.NextQuestion) != "" {
			visible = composed.NextQuestion
		}
	}

	if st.QuestionAlreadyCovered(visible, in.Plan.TopicID) {
		log.Debug().Str("session_id", in.SessionID).Str("topic_id", in.Plan.TopicID).Msg("question duplicates an earlier one, using fallback")
		visible = fallbackQuestion(st, in.Plan.TopicID)
	}

	in.Visible = visible
	return in, nil
}

// fallbackQuestion substitutes a duplicate question. The topic-specific
// variant keeps consecutive substitutions from repeating verbatim; the
// shared fallback is the last resort once that variant has been asked too.
func fallbackQuestion(st *statex.SessionState, topicID string) string {
	if topic, ok := st.Plan.Topic(topicID); ok {
		alt := fmt.Sprintf("Let's take %s from a practical angle: walk me through a real problem you solved involving it, step by step.", topic.Title)
		if !st.QuestionAlreadyCovered(alt, topicID) {
			return alt
		}
	}
	return parsex.FallbackQuestion
}

func feedbackPoints(analysis contractx.ObserverAnalysis) []string {
	points := make([]string, 0, len(analysis.Gaps)+1)
	points = append(points, analysis.Gaps...)
	if strings.TrimSpace(analysis.FollowupHint) != "" {
		points = append(points, analysis.FollowupHint)
	}
	return points
}
