package interviewnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

// RecordProgress folds the observer's score into the tracker and decides
// whether this turn ends the interview. Only answer attempts are scored;
// off-topic chatter and counter-questions leave the topic stats untouched.
func RecordProgress(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	turnID := st.NextTurnID()

	if in.Analysis.Intent == contractx.IntentNormalAnswer && st.CurrentTopicID != "" {
		if err := st.Tracker.RecordProgress(st.CurrentTopicID, in.Analysis.Score, turnID); err != nil {
			log.Warn().Str("session_id", in.SessionID).Str("topic_id", st.CurrentTopicID).Err(err).Msg("progress not recorded")
		}
		st.ExtractFacts(in.Text)
	}

	if in.Analysis.Intent == contractx.IntentStop {
		in.WrapRequested = true
	}

	snapshot := st.Tracker.Snapshot()
	rules := st.Plan.Rules
	if snapshot.TargetsMet(rules) || turnID >= rules.MaxTurns {
		in.WrapRequested = true
	}

	return in, nil
}

// ShouldWrapUp is the branch condition after progress recording.
func ShouldWrapUp(in *GraphState) bool {
	return in != nil && in.WrapRequested
}
