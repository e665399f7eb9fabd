// Package translog builds and ships the post-session interview record.
// Nothing here runs on the hot turn path; sinks are invoked once, after
// the final feedback is produced.
package translog

import (
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
)

// Turn is one exchange as it appears in the exported record. Internal
// thoughts are included: the record is for the interviewer's side, not
// the candidate's.
type Turn struct {
	TurnID              int    `json:"turn_id"`
	AgentVisibleMessage string `json:"agent_visible_message"`
	UserMessage         string `json:"user_message"`
	InternalThoughts    string `json:"internal_thoughts"`
}

type Record struct {
	SessionID       string                  `json:"session_id"`
	ParticipantName string                  `json:"participant_name"`
	Position        string                  `json:"position"`
	Grade           string                  `json:"grade"`
	CreatedAtUTC    time.Time               `json:"created_at_utc"`
	Turns           []Turn                  `json:"turns"`
	FinalFeedback   contractx.FinalFeedback `json:"final_feedback"`
}

// BuildRecord flattens a finished session into the export shape.
func BuildRecord(st *statex.SessionState, feedback contractx.FinalFeedback, now time.Time) Record {
	turns := make([]Turn, 0, len(st.History))
	for _, t := range st.History {
		turns = append(turns, Turn{
			TurnID:              t.TurnID,
			AgentVisibleMessage: t.FinalMessage,
			UserMessage:         t.UserMessage,
			InternalThoughts:    t.InternalThoughts,
		})
	}
	return Record{
		SessionID:       st.SessionID,
		ParticipantName: st.Profile.Name,
		Position:        st.Profile.Position,
		Grade:           string(st.Profile.Grade),
		CreatedAtUTC:    now.UTC(),
		Turns:           turns,
		FinalFeedback:   feedback,
	}
}
