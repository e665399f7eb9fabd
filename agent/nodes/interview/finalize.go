package interviewnode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

const closingLine = "That covers everything I wanted to ask. Give me a moment to put the feedback together."

// FinalizeTurn commits the completed exchange to the session and produces
// the graph output for a regular turn.
func FinalizeTurn(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	turnID := st.NextTurnID()

	st.RecordTurn(statex.ConversationTurn{
		TurnID:           turnID,
		Question:         st.LastQuestion,
		UserMessage:      in.Text,
		Analysis:         in.Analysis,
		Plan:             in.Plan,
		FinalMessage:     in.Visible,
		InternalThoughts: internalThoughts(in),
	}, in.Now)

	st.CurrentTopicID = in.Plan.TopicID
	st.LastQuestion = in.Visible
	st.Difficulty = topicx.ClampDifficulty(in.Plan.Difficulty)

	return GraphOutput{Reply: in.Visible, TurnID: turnID}, nil
}

// FinalizeWrapUp closes out the last exchange without planning another
// question. The final feedback itself is the orchestrator's job; the graph
// only hands over a transition line.
func FinalizeWrapUp(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	turnID := st.NextTurnID()

	st.RecordTurn(statex.ConversationTurn{
		TurnID:           turnID,
		Question:         st.LastQuestion,
		UserMessage:      in.Text,
		Analysis:         in.Analysis,
		FinalMessage:     closingLine,
		InternalThoughts: internalThoughts(in),
	}, in.Now)

	st.Phase = statex.PhaseWrappingUp
	st.LastQuestion = ""

	return GraphOutput{Reply: closingLine, TurnID: turnID, WrapUp: true}, nil
}

func internalThoughts(in *GraphState) string {
	var parts []string
	if memo := strings.TrimSpace(in.Analysis.InternalMemo); memo != "" {
		parts = append(parts, "[Observer]: "+memo)
	}
	if reason := strings.TrimSpace(in.Selection.Reason); reason != "" {
		parts = append(parts, "[Selector]: "+reason)
	}
	if memo := strings.TrimSpace(in.Plan.InternalMemo); memo != "" {
		parts = append(parts, "[Planner]: "+memo)
	}
	return strings.Join(parts, " ")
}
