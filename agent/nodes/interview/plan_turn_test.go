package interviewnode

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

// stubCapability returns a fixed payload or error for every role.
type stubCapability struct {
	raw string
	err error
}

func (s *stubCapability) Invoke(context.Context, contractx.AgentRole, map[string]any) (string, error) {
	return s.raw, s.err
}

func middleSession(t *testing.T) *statex.SessionState {
	t.Helper()
	profile := contractx.Profile{
		Name:       "Dana",
		Position:   "Backend Developer",
		Grade:      contractx.GradeMiddle,
		Experience: "4 years",
	}
	plan := topicx.Build(topicx.BuildInput{
		Position:        profile.Position,
		Grade:           string(profile.Grade),
		ExperienceYears: 4,
		ExperienceText:  profile.Experience,
	})
	tracker := topicx.NewTracker(plan, 0.7)
	return statex.NewSessionState("s-1", profile, plan, tracker, 3, 32, 4, time.Unix(1700000000, 0))
}

func TestPlanTurnSkipsJustAnsweredTopic(t *testing.T) {
	t.Parallel()

	st := middleSession(t)
	now := time.Unix(1700000000, 0)

	// One decent answer per must topic, recorded the way the orchestrator
	// records them: score at NextTurnID, then append the turn.
	var first string
	for _, topic := range st.Plan.Topics {
		if !topic.Must {
			continue
		}
		if first == "" {
			first = topic.ID
		}
		turnID := st.NextTurnID()
		if err := st.Tracker.RecordProgress(topic.ID, 0.8, turnID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		st.RecordTurn(statex.ConversationTurn{
			TurnID:      turnID,
			Question:    fmt.Sprintf("Question %d about %s", turnID, topic.ID),
			UserMessage: "a reasonable answer",
			Plan:        contractx.InterviewerPlan{TopicID: topic.ID},
		}, now)
	}

	// The next exchange tanks the first topic. Its average is now the
	// lowest in the plan, but it was asked a moment ago and must rest for
	// a turn before being probed again.
	st.CurrentTopicID = first
	in := &GraphState{
		SessionID: "s-1",
		Text:      "I do not remember, sorry.",
		Now:       now,
		Session:   st,
		Analysis: contractx.ObserverAnalysis{
			Intent:      contractx.IntentNormalAnswer,
			Correctness: contractx.CorrectnessIncorrect,
			Score:       0,
		},
	}
	if _, err := RecordProgress(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := PlanTurn(context.Background(), in, &stubCapability{err: errors.New("model down")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.Selection.Topic.ID == first {
		t.Fatalf("topic %s was re-selected immediately after being answered", first)
	}
	if in.Plan.TopicID == first {
		t.Fatalf("plan targets %s immediately after it was answered", first)
	}
}
