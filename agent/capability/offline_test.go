package capability

import (
	"context"
	"encoding/json"
	"testing"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

func TestOfflineIsDeterministic(t *testing.T) {
	t.Parallel()

	offline := NewOffline()
	payload := map[string]any{"user_message": "A goroutine is a lightweight thread managed by the runtime."}

	first, err := offline.Invoke(context.Background(), contractx.AgentRoleObserver, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := offline.Invoke(context.Background(), contractx.AgentRoleObserver, payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic output:\n%s\n%s", first, again)
		}
	}
}

func TestOfflineObserverGradesBySurface(t *testing.T) {
	t.Parallel()

	offline := NewOffline()
	cases := []struct {
		answer string
		want   contractx.Correctness
	}{
		{"I don't know", contractx.CorrectnessIncorrect},
		{"Indexes speed up reads.", contractx.CorrectnessPartially},
		{"An index is a separate sorted structure the database maintains so lookups avoid full table scans, at the cost of slower writes and extra storage space overall.", contractx.CorrectnessCorrect},
	}
	for _, tc := range cases {
		raw, err := offline.Invoke(context.Background(), contractx.AgentRoleObserver, map[string]any{"user_message": tc.answer})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var a contractx.ObserverAnalysis
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			t.Fatalf("observer output is not valid JSON: %v", err)
		}
		if a.Correctness != tc.want {
			t.Errorf("answer %q graded %s, want %s", tc.answer, a.Correctness, tc.want)
		}
	}
}

func TestOfflinePlannerFollowsSuggestion(t *testing.T) {
	t.Parallel()

	offline := NewOffline()
	raw, err := offline.Invoke(context.Background(), contractx.AgentRolePlanner, map[string]any{
		"suggested_topic_id":   "http_rest",
		"suggested_difficulty": 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p contractx.InterviewerPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("planner output is not valid JSON: %v", err)
	}
	if p.TopicID != "http_rest" || p.Difficulty != 3 {
		t.Fatalf("suggestion not followed: %+v", p)
	}
	if p.NextQuestion == "" {
		t.Fatal("planner must produce a question")
	}
}

func TestOfflineUnknownRole(t *testing.T) {
	t.Parallel()

	offline := NewOffline()
	if _, err := offline.Invoke(context.Background(), contractx.AgentRole("prophet"), nil); err == nil {
		t.Fatal("expected unknown role error")
	}
}
