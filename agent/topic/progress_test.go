package topic

import (
	"testing"
)

func middlePlan() *Plan {
	return Build(BuildInput{Position: "Backend Developer", Grade: "Middle"})
}

func TestRecordProgressRunningAverage(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	tr := NewTracker(plan, 0.7)
	topicID := plan.Topics[0].ID

	if err := tr.RecordProgress(topicID, 1.0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.RecordProgress(topicID, 0.5, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := tr.Progress(topicID)
	if p.AskedCount != 2 {
		t.Fatalf("asked count = %d, want 2", p.AskedCount)
	}
	if p.AvgScore != 0.75 {
		t.Fatalf("avg = %v, want 0.75", p.AvgScore)
	}
	if p.LastAskedTurn != 2 {
		t.Fatalf("last asked turn = %d, want 2", p.LastAskedTurn)
	}
}

func TestRecordProgressUnknownTopic(t *testing.T) {
	t.Parallel()

	tr := NewTracker(middlePlan(), 0.7)
	if err := tr.RecordProgress("no_such_topic", 1.0, 1); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}

func TestRecordProgressClampsScore(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	tr := NewTracker(plan, 0.7)
	topicID := plan.Topics[0].ID

	if err := tr.RecordProgress(topicID, 7.5, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.Progress(topicID).AvgScore; got != 1.0 {
		t.Fatalf("avg = %v, want clamped 1.0", got)
	}
}

func TestCoverageIsMonotonic(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	tr := NewTracker(plan, 0.7)
	topicID := plan.Topics[0].ID

	// Cover the topic with strong answers, then tank it. Counts-based
	// coverage never goes back down.
	turn := 1
	for i := 0; i < plan.Topics[0].MinQuestions; i++ {
		if err := tr.RecordProgress(topicID, 1.0, turn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		turn++
	}
	covered := tr.Snapshot().OverallPercent
	if covered == 0 {
		t.Fatal("expected non-zero coverage after covering a topic")
	}
	if tr.Progress(topicID).Status != StatusCovered {
		t.Fatalf("status = %s, want covered", tr.Progress(topicID).Status)
	}

	for i := 0; i < 5; i++ {
		if err := tr.RecordProgress(topicID, 0.0, turn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		turn++
	}
	if got := tr.Snapshot().OverallPercent; got < covered {
		t.Fatalf("coverage regressed: %v -> %v", covered, got)
	}
	if tr.Progress(topicID).Status != StatusCovered {
		t.Fatal("covered status must not regress")
	}
}

func TestSelectNextTopicPrefersMust(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	sel := SelectNextTopic(plan, map[string]Progress{}, 3, 1)
	if !sel.Topic.Must {
		t.Fatalf("first selection should be a must topic, got %s", sel.Topic.ID)
	}
	if sel.Reason == "" {
		t.Fatal("selection reason must be set")
	}
}

func TestSelectNextTopicIsPure(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	progress := map[string]Progress{
		plan.Topics[0].ID: {AskedCount: 1, AvgScore: 0.5, Status: StatusInProgress, LastAskedTurn: 1},
	}

	a := SelectNextTopic(plan, progress, 3, 2)
	for i := 0; i < 10; i++ {
		b := SelectNextTopic(plan, progress, 3, 2)
		if a.Topic.ID != b.Topic.ID || a.Difficulty != b.Difficulty {
			t.Fatalf("selection not deterministic: %s/%d vs %s/%d", a.Topic.ID, a.Difficulty, b.Topic.ID, b.Difficulty)
		}
	}
}

func TestSelectNextTopicCooldown(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	progress := map[string]Progress{
		plan.Topics[0].ID: {AskedCount: 1, AvgScore: 0.1, Status: StatusInProgress, LastAskedTurn: 3},
	}

	// Topic 0 has the lowest average and would sort first, but it was
	// asked on the immediately preceding turn.
	sel := SelectNextTopic(plan, progress, 3, 4)
	if sel.Topic.ID == plan.Topics[0].ID {
		t.Fatalf("cooldown violated: reselected %s", sel.Topic.ID)
	}
}

func TestSelectNextTopicCooldownYieldsWhenOnlyOption(t *testing.T) {
	t.Parallel()

	plan := middlePlan()
	progress := map[string]Progress{}
	turn := 1
	// Cover everything except one topic.
	for _, topic := range plan.Topics[:len(plan.Topics)-1] {
		progress[topic.ID] = Progress{AskedCount: topic.MinQuestions, AvgScore: 1.0, Status: StatusCovered, LastAskedTurn: turn}
		turn++
	}
	lastTopic := plan.Topics[len(plan.Topics)-1]
	progress[lastTopic.ID] = Progress{AskedCount: 1, AvgScore: 0.5, Status: StatusInProgress, LastAskedTurn: turn}

	sel := SelectNextTopic(plan, progress, 3, turn+1)
	if sel.Topic.ID != lastTopic.ID {
		t.Fatalf("expected the only open topic %s, got %s", lastTopic.ID, sel.Topic.ID)
	}
}

func TestSeniorOpeningPrefersDepthTopics(t *testing.T) {
	t.Parallel()

	plan := Build(BuildInput{Position: "Backend Developer", Grade: "Senior"})
	sel := SelectNextTopic(plan, map[string]Progress{}, 4, 1)

	if !hasAnyKeyword(sel.Topic, []string{"design", "concurrency"}) {
		t.Fatalf("senior opener should hit a depth topic, got %s (keywords %v)", sel.Topic.ID, sel.Topic.Keywords)
	}
}

func TestSuggestDifficulty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		base int
		p    Progress
		want int
	}{
		{"unasked keeps base", 3, Progress{}, 3},
		{"strong pushes deeper", 3, Progress{AskedCount: 2, AvgScore: 0.8}, 4},
		{"weak eases off", 3, Progress{AskedCount: 2, AvgScore: 0.3}, 2},
		{"middling keeps base", 3, Progress{AskedCount: 2, AvgScore: 0.6}, 3},
		{"clamped at top", 5, Progress{AskedCount: 1, AvgScore: 1.0}, 5},
		{"clamped at bottom", 1, Progress{AskedCount: 1, AvgScore: 0.0}, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SuggestDifficulty(tc.base, tc.p); got != tc.want {
				t.Fatalf("SuggestDifficulty(%d, %+v) = %d, want %d", tc.base, tc.p, got, tc.want)
			}
		})
	}
}
