package topic

import (
	"fmt"
	"sort"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCovered    Status = "covered"
)

// Progress is the mutable per-topic record. Created lazily on first mention,
// never deleted. Status only moves forward: pending -> in_progress -> covered.
type Progress struct {
	AskedCount    int     `json:"asked_count"`
	ScoreSum      float64 `json:"score_sum"`
	AvgScore      float64 `json:"avg_score"`
	Status        Status  `json:"status"`
	LastAskedTurn int     `json:"last_asked_turn"`
}

// CoverageSnapshot is derived from the whole plan after every recorded turn.
// Percent values are 0..100.
type CoverageSnapshot struct {
	MustPercent    float64 `json:"must_percent"`
	OverallPercent float64 `json:"overall_percent"`
	MustCovered    int     `json:"must_covered"`
	MustTotal      int     `json:"must_total"`
	OverallCovered int     `json:"overall_covered"`
	OverallTotal   int     `json:"overall_total"`
}

// TargetsMet reports whether both coverage targets from the plan rules are
// reached.
func (c CoverageSnapshot) TargetsMet(rules PlanRules) bool {
	return c.MustPercent >= rules.MustTargetPercent && c.OverallPercent >= rules.OverallTargetPercent
}

// Tracker maintains per-topic progress and the derived coverage snapshot for
// one session. Not safe for concurrent use; the orchestrator is the single
// owner.
type Tracker struct {
	plan             *Plan
	stats            map[string]*Progress
	coveredThreshold float64
	snapshot         CoverageSnapshot
}

// NewTracker builds a tracker over a plan. coveredThreshold is the minimum
// average score (0..1) a topic needs, in addition to its question count, to
// count as covered.
func NewTracker(plan *Plan, coveredThreshold float64) *Tracker {
	t := &Tracker{
		plan:             plan,
		stats:            make(map[string]*Progress, len(plan.Topics)),
		coveredThreshold: coveredThreshold,
	}
	t.recalc()
	return t
}

func (t *Tracker) Plan() *Plan { return t.plan }

func (t *Tracker) progress(topicID string) *Progress {
	p, ok := t.stats[topicID]
	if !ok {
		p = &Progress{Status: StatusPending, LastAskedTurn: -1}
		t.stats[topicID] = p
	}
	return p
}

// Progress returns a copy of the per-topic record (zero value with pending
// status for a topic never touched).
func (t *Tracker) Progress(topicID string) Progress {
	if p, ok := t.stats[topicID]; ok {
		return *p
	}
	return Progress{Status: StatusPending, LastAskedTurn: -1}
}

// ProgressMap returns a copy of all per-topic records keyed by topic id,
// including pending zero records for untouched topics.
func (t *Tracker) ProgressMap() map[string]Progress {
	out := make(map[string]Progress, len(t.plan.Topics))
	for _, tp := range t.plan.Topics {
		out[tp.ID] = t.Progress(tp.ID)
	}
	return out
}

// Snapshot returns the coverage derived after the last recorded turn.
func (t *Tracker) Snapshot() CoverageSnapshot { return t.snapshot }

// RecordProgress applies one scored question to a topic: bumps the asked
// count, updates the running average, recomputes the topic status, then the
// plan-wide snapshot. Score is normalized 0..1. Unknown topic ids are
// rejected so coverage math never drifts from the plan.
func (t *Tracker) RecordProgress(topicID string, score float64, turn int) error {
	if !t.plan.Contains(topicID) {
		return fmt.Errorf("topic %q is not in the plan", topicID)
	}
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	p := t.progress(topicID)
	p.AskedCount++
	p.ScoreSum += score
	p.AvgScore = p.ScoreSum / float64(p.AskedCount)
	p.LastAskedTurn = turn

	t.recalc()
	return nil
}

// recalc recomputes every topic status and the coverage snapshot. Statuses
// only move forward, which keeps both percentages non-decreasing.
func (t *Tracker) recalc() {
	snap := CoverageSnapshot{}
	for _, tp := range t.plan.Topics {
		p := t.progress(tp.ID)
		if p.Status != StatusCovered {
			if p.AskedCount >= tp.MinQuestions && p.AvgScore >= t.coveredThreshold {
				p.Status = StatusCovered
			} else if p.AskedCount > 0 {
				p.Status = StatusInProgress
			}
		}

		snap.OverallTotal++
		if tp.Must {
			snap.MustTotal++
		}
		if p.Status == StatusCovered {
			snap.OverallCovered++
			if tp.Must {
				snap.MustCovered++
			}
		}
	}
	if snap.MustTotal > 0 {
		snap.MustPercent = 100 * float64(snap.MustCovered) / float64(snap.MustTotal)
	} else {
		snap.MustPercent = 100
	}
	if snap.OverallTotal > 0 {
		snap.OverallPercent = 100 * float64(snap.OverallCovered) / float64(snap.OverallTotal)
	}
	t.snapshot = snap
}

// Selection is the tracker's own choice of what to probe next.
type Selection struct {
	Topic      Topic
	Reason     string
	Difficulty int
}

// SelectNextTopic picks the next topic to probe. Pure: identical inputs
// always yield the identical topic id.
//
// Ordering: must topics still pending/in_progress first (pending before
// in_progress, then lowest average score, then lowest asked count, then plan
// order); optional topics by the same ordering once every must topic is
// covered. A topic asked on the immediately preceding turn is skipped unless
// it is the only eligible one. On a Senior plan's first two turns, eligible
// must topics tagged with design/concurrency keywords are preferred.
func SelectNextTopic(plan *Plan, progress map[string]Progress, difficulty, turnIndex int) Selection {
	pool := openTopics(plan, progress, true)
	if len(pool) == 0 {
		pool = openTopics(plan, progress, false)
	}
	if len(pool) == 0 {
		// Everything covered; fall back to the full plan so a caller that
		// has not yet observed the stop condition still gets a topic.
		pool = append(pool, plan.Topics...)
	}

	if strings.EqualFold(plan.Grade, "senior") && turnIndex <= 2 {
		if deep := filterByKeywords(pool, "design", "concurrency"); len(deep) > 0 {
			pool = deep
		}
	}

	if cooled := withoutLastTurn(pool, progress, turnIndex); len(cooled) > 0 {
		pool = cooled
	}

	sorted := append([]Topic(nil), pool...)
	order := planOrder(plan)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi := progressOrZero(progress, sorted[i].ID)
		pj := progressOrZero(progress, sorted[j].ID)
		if pi.Status != pj.Status {
			return statusRank(pi.Status) < statusRank(pj.Status)
		}
		if pi.AvgScore != pj.AvgScore {
			return pi.AvgScore < pj.AvgScore
		}
		if pi.AskedCount != pj.AskedCount {
			return pi.AskedCount < pj.AskedCount
		}
		return order[sorted[i].ID] < order[sorted[j].ID]
	})

	chosen := sorted[0]
	st := progressOrZero(progress, chosen.ID)
	return Selection{
		Topic: chosen,
		Reason: fmt.Sprintf("picked %s (status=%s asked=%d avg=%.2f)",
			chosen.ID, st.Status, st.AskedCount, st.AvgScore),
		Difficulty: SuggestDifficulty(difficulty, st),
	}
}

func openTopics(plan *Plan, progress map[string]Progress, must bool) []Topic {
	var out []Topic
	for _, t := range plan.Topics {
		if t.Must != must {
			continue
		}
		if progressOrZero(progress, t.ID).Status == StatusCovered {
			continue
		}
		out = append(out, t)
	}
	return out
}

func withoutLastTurn(pool []Topic, progress map[string]Progress, turnIndex int) []Topic {
	var out []Topic
	for _, t := range pool {
		p := progressOrZero(progress, t.ID)
		if p.LastAskedTurn >= 0 && p.LastAskedTurn == turnIndex-1 {
			continue
		}
		out = append(out, t)
	}
	return out
}

func filterByKeywords(pool []Topic, wants ...string) []Topic {
	var out []Topic
	for _, t := range pool {
		if t.Must && hasAnyKeyword(t, wants) {
			out = append(out, t)
		}
	}
	return out
}

func hasAnyKeyword(t Topic, wants []string) bool {
	for _, kw := range t.Keywords {
		for _, want := range wants {
			if strings.Contains(kw, want) {
				return true
			}
		}
	}
	return false
}

func planOrder(plan *Plan) map[string]int {
	order := make(map[string]int, len(plan.Topics))
	for i, t := range plan.Topics {
		order[t.ID] = i
	}
	return order
}

func progressOrZero(progress map[string]Progress, topicID string) Progress {
	if p, ok := progress[topicID]; ok {
		return p
	}
	return Progress{Status: StatusPending, LastAskedTurn: -1}
}

func statusRank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}

// SuggestDifficulty nudges a base difficulty from a topic's running average:
// strong answers (+1) push deeper, weak answers (-1) ease off.
func SuggestDifficulty(base int, p Progress) int {
	if p.AskedCount == 0 {
		return ClampDifficulty(base)
	}
	if p.AvgScore >= 0.75 {
		return ClampDifficulty(base + 1)
	}
	if p.AvgScore <= 0.4 {
		return ClampDifficulty(base - 1)
	}
	return ClampDifficulty(base)
}
