// Package topic owns the interview topic catalog, the per-session topic
// plan, and coverage/progress tracking over that plan.
package topic

import (
	"fmt"
	"strings"
)

// Topic is one plan entry. Immutable once the plan is built; all mutable
// per-topic state lives in the Tracker.
type Topic struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Must           bool     `json:"must"`
	MinQuestions   int      `json:"min_questions"`
	DifficultyHint int      `json:"difficulty_hint"`
	Keywords       []string `json:"keywords,omitempty"`
}

// PlanRules are the per-session stopping policy constants. Percent values
// are on a 0..100 scale.
type PlanRules struct {
	MustTargetPercent    float64 `json:"must_target_percent"`
	OverallTargetPercent float64 `json:"overall_target_percent"`
	MaxTurns             int     `json:"max_turns"`
	Cooldown             int     `json:"cooldown"`
}

// Plan is the ordered, stack-adapted topic set for one session. Read-only
// after Build.
type Plan struct {
	Position string    `json:"position"`
	Grade    string    `json:"grade"`
	Topics   []Topic   `json:"topics"`
	Rules    PlanRules `json:"rules"`
	Summary  string    `json:"summary"`
}

// BuildInput is the candidate profile slice the builder needs.
type BuildInput struct {
	Position        string
	Grade           string
	ExperienceYears int
	ExperienceText  string
}

// Build constructs a topic plan from the catalog. Deterministic for
// identical input: stack detection, title substitution, and rule selection
// never involve randomness.
func Build(in BuildInput) *Plan {
	defs := CatalogForGrade(in.Grade)
	language, framework, detected := DetectStack(in.ExperienceText + " " + in.Position)

	topics := make([]Topic, 0, len(defs))
	for _, d := range defs {
		title := d.Title
		if detected {
			title = strings.ReplaceAll(title, "Language", language)
			title = strings.ReplaceAll(title, "Framework", framework)
		}
		topics = append(topics, Topic{
			ID:             d.ID,
			Title:          title,
			Must:           d.Must,
			MinQuestions:   d.MinQuestions,
			DifficultyHint: d.DifficultyHint,
			Keywords:       append([]string(nil), d.Keywords...),
		})
	}

	rules := rulesForGrade(in.Grade)

	var mustNames []string
	for _, t := range topics {
		if t.Must {
			mustNames = append(mustNames, t.Title)
		}
	}
	summary := ""
	if len(mustNames) > 0 {
		summary = fmt.Sprintf("must topics: %s", strings.Join(mustNames, ", "))
	}
	if detected {
		summary += fmt.Sprintf(" (stack: %s)", language)
	}

	return &Plan{
		Position: in.Position,
		Grade:    normalizeGrade(in.Grade),
		Topics:   topics,
		Rules:    rules,
		Summary:  summary,
	}
}

// Per-grade stopping policy. MaxTurns leaves room for the minimum question
// counts the must target demands, so a strong candidate ends a session by
// meeting the coverage targets rather than by running out the clock:
// Junior needs 6 of 7 must topics at 2 questions each (12 turns), Middle
// all 9 (18), Senior all 11 (22).
func rulesForGrade(grade string) PlanRules {
	switch strings.ToLower(strings.TrimSpace(grade)) {
	case "middle":
		return PlanRules{MustTargetPercent: 90, OverallTargetPercent: 65, MaxTurns: 20, Cooldown: 2}
	case "senior":
		return PlanRules{MustTargetPercent: 92, OverallTargetPercent: 65, MaxTurns: 24, Cooldown: 2}
	default:
		return PlanRules{MustTargetPercent: 85, OverallTargetPercent: 60, MaxTurns: 14, Cooldown: 1}
	}
}

func normalizeGrade(grade string) string {
	switch strings.ToLower(strings.TrimSpace(grade)) {
	case "middle":
		return "Middle"
	case "senior":
		return "Senior"
	case "junior":
		return "Junior"
	}
	return "Junior"
}

// Contains reports whether the plan has a topic with the given id.
func (p *Plan) Contains(topicID string) bool {
	_, ok := p.Topic(topicID)
	return ok
}

// Topic looks up a plan entry by id.
func (p *Plan) Topic(topicID string) (Topic, bool) {
	if p == nil {
		return Topic{}, false
	}
	for _, t := range p.Topics {
		if t.ID == topicID {
			return t, true
		}
	}
	return Topic{}, false
}

// BaseDifficulty derives the session's starting difficulty from grade and
// experience years: Junior 2, Middle 3, Senior 4; >=8 years +1, exactly one
// year -1, clamped to [1,5]. Zero or negative years carries no real signal
// and applies no adjustment, so a fresh Junior still starts at 2.
func BaseDifficulty(grade string, experienceYears int) int {
	d := 2
	switch strings.ToLower(strings.TrimSpace(grade)) {
	case "middle":
		d = 3
	case "senior":
		d = 4
	}
	if experienceYears >= 8 {
		d++
	} else if experienceYears == 1 {
		d--
	}
	return ClampDifficulty(d)
}

// ClampDifficulty bounds a difficulty level to [1,5].
func ClampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 5 {
		return 5
	}
	return d
}
