package topic

import (
	"math"
	"strings"
	"testing"
)

func TestBuildGradeSubsets(t *testing.T) {
	t.Parallel()

	junior := Build(BuildInput{Position: "Backend Developer", Grade: "Junior"})
	middle := Build(BuildInput{Position: "Backend Developer", Grade: "Middle"})
	senior := Build(BuildInput{Position: "Backend Developer", Grade: "Senior"})

	if len(junior.Topics) >= len(middle.Topics) {
		t.Fatalf("middle plan must extend junior: junior=%d middle=%d", len(junior.Topics), len(middle.Topics))
	}
	if len(middle.Topics) >= len(senior.Topics) {
		t.Fatalf("senior plan must extend middle: middle=%d senior=%d", len(middle.Topics), len(senior.Topics))
	}
	for _, jt := range junior.Topics {
		if !senior.Contains(jt.ID) {
			t.Fatalf("senior plan is missing base topic %s", jt.ID)
		}
	}
}

func TestGradeRulesReachableWithinMaxTurns(t *testing.T) {
	t.Parallel()

	// A candidate who answers everything well must be able to hit the must
	// coverage target before the turn cap kicks in. Each must topic needs
	// MinQuestions answers before it can count as covered, so the cap has
	// to leave room for that many question turns.
	for _, grade := range []string{"Junior", "Middle", "Senior"} {
		plan := Build(BuildInput{Position: "Backend Developer", Grade: grade})

		mustTotal, turnsNeeded := 0, 0
		minPerTopic := 0
		for _, topic := range plan.Topics {
			if !topic.Must {
				continue
			}
			mustTotal++
			if topic.MinQuestions > minPerTopic {
				minPerTopic = topic.MinQuestions
			}
		}
		needed := int(math.Ceil(float64(mustTotal) * plan.Rules.MustTargetPercent / 100))
		turnsNeeded = needed * minPerTopic
		if turnsNeeded > plan.Rules.MaxTurns {
			t.Fatalf("%s: covering %d of %d must topics takes %d turns, but max is %d",
				grade, needed, mustTotal, turnsNeeded, plan.Rules.MaxTurns)
		}

		overallNeeded := int(math.Ceil(float64(len(plan.Topics)) * plan.Rules.OverallTargetPercent / 100))
		if overallNeeded > mustTotal {
			t.Fatalf("%s: overall target demands %d covered topics but only %d are must topics",
				grade, overallNeeded, mustTotal)
		}
	}
}

func TestBuildUnknownGradeFallsBackToBase(t *testing.T) {
	t.Parallel()

	plan := Build(BuildInput{Position: "Backend Developer", Grade: "Principal"})
	junior := Build(BuildInput{Position: "Backend Developer", Grade: "Junior"})
	if len(plan.Topics) != len(junior.Topics) {
		t.Fatalf("unknown grade should use the base subset: got %d topics, want %d", len(plan.Topics), len(junior.Topics))
	}
}

func TestBuildStackSubstitution(t *testing.T) {
	t.Parallel()

	plan := Build(BuildInput{
		Position:       "Backend Developer",
		Grade:          "Junior",
		ExperienceText: "3 years of Python and Django services",
	})

	var sawLanguage, sawFramework bool
	for _, topic := range plan.Topics {
		if strings.Contains(topic.Title, "Python") {
			sawLanguage = true
		}
		if strings.Contains(topic.Title, "Django") {
			sawFramework = true
		}
		if strings.Contains(topic.Title, "Language") || strings.Contains(topic.Title, "Framework") {
			t.Fatalf("placeholder left in title: %q", topic.Title)
		}
	}
	if !sawLanguage || !sawFramework {
		t.Fatalf("expected detected stack in titles (language=%v framework=%v)", sawLanguage, sawFramework)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	in := BuildInput{Position: "Go Backend Developer", Grade: "Middle", ExperienceText: "5 years of Go and Gin"}
	a := Build(in)
	b := Build(in)
	if len(a.Topics) != len(b.Topics) {
		t.Fatalf("topic counts differ: %d vs %d", len(a.Topics), len(b.Topics))
	}
	for i := range a.Topics {
		if a.Topics[i].ID != b.Topics[i].ID || a.Topics[i].Title != b.Topics[i].Title {
			t.Fatalf("plan differs at %d: %+v vs %+v", i, a.Topics[i], b.Topics[i])
		}
	}
}

func TestBaseDifficulty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		grade string
		years int
		want  int
	}{
		{"Junior", -1, 2},
		{"Junior", 0, 2},
		{"Junior", 1, 1},
		{"Middle", 3, 3},
		{"Middle", 8, 4},
		{"Senior", 5, 4},
		{"Senior", 10, 5},
		{"Senior", 12, 5},
	}
	for _, tc := range cases {
		if got := BaseDifficulty(tc.grade, tc.years); got != tc.want {
			t.Errorf("BaseDifficulty(%s, %d) = %d, want %d", tc.grade, tc.years, got, tc.want)
		}
	}
}

func TestDetectStack(t *testing.T) {
	t.Parallel()

	language, framework, ok := DetectStack("built APIs with python and django for 3 years")
	if !ok || language != "Python" || framework != "Django" {
		t.Fatalf("unexpected detection: %s/%s ok=%v", language, framework, ok)
	}

	if _, _, ok := DetectStack("managed a team of accountants"); ok {
		t.Fatal("expected no stack detection")
	}
}
