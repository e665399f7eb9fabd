package parse

import (
	"testing"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

func TestObserverAnalysisStrict(t *testing.T) {
	t.Parallel()

	raw := `{"intent":"NORMAL_ANSWER","correctness":"CORRECT","score":0.9,"strengths":["clear"],"gaps":[],"flags":{"prompt_injection":false,"controversial":false}}`
	a, route := ObserverAnalysis(raw)
	if route != RouteStrict {
		t.Fatalf("route = %s, want strict", route)
	}
	if a.Correctness != contractx.CorrectnessCorrect || a.Score != 0.9 {
		t.Fatalf("unexpected analysis: %+v", a)
	}
}

func TestObserverAnalysisFencedAndWrapped(t *testing.T) {
	t.Parallel()

	raw := "Here is my analysis:\n```json\n{\"intent\":\"OFF_TOPIC\",\"correctness\":\"UNKNOWN\",\"score\":0}\n```\nHope that helps."
	a, route := ObserverAnalysis(raw)
	if route == RouteDefaults {
		t.Fatalf("expected recovery, got defaults (analysis %+v)", a)
	}
	if a.Intent != contractx.IntentOffTopic {
		t.Fatalf("intent = %s, want OFF_TOPIC", a.Intent)
	}
}

func TestObserverAnalysisMalformedFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	a, route := ObserverAnalysis(`{intent: NORMAL`)
	if route != RouteDefaults {
		t.Fatalf("route = %s, want defaults", route)
	}
	if a.Correctness != contractx.CorrectnessUnknown || a.Score != 0 {
		t.Fatalf("defaults not conservative: %+v", a)
	}
	if a.Intent != contractx.IntentNormalAnswer {
		t.Fatalf("default intent = %s, want NORMAL_ANSWER", a.Intent)
	}
}

func TestObserverAnalysisClampsAndNormalizes(t *testing.T) {
	t.Parallel()

	raw := `{"intent":"SHOUTING","correctness":"MAYBE","score":7.5}`
	a, route := ObserverAnalysis(raw)
	if route != RouteStrict {
		t.Fatalf("route = %s, want strict", route)
	}
	if a.Intent != contractx.IntentNormalAnswer {
		t.Fatalf("invalid intent should normalize, got %s", a.Intent)
	}
	if a.Correctness != contractx.CorrectnessUnknown {
		t.Fatalf("invalid correctness should normalize, got %s", a.Correctness)
	}
	if a.Score != 1 {
		t.Fatalf("score should clamp to 1, got %v", a.Score)
	}
}

func TestFirstJSONObjectIgnoresBracesInStrings(t *testing.T) {
	t.Parallel()

	s := `noise {"q":"use {} braces","n":1} trailing`
	obj, ok := FirstJSONObject(s)
	if !ok {
		t.Fatal("expected an object")
	}
	if obj != `{"q":"use {} braces","n":1}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestFirstJSONObjectTruncated(t *testing.T) {
	t.Parallel()

	if _, ok := FirstJSONObject(`{"q": "unfinished`); ok {
		t.Fatal("truncated object must not be extracted")
	}
}

func TestInterviewerPlanDefaults(t *testing.T) {
	t.Parallel()

	p, route := InterviewerPlan("total nonsense", "http_rest", 3)
	if route != RouteDefaults {
		t.Fatalf("route = %s, want defaults", route)
	}
	if p.TopicID != "http_rest" || p.Difficulty != 3 {
		t.Fatalf("fallbacks not applied: %+v", p)
	}
	if p.NextQuestion != FallbackQuestion {
		t.Fatalf("expected fallback question, got %q", p.NextQuestion)
	}
	if p.NextAction != contractx.ActionAsk {
		t.Fatalf("default action = %s, want ASK", p.NextAction)
	}
}

func TestInterviewerPlanRepairsFields(t *testing.T) {
	t.Parallel()

	raw := `{"next_action":"PONDER","next_question":"  ","topic_id":"","difficulty":9}`
	p, route := InterviewerPlan(raw, "caching", 2)
	if route != RouteStrict {
		t.Fatalf("route = %s, want strict", route)
	}
	if p.NextAction != contractx.ActionAsk || p.TopicID != "caching" || p.Difficulty != 2 {
		t.Fatalf("repair incomplete: %+v", p)
	}
	if p.NextQuestion != FallbackQuestion {
		t.Fatalf("blank question should fall back, got %q", p.NextQuestion)
	}
}

func TestFinalFeedbackDecisionSpellings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want contractx.Decision
	}{
		{`{"decision":"STRONG_HIRE","confidence":0.8}`, contractx.DecisionStrongHire},
		{`{"decision":"Hire","confidence":0.6}`, contractx.DecisionHire},
		{`{"decision":"definitely","confidence":0.6}`, contractx.DecisionNoHire},
	}
	for _, tc := range cases {
		f, _ := FinalFeedback(tc.raw)
		if f.Decision != tc.want {
			t.Errorf("FinalFeedback(%s) decision = %s, want %s", tc.raw, f.Decision, tc.want)
		}
	}
}

func TestFinalFeedbackMalformed(t *testing.T) {
	t.Parallel()

	f, route := FinalFeedback("")
	if route != RouteDefaults {
		t.Fatalf("route = %s, want defaults", route)
	}
	if f.Decision != contractx.DecisionNoHire || f.Confidence != 0 {
		t.Fatalf("defaults not conservative: %+v", f)
	}
}
