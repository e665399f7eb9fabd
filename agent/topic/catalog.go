package topic

import "strings"

// Def is a static catalog entry. Titles containing the "Language" or
// "Framework" placeholders are rewritten by the plan builder when a concrete
// stack is detected in the candidate's experience text.
type Def struct {
	ID             string
	Title          string
	Must           bool
	MinQuestions   int
	DifficultyHint int
	Keywords       []string
}

var baseTopics = []Def{
	{ID: "language_basics", Title: "Language basics", Must: true, MinQuestions: 2, DifficultyHint: 1, Keywords: []string{"basics", "syntax", "types"}},
	{ID: "oop_principles", Title: "OOP principles", Must: true, MinQuestions: 2, DifficultyHint: 2, Keywords: []string{"oop", "classes", "inheritance", "polymorphism"}},
	{ID: "http_rest", Title: "HTTP & REST", Must: true, MinQuestions: 2, DifficultyHint: 2, Keywords: []string{"http", "rest", "requests", "responses"}},
	{ID: "db_sql_basics", Title: "DB & SQL basics", Must: true, MinQuestions: 2, DifficultyHint: 2, Keywords: []string{"sql", "database", "queries"}},
	{ID: "git_basics", Title: "Git basics", Must: true, MinQuestions: 2, DifficultyHint: 1, Keywords: []string{"git", "version control"}},
	{ID: "framework_basics", Title: "Framework basics", Must: true, MinQuestions: 2, DifficultyHint: 2, Keywords: []string{"framework", "orm", "middleware"}},
	{ID: "debug_testing", Title: "Debugging & testing basics", Must: true, MinQuestions: 2, DifficultyHint: 2, Keywords: []string{"testing", "debug", "coverage"}},
}

var middleTopics = []Def{
	{ID: "system_design", Title: "System design fundamentals", Must: true, MinQuestions: 2, DifficultyHint: 3, Keywords: []string{"architecture", "design", "scalability"}},
	{ID: "concurrency", Title: "Concurrency & async", Must: true, MinQuestions: 2, DifficultyHint: 3, Keywords: []string{"async", "concurrency", "threads", "processes"}},
	{ID: "performance", Title: "Performance & profiling", Must: false, MinQuestions: 1, DifficultyHint: 3, Keywords: []string{"performance", "profiling", "optimization"}},
	{ID: "caching", Title: "Caching", Must: false, MinQuestions: 1, DifficultyHint: 3, Keywords: []string{"cache", "redis", "ttl"}},
	{ID: "security", Title: "Security basics", Must: false, MinQuestions: 1, DifficultyHint: 3, Keywords: []string{"security", "auth", "owasp"}},
	{ID: "ci_cd", Title: "CI/CD", Must: false, MinQuestions: 1, DifficultyHint: 2, Keywords: []string{"ci", "cd", "pipelines"}},
}

var seniorTopics = []Def{
	{ID: "system_design_advanced", Title: "System design (advanced)", Must: true, MinQuestions: 2, DifficultyHint: 4, Keywords: []string{"architecture", "design", "tradeoffs", "capacity"}},
	{ID: "concurrency_deep", Title: "Concurrency scaling", Must: true, MinQuestions: 2, DifficultyHint: 4, Keywords: []string{"concurrency", "locks", "queues", "backpressure"}},
	{ID: "reliability", Title: "Reliability & observability", Must: false, MinQuestions: 1, DifficultyHint: 4, Keywords: []string{"logging", "metrics", "tracing"}},
}

// stack maps a display name to the aliases that reveal it in free-form
// experience text. Order matters: the first match wins, so detection stays
// deterministic.
type stack struct {
	Name      string
	Framework string
	Aliases   []string
}

var stacks = []stack{
	{Name: "Python", Framework: "Django", Aliases: []string{"python", "django", "drf", "flask", "fastapi"}},
	{Name: "Go", Framework: "Gin", Aliases: []string{"go", "golang", "gin", "goroutine"}},
	{Name: "Java", Framework: "Spring", Aliases: []string{"java", "spring", "jvm", "hibernate"}},
	{Name: "JavaScript", Framework: "Express", Aliases: []string{"javascript", "typescript", "node", "nodejs", "express", "nestjs"}},
	{Name: "Rust", Framework: "Actix", Aliases: []string{"rust", "tokio", "actix"}},
}

// CatalogForGrade returns a fresh copy of the topic subset for a grade.
// Unrecognized grades get the base (junior) subset.
func CatalogForGrade(grade string) []Def {
	g := strings.ToLower(strings.TrimSpace(grade))
	defs := cloneDefs(baseTopics)
	if g == "middle" || g == "senior" {
		defs = append(defs, cloneDefs(middleTopics)...)
	}
	if g == "senior" {
		defs = append(defs, cloneDefs(seniorTopics)...)
	}
	return defs
}

func cloneDefs(in []Def) []Def {
	out := make([]Def, len(in))
	for i, d := range in {
		out[i] = d
		out[i].Keywords = append([]string(nil), d.Keywords...)
	}
	return out
}

// DetectStack scans free text for a known language or framework alias and
// returns the matched stack's language and framework display names.
func DetectStack(text string) (language, framework string, ok bool) {
	words := tokenize(text)
	for _, st := range stacks {
		for _, alias := range st.Aliases {
			if words[alias] {
				return st.Name, st.Framework, true
			}
		}
	}
	return "", "", false
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words[strings.ToLower(b.String())] = true
			b.Reset()
		}
	}
	for _, r := range text {
		if r == ' ' || r == ',' || r == '.' || r == ';' || r == ':' || r == '/' ||
			r == '(' || r == ')' || r == '\n' || r == '\t' || r == '!' || r == '?' {
			flush()
			continue
		}
		b.WriteRune(r)
	}
	flush()
	return words
}
