// Package interview is the session orchestrator: it owns the lifecycle
// from profile intake to final feedback and drives the turn graph.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	nodex "github.com/tanpawarit/Interview-Coach-Agent/agent/nodes/interview"
	parsex "github.com/tanpawarit/Interview-Coach-Agent/agent/parse"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
	translogx "github.com/tanpawarit/Interview-Coach-Agent/agent/translog"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Config is loaded under the INTERVIEW prefix. The coverage targets and
// the turn cap default per grade; a non-zero value here overrides the
// grade default for every session.
type Config struct {
	CoveredThreshold     float64 `split_words:"true" default:"0.7"`
	FactsCap             int     `split_words:"true" default:"32"`
	DedupeWindow         int     `split_words:"true" default:"4"`
	MustTargetPercent    float64 `split_words:"true"`
	OverallTargetPercent float64 `split_words:"true"`
	MaxTurns             int     `split_words:"true"`
}

// TurnOutput is what one candidate message produces. Feedback is set only
// on the closing turn.
type TurnOutput struct {
	Reply    string
	TurnID   int
	Done     bool
	Feedback *contractx.FinalFeedback
}

type Orchestrator struct {
	store      statex.Store
	capability contractx.Capability
	sinks      []translogx.Sink
	cfg        Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithSinks(sinks ...translogx.Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, sinks...) }
}

func New(store statex.Store, capability contractx.Capability, cfg Config, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if capability == nil {
		return nil, errors.New("capability is required")
	}
	if cfg.CoveredThreshold <= 0 || cfg.CoveredThreshold > 1 {
		cfg.CoveredThreshold = 0.7
	}
	if cfg.FactsCap <= 0 {
		cfg.FactsCap = 32
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = 4
	}

	o := &Orchestrator{
		store:      store,
		capability: capability,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// StartSession validates the profile, builds the topic plan, and returns
// the opening message. A malformed profile is the one fatal input error in
// the whole flow.
func (o *Orchestrator) StartSession(ctx context.Context, sessionID string, profile contractx.Profile) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	if err := profile.Validate(); err != nil {
		return "", err
	}
	if existing, err := o.store.Load(ctx, sessionID); err == nil && existing.Phase != statex.PhaseDone {
		return "", fmt.Errorf("%w: session %s", contractx.ErrSessionRunning, sessionID)
	}

	plan := topicx.Build(topicx.BuildInput{
		Position:        profile.Position,
		Grade:           string(profile.Grade),
		ExperienceYears: profile.ExperienceYears(),
		ExperienceText:  profile.Experience,
	})
	if o.cfg.MustTargetPercent > 0 {
		plan.Rules.MustTargetPercent = o.cfg.MustTargetPercent
	}
	if o.cfg.OverallTargetPercent > 0 {
		plan.Rules.OverallTargetPercent = o.cfg.OverallTargetPercent
	}
	if o.cfg.MaxTurns > 0 {
		plan.Rules.MaxTurns = o.cfg.MaxTurns
	}
	tracker := topicx.NewTracker(plan, o.cfg.CoveredThreshold)
	difficulty := topicx.BaseDifficulty(string(profile.Grade), profile.ExperienceYears())

	st := statex.NewSessionState(sessionID, profile, plan, tracker,
		difficulty, o.cfg.FactsCap, o.cfg.DedupeWindow, o.now())

	opening := topicx.SelectNextTopic(plan, tracker.ProgressMap(), difficulty, 1)
	question := "To warm up: tell me about the last project you worked on. What was your part in it, and what was the hardest piece?"
	st.CurrentTopicID = opening.Topic.ID
	st.LastQuestion = question

	if err := o.store.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save session %s: %w", sessionID, err)
	}

	log.Info().Str("session_id", sessionID).Str("grade", string(profile.Grade)).
		Int("topics", len(plan.Topics)).Int("difficulty", difficulty).Msg("session started")

	greeting := fmt.Sprintf("Hi %s, I'll be running your %s interview for the %s position today. %s",
		profile.Name, strings.ToLower(string(profile.Grade)), profile.Position, question)
	return greeting, nil
}

// HandleMessage processes one candidate message. Control commands (stop,
// progress report) are recognized before any model call.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (TurnOutput, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return TurnOutput{}, ErrInvalidMessage
	}

	switch {
	case isProgressCommand(trimmed):
		reply, err := o.progressReport(ctx, sessionID)
		return TurnOutput{Reply: reply}, err
	case isStopCommand(trimmed):
		return o.Finish(ctx, sessionID)
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{SessionID: sessionID, Text: trimmed})
	if err != nil {
		return TurnOutput{}, err
	}

	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return TurnOutput{}, err
	}

	result := TurnOutput{Reply: out.Reply, TurnID: out.TurnID}
	if out.WrapUp {
		feedbackText, feedback, err := o.finishSession(ctx, st)
		if err != nil {
			return TurnOutput{}, err
		}
		result.Reply = out.Reply + "\n\n" + feedbackText
		result.Done = true
		result.Feedback = feedback
	}

	if err := o.store.Save(ctx, st); err != nil {
		return TurnOutput{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return result, nil
}

// Finish ends the session immediately and returns the final feedback.
func (o *Orchestrator) Finish(ctx context.Context, sessionID string) (TurnOutput, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return TurnOutput{}, err
	}
	if st.Phase == statex.PhaseDone {
		return TurnOutput{}, fmt.Errorf("%w: session %s", contractx.ErrSessionDone, sessionID)
	}

	st.Phase = statex.PhaseWrappingUp
	feedbackText, feedback, err := o.finishSession(ctx, st)
	if err != nil {
		return TurnOutput{}, err
	}
	if err := o.store.Save(ctx, st); err != nil {
		return TurnOutput{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return TurnOutput{Reply: feedbackText, Done: true, Feedback: feedback}, nil
}

// finishSession runs the manager once, ships the session record to the
// sinks, and marks the session done. Sink failures are logged, not
// returned: feedback already exists at that point.
func (o *Orchestrator) finishSession(ctx context.Context, st *statex.SessionState) (string, *contractx.FinalFeedback, error) {
	snapshot := st.Tracker.Snapshot()
	endedEarly := !snapshot.TargetsMet(st.Plan.Rules)

	payload := map[string]any{
		"participant_name": st.Profile.Name,
		"position":         st.Profile.Position,
		"grade":            string(st.Profile.Grade),
		"summary":          st.RunningSummary,
		"known_facts":      st.KnownFactsText(),
		"topics":           st.Tracker.ProgressMap(),
		"coverage":         snapshot,
		"average_score":    averageScore(st),
		"turns_taken":      len(st.History),
		"ended_early":      endedEarly,
	}

	raw, err := o.capability.Invoke(ctx, contractx.AgentRoleManager, payload)
	if err != nil {
		log.Warn().Str("session_id", st.SessionID).Err(err).Msg("manager invoke failed, using default feedback")
		raw = ""
	}
	feedback, route := parsex.FinalFeedback(raw)
	if route != parsex.RouteStrict {
		log.Debug().Str("session_id", st.SessionID).Str("route", string(route)).Msg("manager output needed repair")
	}

	feedback.Resources = fillResources(feedback.Gaps, feedback.Resources)
	feedback.Coverage = snapshot

	st.Phase = statex.PhaseDone
	st.Touch(o.now())

	record := translogx.BuildRecord(st, feedback, o.now())
	for _, sink := range o.sinks {
		if err := sink.Write(ctx, record); err != nil {
			log.Error().Str("session_id", st.SessionID).Err(err).Msg("session log sink failed")
		}
	}

	return formatFeedback(st.Profile.Name, feedback), &feedback, nil
}

// progressReport answers the progress command without any generative call.
func (o *Orchestrator) progressReport(ctx context.Context, sessionID string) (string, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	snapshot := st.Tracker.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Coverage: must %.0f%%, overall %.0f%% (%d of %d topics covered), turn %d of %d.\n",
		snapshot.MustPercent, snapshot.OverallPercent,
		snapshot.OverallCovered, snapshot.OverallTotal,
		len(st.History), st.Plan.Rules.MaxTurns)
	for _, t := range st.Plan.Topics {
		p := st.Tracker.Progress(t.ID)
		fmt.Fprintf(&b, "- %s: %s (asked %d, avg %.2f)\n", t.Title, p.Status, p.AskedCount, p.AvgScore)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func averageScore(st *statex.SessionState) float64 {
	sum, n := 0.0, 0
	for _, turn := range st.History {
		if turn.Analysis.Intent == contractx.IntentNormalAnswer {
			sum += turn.Analysis.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func formatFeedback(name string, f contractx.FinalFeedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, here is my feedback. Decision: %s (confidence %.0f%%).\n", name, f.Decision, f.Confidence*100)
	if len(f.Strengths) > 0 {
		b.WriteString("Strengths:\n")
		for _, s := range f.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if len(f.Gaps) > 0 {
		b.WriteString("Gaps:\n")
		for _, g := range f.Gaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	if len(f.Resources) > 0 {
		b.WriteString("Where to go next:\n")
		for _, r := range f.Resources {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var stopPhrases = []string{
	"stop", "/stop", "finish interview", "давай фидбэк",
	"стоп интервью", "стоп игра",
}

var progressPhrases = []string{"/progress", "прогресс"}

func isStopCommand(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range stopPhrases {
		if lower == p {
			return true
		}
	}
	return false
}

func isProgressCommand(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range progressPhrases {
		if lower == p {
			return true
		}
	}
	return false
}
