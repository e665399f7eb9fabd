// Package state holds the per-session conversation state: the append-only
// turn history, the rolling summary, and the bounded extracted-facts memory.
// A SessionState has a single owner (the orchestrator) for the lifetime of
// one interview and is never persisted beyond the session log.
package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	topicx "github.com/tanpawarit/Interview-Coach-Agent/agent/topic"
)

type Phase string

const (
	PhaseCollectingProfile Phase = "COLLECTING_PROFILE"
	PhaseRunning           Phase = "RUNNING"
	PhaseWrappingUp        Phase = "WRAPPING_UP"
	PhaseDone              Phase = "DONE"
)

const (
	summaryWindow      = 3
	questionClipLen    = 50
	answerClipLen      = 60
	minFactWords       = 3
	duplicateThreshold = 0.6
)

// ConversationTurn is one completed exchange plus its derived analysis and
// plan. Append-only; never mutated after RecordTurn.
type ConversationTurn struct {
	TurnID           int                       `json:"turn_id"`
	Question         string                    `json:"question"`
	UserMessage      string                    `json:"user_message"`
	Analysis         contractx.ObserverAnalysis `json:"observer_analysis"`
	Plan             contractx.InterviewerPlan  `json:"plan"`
	FinalMessage     string                    `json:"final_message"`
	InternalThoughts string                    `json:"internal_thoughts"`
}

// SessionState owns everything mutable about one interview session.
type SessionState struct {
	SessionID string
	Profile   contractx.Profile
	Phase     Phase

	Plan    *topicx.Plan
	Tracker *topicx.Tracker

	Difficulty     int
	CurrentTopicID string
	LastQuestion   string

	History        []ConversationTurn
	RunningSummary string
	ExtractedFacts []string

	factsCap     int
	dedupeWindow int

	UpdatedAt time.Time
}

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// NewSessionState builds a fresh session. factsCap bounds the extracted
// facts store (FIFO eviction); dedupeWindow is the recency window for
// duplicate-question detection.
func NewSessionState(sessionID string, profile contractx.Profile, plan *topicx.Plan, tracker *topicx.Tracker, difficulty, factsCap, dedupeWindow int, now time.Time) *SessionState {
	return &SessionState{
		SessionID:    sessionID,
		Profile:      profile,
		Phase:        PhaseRunning,
		Plan:         plan,
		Tracker:      tracker,
		Difficulty:   difficulty,
		factsCap:     factsCap,
		dedupeWindow: dedupeWindow,
		UpdatedAt:    now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// NextTurnID is the id the next recorded turn will get; ids are strictly
// increasing from 1.
func (s *SessionState) NextTurnID() int {
	return len(s.History) + 1
}

// RecordTurn appends a completed turn and refreshes the rolling summary.
func (s *SessionState) RecordTurn(turn ConversationTurn, now time.Time) {
	s.History = append(s.History, turn)
	s.updateSummary()
	s.Touch(now)
}

// updateSummary recomputes the rolling summary from the last three turns
// only. Older turns stay in history but drop out of the summary: it is a
// lossy bounded view, not a cache.
func (s *SessionState) updateSummary() {
	start := len(s.History) - summaryWindow
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, summaryWindow)
	for _, t := range s.History[start:] {
		parts = append(parts, fmt.Sprintf("Q%d:%s | A:%s",
			t.TurnID, clip(t.Question, questionClipLen), clip(t.UserMessage, answerClipLen)))
	}
	s.RunningSummary = strings.Join(parts, " || ")
}

// ExtractFacts pulls short fragments (sentences of at least three words)
// out of a candidate message into the bounded facts store. Duplicates are
// skipped; the oldest facts are evicted first once the cap is hit.
func (s *SessionState) ExtractFacts(userMessage string) []string {
	var added []string
	for _, raw := range splitSentences(userMessage) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" || len(strings.Fields(sentence)) < minFactWords {
			continue
		}
		if s.hasFact(sentence) {
			continue
		}
		s.ExtractedFacts = append(s.ExtractedFacts, sentence)
		added = append(added, sentence)
	}
	if s.factsCap > 0 && len(s.ExtractedFacts) > s.factsCap {
		s.ExtractedFacts = s.ExtractedFacts[len(s.ExtractedFacts)-s.factsCap:]
	}
	return added
}

func (s *SessionState) hasFact(sentence string) bool {
	for _, f := range s.ExtractedFacts {
		if f == sentence {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// QuestionAlreadyCovered reports whether a candidate question would repeat
// an earlier one: either the same topic appears within the dedupe window
// with near-identical text, or the normalized text is contained in any
// earlier visible question.
func (s *SessionState) QuestionAlreadyCovered(question, topicID string) bool {
	normalized := normalizeText(question)
	if normalized == "" {
		return false
	}

	start := len(s.History) - s.dedupeWindow
	if start < 0 {
		start = 0
	}
	for _, turn := range s.History[start:] {
		if topicID != "" && turn.Plan.TopicID == topicID &&
			tokenOverlap(normalized, normalizeText(turn.Question)) >= duplicateThreshold {
			return true
		}
	}
	for _, turn := range s.History {
		if strings.Contains(normalizeText(turn.Question), normalized) {
			return true
		}
	}
	return false
}

func normalizeText(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 'а' && r <= 'я', r == 'ё':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenOverlap is the Jaccard similarity between the token sets of two
// normalized strings.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, w := range ta {
		set[w] = true
	}
	union := len(set)
	shared := 0
	for _, w := range tb {
		if set[w] {
			shared++
			set[w] = false
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// RecentQAText is a pure projection of the recent history for building
// generative-agent context. It must not mutate state.
func (s *SessionState) RecentQAText() string {
	return s.RunningSummary
}

// KnownFactsText is a pure projection of the extracted facts.
func (s *SessionState) KnownFactsText() string {
	return strings.Join(s.ExtractedFacts, "; ")
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
