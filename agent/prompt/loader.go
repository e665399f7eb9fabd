package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
)

var (
	//go:embed template/observer.txt
	observerRaw string

	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/interviewer.txt
	interviewerRaw string

	//go:embed template/manager.txt
	managerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Observer    string
	Planner     string
	Interviewer string
	Manager     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Observer:    strings.TrimSpace(observerRaw),
		Planner:     strings.TrimSpace(plannerRaw),
		Interviewer: strings.TrimSpace(interviewerRaw),
		Manager:     strings.TrimSpace(managerRaw),
	}
}

// ForRole maps a generative role to its system prompt. Unknown roles get
// an empty string; the capability layer rejects those before use.
func (s PromptSet) ForRole(role contractx.AgentRole) string {
	switch role {
	case contractx.AgentRoleObserver:
		return s.Observer
	case contractx.AgentRolePlanner:
		return s.Planner
	case contractx.AgentRoleInterviewer:
		return s.Interviewer
	case contractx.AgentRoleManager:
		return s.Manager
	default:
		return ""
	}
}
