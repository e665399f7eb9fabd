// Package capability is the generative boundary of the interview agent.
// Every model call goes through a single Capability; callers pick a role
// and pass serialized context, and get raw model text back. Parsing and
// repair of that text live elsewhere.
package capability

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	openrouterx "github.com/tanpawarit/Interview-Coach-Agent/pkg/openrouter"
)

// Config is loaded under the OPENROUTER prefix. Per-role model and
// temperature overrides fall back to the defaults when unset; a negative
// temperature means "not overridden".
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	Offline            bool          `envconfig:"OFFLINE" split_words:"true"`

	ObserverModel          string  `envconfig:"OBSERVER_MODEL" split_words:"true"`
	PlannerModel           string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	InterviewerModel       string  `envconfig:"INTERVIEWER_MODEL" split_words:"true"`
	ManagerModel           string  `envconfig:"MANAGER_MODEL" split_words:"true"`
	ObserverTemperature    float32 `envconfig:"OBSERVER_TEMPERATURE" split_words:"true" default:"-1"`
	PlannerTemperature     float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	InterviewerTemperature float32 `envconfig:"INTERVIEWER_TEMPERATURE" split_words:"true" default:"-1"`
	ManagerTemperature     float32 `envconfig:"MANAGER_TEMPERATURE" split_words:"true" default:"-1"`
}

// UseOffline reports whether the deterministic offline capability should
// be used instead of live model calls.
func (c Config) UseOffline() bool {
	return c.Offline || strings.TrimSpace(c.APIKey) == ""
}

func (c Config) OpenRouterFor(role contractx.AgentRole) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case contractx.AgentRoleObserver:
		if v := strings.TrimSpace(c.ObserverModel); v != "" {
			modelName = v
		}
		if c.ObserverTemperature >= 0 {
			temp = c.ObserverTemperature
		}
	case contractx.AgentRolePlanner:
		if v := strings.TrimSpace(c.PlannerModel); v != "" {
			modelName = v
		}
		if c.PlannerTemperature >= 0 {
			temp = c.PlannerTemperature
		}
	case contractx.AgentRoleInterviewer:
		if v := strings.TrimSpace(c.InterviewerModel); v != "" {
			modelName = v
		}
		if c.InterviewerTemperature >= 0 {
			temp = c.InterviewerTemperature
		}
	case contractx.AgentRoleManager:
		if v := strings.TrimSpace(c.ManagerModel); v != "" {
			modelName = v
		}
		if c.ManagerTemperature >= 0 {
			temp = c.ManagerTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
