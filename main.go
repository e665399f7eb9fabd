package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	interviewx "github.com/tanpawarit/Interview-Coach-Agent/agent/agents/interview"
	capabilityx "github.com/tanpawarit/Interview-Coach-Agent/agent/capability"
	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	promptx "github.com/tanpawarit/Interview-Coach-Agent/agent/prompt"
	scenariox "github.com/tanpawarit/Interview-Coach-Agent/agent/scenario"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
	toolx "github.com/tanpawarit/Interview-Coach-Agent/agent/tool"
	translogx "github.com/tanpawarit/Interview-Coach-Agent/agent/translog"
	configx "github.com/tanpawarit/Interview-Coach-Agent/pkg/config"
	logx "github.com/tanpawarit/Interview-Coach-Agent/pkg/logger"
	openrouterx "github.com/tanpawarit/Interview-Coach-Agent/pkg/openrouter"
	webhookx "github.com/tanpawarit/Interview-Coach-Agent/pkg/webhook"
)

type sessionLogConfig struct {
	Dir string `split_words:"true" default:"logs"`
}

func main() {
	var (
		name         string
		position     string
		grade        string
		experience   string
		scenarioPath string
	)
	flag.StringVar(&name, "name", "", "candidate name")
	flag.StringVar(&position, "position", "", "target position, e.g. 'Go Backend Developer'")
	flag.StringVar(&grade, "grade", "", "target grade: junior, middle, or senior")
	flag.StringVar(&experience, "experience", "", "experience summary, e.g. '3 years of Python and Django'")
	flag.StringVar(&scenarioPath, "scenario", "", "path to a scripted scenario file instead of interactive input")

	logx.Init(*configx.MustNew[logx.Config]("LOG"))

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	capCfg := configx.MustNew[capabilityx.Config]("OPENROUTER")
	searcher := toolx.NewSearch(*configx.MustNew[toolx.Config]("SEARCH"))

	var capability contractx.Capability
	if capCfg.UseOffline() {
		log.Info().Msg("no api key configured, running with the deterministic offline capability")
		capability = capabilityx.NewOffline()
	} else {
		client := openrouterx.NewClient(capCfg.OpenRouterFor(contractx.AgentRoleObserver))
		if err := openrouterx.Ping(ctx, client); err != nil {
			log.Fatal().Err(err).Msg("credential check failed before session start")
		}
		live, err := capabilityx.NewLive(ctx, *capCfg, promptx.LoadPromptSet(), searcher)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build live capability")
		}
		capability = live
	}

	sinks := buildSinks(ctx)
	orch, err := interviewx.New(
		statex.NewMemoryStore(),
		capability,
		*configx.MustNew[interviewx.Config]("INTERVIEW"),
		interviewx.WithSinks(sinks...),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	profile := collectProfile(reader, name, position, grade, experience)
	sessionID := fmt.Sprintf("local-%d", time.Now().Unix())

	if scenarioPath != "" {
		runScenario(ctx, orch, sessionID, profile, scenarioPath)
		return
	}
	runInteractive(ctx, reader, orch, sessionID, profile)
}

func buildSinks(ctx context.Context) []translogx.Sink {
	logCfg := configx.MustNew[sessionLogConfig]("SESSIONLOG")
	sinks := []translogx.Sink{translogx.NewFileSink(logCfg.Dir)}

	webhookCfg := configx.MustNew[webhookx.Config]("SESSIONLOG_WEBHOOK")
	if webhookCfg.Enabled() {
		sinks = append(sinks, translogx.NewWebhookSink(webhookx.MustNew(*webhookCfg)))
	}

	archiveCfg := configx.MustNew[translogx.ArchiveConfig]("SESSIONLOG_ARCHIVE")
	if archiveCfg.Enabled() {
		archive, err := translogx.NewArchiveSink(*archiveCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open session archive")
		}
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare session archive schema")
		}
		sinks = append(sinks, archive)
	}
	return sinks
}

func collectProfile(reader *bufio.Reader, name, position, grade, experience string) contractx.Profile {
	if name == "" {
		name = ask(reader, "Your name: ")
	}
	if position == "" {
		position = ask(reader, "Target position: ")
	}
	if grade == "" {
		grade = ask(reader, "Target grade (junior/middle/senior): ")
	}
	if experience == "" {
		experience = ask(reader, "Briefly, your experience: ")
	}

	parsed, ok := contractx.ParseGrade(grade)
	if !ok {
		log.Warn().Str("grade", grade).Msg("unrecognized grade, defaulting to junior")
		parsed = contractx.GradeJunior
	}
	return contractx.Profile{
		Name:       strings.TrimSpace(name),
		Position:   strings.TrimSpace(position),
		Grade:      parsed,
		Experience: strings.TrimSpace(experience),
	}
}

func ask(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func runScenario(ctx context.Context, orch *interviewx.Orchestrator, sessionID string, profile contractx.Profile, path string) {
	messages, err := scenariox.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scenario")
	}
	exchanges, err := scenariox.Run(ctx, orch, sessionID, profile, messages)
	if err != nil {
		log.Fatal().Err(err).Msg("scenario replay failed")
	}
	for _, ex := range exchanges {
		if ex.UserMessage != "" {
			fmt.Printf("> %s\n", ex.UserMessage)
		}
		fmt.Println(ex.Reply)
		fmt.Println()
	}
}

func runInteractive(ctx context.Context, reader *bufio.Reader, orch *interviewx.Orchestrator, sessionID string, profile contractx.Profile) {
	opening, err := orch.StartSession(ctx, sessionID, profile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start session")
	}
	fmt.Println(opening)

	for {
		line := ask(reader, "> ")
		if line == "" {
			continue
		}
		out, err := orch.HandleMessage(ctx, sessionID, line)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}
		fmt.Println(out.Reply)
		if out.Done {
			return
		}
	}
}
