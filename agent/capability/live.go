package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	promptx "github.com/tanpawarit/Interview-Coach-Agent/agent/prompt"
	toolx "github.com/tanpawarit/Interview-Coach-Agent/agent/tool"
)

// At most one search round per turn; a second tool request is answered
// from whatever the model already has.
const maxToolRounds = 2

// Live routes each role to its own compiled prompt+model graph. The
// interviewer additionally gets the web_search tool bound to its model and
// a bounded execute-then-regenerate loop.
type Live struct {
	runners map[contractx.AgentRole]compose.Runnable[map[string]any, *schema.Message]

	interviewerTemplate einoprompt.ChatTemplate
	interviewerModel    einomodel.BaseChatModel
	executor            toolx.Executor
}

var _ contractx.Capability = (*Live)(nil)

func NewLive(ctx context.Context, cfg Config, prompts promptx.PromptSet, searcher contractx.Searcher) (*Live, error) {
	live := &Live{
		runners: make(map[contractx.AgentRole]compose.Runnable[map[string]any, *schema.Message], 3),
	}

	for _, role := range []contractx.AgentRole{
		contractx.AgentRoleObserver,
		contractx.AgentRolePlanner,
		contractx.AgentRoleManager,
	} {
		builder := cfg.OpenRouterFor(role)
		chatModel, err := builder.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for role=%s: %v", contractx.ErrModelInvoke, role, err)
		}
		runner, err := compileRoleGraph(ctx, chatModel, prompts.ForRole(role), fmt.Sprintf("%s.model_graph", role))
		if err != nil {
			return nil, err
		}
		live.runners[role] = runner
	}

	interviewerBuilder := cfg.OpenRouterFor(contractx.AgentRoleInterviewer)
	interviewerModel, err := interviewerBuilder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create model for role=%s: %v", contractx.ErrModelInvoke, contractx.AgentRoleInterviewer, err)
	}
	tools, executor := toolx.BuildForRole(contractx.AgentRoleInterviewer, searcher)
	toolModel, err := interviewerModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, contractx.AgentRoleInterviewer, err)
	}
	live.interviewerTemplate = einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(prompts.Interviewer),
		schema.UserMessage("{input}"),
	)
	live.interviewerModel = toolModel
	live.executor = executor

	return live, nil
}

func (l *Live) Invoke(ctx context.Context, role contractx.AgentRole, payload map[string]any) (string, error) {
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal payload for role=%s: %v", contractx.ErrValidation, role, err)
	}

	if role == contractx.AgentRoleInterviewer {
		return l.invokeInterviewer(ctx, string(input))
	}

	runner, ok := l.runners[role]
	if !ok {
		return "", fmt.Errorf("%w: role=%s", contractx.ErrUnknownRole, role)
	}
	msg, err := runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return "", fmt.Errorf("%w: invoke role=%s: %v", contractx.ErrModelInvoke, role, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty response for role=%s", contractx.ErrModelInvoke, role)
	}
	return msg.Content, nil
}

// invokeInterviewer runs the tool loop by hand: format the prompt once,
// then alternate generate and tool execution until the model produces
// plain content or the round budget runs out.
func (l *Live) invokeInterviewer(ctx context.Context, input string) (string, error) {
	messages, err := l.interviewerTemplate.Format(ctx, map[string]any{"input": input})
	if err != nil {
		return "", fmt.Errorf("%w: format interviewer prompt: %v", contractx.ErrModelInvoke, err)
	}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := l.interviewerModel.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("%w: interviewer generate: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			return "", fmt.Errorf("%w: empty interviewer response", contractx.ErrModelInvoke)
		}
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, l.executeToolCall(ctx, call))
		}
	}

	// Round budget exhausted with the model still asking for tools; force
	// a final answer without them.
	messages = append(messages, schema.UserMessage("Answer now using only the information above. Do not call tools."))
	msg, err := l.interviewerModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: interviewer final generate: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty interviewer response", contractx.ErrModelInvoke)
	}
	return msg.Content, nil
}

func (l *Live) executeToolCall(ctx context.Context, call schema.ToolCall) *schema.Message {
	name := strings.TrimSpace(call.Function.Name)
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn().Str("tool", name).Err(err).Msg("tool call has malformed arguments")
		}
	}

	result, err := l.executor(ctx, name, args)
	if err != nil {
		result = contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	content, err := json.Marshal(result)
	if err != nil {
		content = []byte(fmt.Sprintf(`{"tool":%q,"error":"result serialization failed"}`, name))
	}
	return schema.ToolMessage(string(content), call.ID)
}

func compileRoleGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile graph %s: %w", graphName, err)
	}
	return runner, nil
}
