package interview

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/Interview-Coach-Agent/agent/nodes/interview"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_state",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_state: %w", err)
	}

	if err := graph.AddLambdaNode("observe",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Observe(ctx, in, o.capability)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node observe: %w", err)
	}

	if err := graph.AddLambdaNode("record_progress",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordProgress(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_progress: %w", err)
	}

	if err := graph.AddLambdaNode("plan_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PlanTurn(ctx, in, o.capability)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_turn: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeReply(ctx, in, o.capability)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_turn: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_wrapup",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeWrapUp(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_wrapup: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if nodex.ShouldWrapUp(in) {
				return "finalize_wrapup", nil
			}
			return "plan_turn", nil
		},
		map[string]bool{
			"plan_turn":       true,
			"finalize_wrapup": true,
		},
	)
	if err := graph.AddBranch("record_progress", branch); err != nil {
		return nil, fmt.Errorf("add wrapup branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_state"},
		{"load_state", "observe"},
		{"observe", "record_progress"},
		{"plan_turn", "compose_reply"},
		{"compose_reply", "finalize_turn"},
		{"finalize_turn", compose.END},
		{"finalize_wrapup", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("interview.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
