package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"
	"golang.org/x/sync/errgroup"
	contractx "github.com/napatw/storeops/agent/contract"
	statex "github.com/napatw/storeops/agent/state"
)

// compileWorkflowGraph wires the per-query pipeline: route, fan out to the
// selected specialists, synthesize, plan actions. Execution is deliberately
// NOT a node here: it runs only after human approval, against the persisted
// checkpoint.
func compileWorkflowGraph(
	ctx context.Context,
	router contractx.Router,
	registry contractx.Registry,
	synthesizer contractx.Synthesizer,
	planner contractx.Planner,
) (compose.Runnable[*statex.WorkflowState, *statex.WorkflowState], error) {
	graph := compose.NewGraph[*statex.WorkflowState, *statex.WorkflowState]()

	if err := graph.AddLambdaNode("route",
		compose.InvokableLambda(func(ctx context.Context, st *statex.WorkflowState) (*statex.WorkflowState, error) {
			decision, err := router.Classify(ctx, st.Query, st.ChatHistory)
			if err != nil {
				return nil, err
			}
			st.DirectResponse = decision.Direct
			st.AgentsToCall = decision.Agents
			if len(decision.Agents) >= 2 {
				st.QueryClassification = contractx.QueryComplex
			} else {
				st.QueryClassification = contractx.QuerySimple
			}
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add route node: %w", err)
	}

	if err := graph.AddLambdaNode("run_specialists",
		compose.InvokableLambda(func(ctx context.Context, st *statex.WorkflowState) (*statex.WorkflowState, error) {
			st.EnsureOutputsMap()

			var mu sync.Mutex
			g, gctx := errgroup.WithContext(ctx)
			for _, name := range st.AgentsToCall {
				name := name
				g.Go(func() error {
					spec, ok := registry.Specialist(name)
					if !ok {
						return fmt.Errorf("%w: no specialist registered for agent=%s", contractx.ErrValidation, name)
					}
					out, err := spec.Run(gctx, st.Query)
					if err != nil {
						return err
					}
					mu.Lock()
					st.AgentOutputs[name] = out
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add run_specialists node: %w", err)
	}

	if err := graph.AddLambdaNode("synthesize",
		compose.InvokableLambda(func(ctx context.Context, st *statex.WorkflowState) (*statex.WorkflowState, error) {
			answer, err := synthesizer.Synthesize(ctx, st.Query, st.ChatHistory, st.AgentOutputs, st.QueryClassification)
			if err != nil {
				return nil, err
			}
			st.Synthesis = answer
			st.Response = answer
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add synthesize node: %w", err)
	}

	if err := graph.AddLambdaNode("plan_actions",
		compose.InvokableLambda(func(ctx context.Context, st *statex.WorkflowState) (*statex.WorkflowState, error) {
			proposals, err := planner.Propose(ctx, st.Query, st.Synthesis)
			if err != nil {
				return nil, err
			}
			st.ProposedActions = proposals
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add plan_actions node: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, st *statex.WorkflowState) (string, error) {
			if st == nil {
				return "", fmt.Errorf("%w: workflow state is nil", contractx.ErrValidation)
			}
			if st.DirectResponse {
				return "synthesize", nil
			}
			return "run_specialists", nil
		},
		map[string]bool{
			"run_specialists": true,
			"synthesize":      true,
		},
	)

	if err := graph.AddEdge(compose.START, "route"); err != nil {
		return nil, fmt.Errorf("add edge start->route: %w", err)
	}
	if err := graph.AddBranch("route", branch); err != nil {
		return nil, fmt.Errorf("add route branch: %w", err)
	}
	if err := graph.AddEdge("run_specialists", "synthesize"); err != nil {
		return nil, fmt.Errorf("add edge specialists->synthesize: %w", err)
	}
	if err := graph.AddEdge("synthesize", "plan_actions"); err != nil {
		return nil, fmt.Errorf("add edge synthesize->plan: %w", err)
	}
	if err := graph.AddEdge("plan_actions", compose.END); err != nil {
		return nil, fmt.Errorf("add edge plan->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("workflow.query_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile workflow graph: %w", err)
	}
	return runner, nil
}
