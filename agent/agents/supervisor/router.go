package supervisor

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/napatw/storeops/agent/contract"
)

type routerImpl struct {
	runner       compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
}

// NewRouter builds the routing classifier on top of a plain chat model.
func NewRouter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Router, error) {
	runner, err := compilePromptModelGraph(ctx, chatModel, "supervisor.router_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{runner: runner, systemPrompt: systemPrompt}, nil
}

func (r *routerImpl) Classify(ctx context.Context, query string, history []contractx.ChatTurn) (contractx.RouteDecision, error) {
	input := fmt.Sprintf("Conversation so far:\n%s\n\nUser question: %s", renderHistory(history), query)
	out, err := invokePromptModel(ctx, r.runner, r.systemPrompt, input)
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("route query: %w", err)
	}
	return parseRoute(out), nil
}

// parseRoute turns the model's comma list into a validated decision. "none"
// means the query needs no specialist; anything unusable falls back to the
// sales and memory pair.
func parseRoute(raw string) contractx.RouteDecision {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.Trim(normalized, ".")
	if normalized == "none" {
		return contractx.RouteDecision{Direct: true}
	}

	seen := make(map[contractx.AgentName]struct{})
	var agents []contractx.AgentName
	for _, part := range strings.Split(normalized, ",") {
		name, ok := contractx.ParseAgentName(strings.TrimSpace(part))
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		agents = append(agents, name)
	}

	if len(agents) == 0 {
		return contractx.RouteDecision{Agents: []contractx.AgentName{contractx.AgentSales, contractx.AgentMemory}}
	}
	return contractx.RouteDecision{Agents: agents}
}
