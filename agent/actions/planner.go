package actions

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/napatw/storeops/agent/contract"
)

type plannerImpl struct {
	runner       compose.Runnable[map[string]any, *schema.Message]
	data         contractx.DataStore
	systemPrompt string
}

// NewPlanner builds the action-proposal stage. The data store feeds a fresh
// operational snapshot into every planning call.
func NewPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, data contractx.DataStore) (contractx.Planner, error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add planner prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add planner model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add planner edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add planner edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add planner edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("actions.planner_graph"))
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}

	return &plannerImpl{runner: runner, data: data, systemPrompt: systemPrompt}, nil
}

func (p *plannerImpl) Propose(ctx context.Context, query, synthesis string) ([]contractx.ActionProposal, error) {
	msg, err := p.runner.Invoke(ctx, map[string]any{
		"system": p.systemPrompt,
		"input":  p.buildContext(ctx, query, synthesis),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: propose actions: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty planner response", contractx.ErrModelInvoke)
	}
	return ParseProposals(msg.Content), nil
}

// buildContext assembles the planning input: the request, the synthesized
// analysis, and a live snapshot of actionable state. Snapshot reads that fail
// are omitted rather than failing the stage.
func (p *plannerImpl) buildContext(ctx context.Context, query, synthesis string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## User Request\n%s\n\n", query)
	fmt.Fprintf(&b, "## Analysis Summary\n%s\n", synthesis)

	if p.data == nil {
		return b.String()
	}

	if out, err := p.data.GetOutOfStock(ctx); err != nil {
		log.Warn().Err(err).Msg("planner snapshot: out-of-stock read failed")
	} else if len(out) > 0 {
		b.WriteString("\n## Out of Stock\n")
		for _, item := range out {
			fmt.Fprintf(&b, "- %s (product_id=%d)\n", item.Name, item.ID)
		}
	}

	if low, err := p.data.GetLowStock(ctx); err != nil {
		log.Warn().Err(err).Msg("planner snapshot: low-stock read failed")
	} else if len(low) > 0 {
		b.WriteString("\n## Low Stock\n")
		for _, item := range low {
			fmt.Fprintf(&b, "- %s (product_id=%d): %d units, reorder at %d\n", item.Name, item.ID, item.Stock, item.ReorderLevel)
		}
	}

	if campaigns, err := p.data.GetCampaigns(ctx); err != nil {
		log.Warn().Err(err).Msg("planner snapshot: campaigns read failed")
	} else if len(campaigns) > 0 {
		b.WriteString("\n## Active Campaigns\n")
		for _, c := range campaigns {
			fmt.Fprintf(&b, "- %s (campaign_id=%d): CTR %.2f%%, spent $%.0f of $%.0f\n", c.Name, c.ID, c.CTR, c.Spent, c.Budget)
		}
	}

	if tickets, err := p.data.GetOpenTickets(ctx); err != nil {
		log.Warn().Err(err).Msg("planner snapshot: open-tickets read failed")
	} else if len(tickets) > 0 {
		b.WriteString("\n## Open Tickets\n")
		for _, t := range tickets {
			fmt.Fprintf(&b, "- [%s] %s (ticket_id=%d, %s)\n", t.Priority, t.Subject, t.ID, t.Category)
		}
	}

	return b.String()
}
