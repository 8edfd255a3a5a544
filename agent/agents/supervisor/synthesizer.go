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

type synthesizerImpl struct {
	runner       compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
}

// NewSynthesizer builds the answer-merging stage.
func NewSynthesizer(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Synthesizer, error) {
	runner, err := compilePromptModelGraph(ctx, chatModel, "supervisor.synthesis_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &synthesizerImpl{runner: runner, systemPrompt: systemPrompt}, nil
}

func (s *synthesizerImpl) Synthesize(
	ctx context.Context,
	query string,
	history []contractx.ChatTurn,
	outputs map[contractx.AgentName]string,
	class contractx.QueryClass,
) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Request complexity: %s\n\n", class)
	fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", renderHistory(history))
	fmt.Fprintf(&b, "User question: %s\n\n", query)

	if findings := renderFindings(outputs); findings != "" {
		fmt.Fprintf(&b, "Specialist findings:\n\n%s", findings)
	} else {
		b.WriteString("No specialist findings are available. Answer directly from the conversation.")
	}

	out, err := invokePromptModel(ctx, s.runner, s.systemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return out, nil
}

// renderFindings renders one block per specialist in the fixed agent order,
// separated by horizontal rules.
func renderFindings(outputs map[contractx.AgentName]string) string {
	var blocks []string
	for _, name := range contractx.AllAgents() {
		content, ok := outputs[name]
		if !ok || strings.TrimSpace(content) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("## %s Agent\n\n%s", strings.ToUpper(string(name)), strings.TrimSpace(content)))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
