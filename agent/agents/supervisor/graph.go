package supervisor

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/napatw/storeops/agent/contract"
)

// compilePromptModelGraph builds the shared prompt->model pipeline. The
// system prompt travels as a template variable so literal braces in prompt
// text never collide with FString placeholders.
func compilePromptModelGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
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
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}

func invokePromptModel(
	ctx context.Context,
	runner compose.Runnable[map[string]any, *schema.Message],
	systemPrompt, input string,
) (string, error) {
	msg, err := runner.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"input":  input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty model response", contractx.ErrModelInvoke)
	}
	return strings.TrimSpace(msg.Content), nil
}

// renderHistory formats prior turns for a prompt block. Empty history renders
// as an explicit marker so the model never invents context.
func renderHistory(history []contractx.ChatTurn) string {
	if len(history) == 0 {
		return "(no prior conversation)"
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
