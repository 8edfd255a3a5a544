package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/napatw/storeops/agent/contract"
	toolx "github.com/napatw/storeops/agent/tool"
)

// defaultMaxToolIterations bounds the generate/execute loop for one query.
const defaultMaxToolIterations = 10

type specialistImpl struct {
	name          contractx.AgentName
	model         einomodel.ToolCallingChatModel
	executor      toolx.Executor
	allowedTools  map[string]struct{}
	systemPrompt  string
	maxIterations int
}

func newSpecialist(
	ctx context.Context,
	name contractx.AgentName,
	chatModel einomodel.ToolCallingChatModel,
	domainPrompt string,
	deps toolx.Deps,
	maxIterations int,
) (*specialistImpl, error) {
	infos, executor := toolx.ForAgent(name, deps)
	if len(infos) == 0 || executor == nil {
		return nil, fmt.Errorf("%w: no tool set for agent=%s", contractx.ErrValidation, name)
	}

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, name, err)
	}

	allowed := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if info == nil || strings.TrimSpace(info.Name) == "" {
			continue
		}
		allowed[info.Name] = struct{}{}
	}

	if maxIterations <= 0 {
		maxIterations = defaultMaxToolIterations
	}

	return &specialistImpl{
		name:          name,
		model:         toolModel,
		executor:      executor,
		allowedTools:  allowed,
		systemPrompt:  domainPrompt + "\n\n" + toolx.Catalogue(infos),
		maxIterations: maxIterations,
	}, nil
}

// Run drives the generate/execute loop until the model answers without tool
// calls or the iteration cap is hit. Tool failures are folded back into the
// transcript as text so the model can route around them.
func (s *specialistImpl) Run(ctx context.Context, query string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(s.systemPrompt),
		schema.UserMessage(query),
	}

	var last *schema.Message
	for i := 0; i < s.maxIterations; i++ {
		msg, err := s.model.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("%w: agent=%s invoke: %v", contractx.ErrModelInvoke, s.name, err)
		}
		last = msg

		if len(msg.ToolCalls) == 0 {
			return strings.TrimSpace(msg.Content), nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, schema.ToolMessage(s.runTool(ctx, call), call.ID))
		}
	}

	if last != nil && strings.TrimSpace(last.Content) != "" {
		return strings.TrimSpace(last.Content), nil
	}
	return fmt.Sprintf("The %s agent could not reach a final answer within the tool budget.", s.name), nil
}

func (s *specialistImpl) runTool(ctx context.Context, call schema.ToolCall) string {
	name := strings.TrimSpace(call.Function.Name)
	if _, ok := s.allowedTools[name]; !ok {
		return fmt.Sprintf("Unknown tool: %s", name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
	}

	out, err := s.executor(ctx, name, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}
