package specialist

import (
	"context"
	"fmt"

	contractx "github.com/napatw/storeops/agent/contract"
	llmx "github.com/napatw/storeops/agent/llm"
	promptx "github.com/napatw/storeops/agent/prompt"
	toolx "github.com/napatw/storeops/agent/tool"
)

type registryImpl struct {
	specialists map[contractx.AgentName]contractx.Specialist
	names       []contractx.AgentName
}

func (r *registryImpl) Specialist(name contractx.AgentName) (contractx.Specialist, bool) {
	s, ok := r.specialists[name]
	return s, ok
}

func (r *registryImpl) Names() []contractx.AgentName {
	out := make([]contractx.AgentName, len(r.names))
	copy(out, r.names)
	return out
}

// Option adjusts registry construction.
type Option func(*registryOptions)

type registryOptions struct {
	maxToolIterations int
}

// WithMaxToolIterations caps the tool loop per specialist query.
func WithMaxToolIterations(n int) Option {
	return func(o *registryOptions) { o.maxToolIterations = n }
}

// NewRegistry builds one specialist per domain, each with its own chat model
// and tool set.
func NewRegistry(ctx context.Context, cfg llmx.Config, deps toolx.Deps, opts ...Option) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var ro registryOptions
	for _, opt := range opts {
		opt(&ro)
	}

	prompts := promptx.LoadSet()

	specialists := make(map[contractx.AgentName]contractx.Specialist, len(contractx.AllAgents()))
	names := contractx.AllAgents()
	for _, name := range names {
		modelCfg := cfg.OpenRouterFor(llmx.RoleFor(name))
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent=%s: %v", contractx.ErrModelInvoke, name, err)
		}
		spec, err := newSpecialist(ctx, name, chatModel, prompts.ForAgent(name), deps, ro.maxToolIterations)
		if err != nil {
			return nil, err
		}
		specialists[name] = spec
	}

	return &registryImpl{specialists: specialists, names: names}, nil
}
