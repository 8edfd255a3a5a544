package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/napatw/storeops/agent/contract"
	openrouterx "github.com/napatw/storeops/pkg/openrouter"
)

// Role names one LLM-backed component. The three supervisor roles sit
// alongside the five specialists.
type Role string

const (
	RoleRouter    Role = "router"
	RoleSynthesis Role = "synthesis"
	RoleAction    Role = "action"
)

func RoleFor(agent contractx.AgentName) Role {
	return Role(agent)
}

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel    string `envconfig:"ROUTER_MODEL" split_words:"true"`
	SynthesisModel string `envconfig:"SYNTHESIS_MODEL" split_words:"true"`
	ActionModel    string `envconfig:"ACTION_MODEL" split_words:"true"`
	SalesModel     string `envconfig:"SALES_MODEL" split_words:"true"`
	InventoryModel string `envconfig:"INVENTORY_MODEL" split_words:"true"`
	SupportModel   string `envconfig:"SUPPORT_MODEL" split_words:"true"`
	MarketingModel string `envconfig:"MARKETING_MODEL" split_words:"true"`
	MemoryModel    string `envconfig:"MEMORY_MODEL" split_words:"true"`

	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	SynthesisTemperature float32 `envconfig:"SYNTHESIS_TEMPERATURE" split_words:"true" default:"-1"`
	ActionTemperature    float32 `envconfig:"ACTION_TEMPERATURE" split_words:"true" default:"-1"`
	AgentTemperature     float32 `envconfig:"AGENT_TEMPERATURE" split_words:"true" default:"-1"`

	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model configuration for one role, falling back
// to the shared defaults when no per-role override is set.
func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := ""
	switch role {
	case RoleRouter:
		override = c.RouterModel
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case RoleSynthesis:
		override = c.SynthesisModel
		if c.SynthesisTemperature >= 0 {
			temp = c.SynthesisTemperature
		}
	case RoleAction:
		override = c.ActionModel
		if c.ActionTemperature >= 0 {
			temp = c.ActionTemperature
		}
	case RoleFor(contractx.AgentSales):
		override = c.SalesModel
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	case RoleFor(contractx.AgentInventory):
		override = c.InventoryModel
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	case RoleFor(contractx.AgentSupport):
		override = c.SupportModel
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	case RoleFor(contractx.AgentMarketing):
		override = c.MarketingModel
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	case RoleFor(contractx.AgentMemory):
		override = c.MemoryModel
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	}
	if v := strings.TrimSpace(override); v != "" {
		modelName = v
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
