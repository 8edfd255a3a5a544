package contract

// AgentName identifies one of the domain specialists. The set is closed:
// routing output and executor dispatch must both validate against it.
type AgentName string

const (
	AgentSales     AgentName = "sales"
	AgentInventory AgentName = "inventory"
	AgentSupport   AgentName = "support"
	AgentMarketing AgentName = "marketing"
	AgentMemory    AgentName = "memory"
)

// AllAgents returns the closed specialist set in canonical order.
func AllAgents() []AgentName {
	return []AgentName{AgentSales, AgentInventory, AgentSupport, AgentMarketing, AgentMemory}
}

// ParseAgentName validates a raw token against the closed set.
func ParseAgentName(raw string) (AgentName, bool) {
	switch AgentName(raw) {
	case AgentSales, AgentInventory, AgentSupport, AgentMarketing, AgentMemory:
		return AgentName(raw), true
	default:
		return "", false
	}
}

// ActionType is the closed set of side-effecting operations the planner may
// propose. Unknown values are kept through parsing (validation is deferred to
// execution) but never guessed at.
type ActionType string

const (
	ActionRestock       ActionType = "restock"
	ActionPauseCampaign ActionType = "pause_campaign"
	ActionDiscount      ActionType = "discount"
	ActionCreateTicket  ActionType = "create_ticket"
	ActionResolveTicket ActionType = "resolve_ticket"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionRestock, ActionPauseCampaign, ActionDiscount, ActionCreateTicket, ActionResolveTicket:
		return true
	default:
		return false
	}
}

// RequiredParams lists the params a proposal of this type needs at execution
// time. Empty for unknown types.
func (t ActionType) RequiredParams() []string {
	switch t {
	case ActionRestock:
		return []string{"product_id", "quantity"}
	case ActionPauseCampaign:
		return []string{"campaign_id"}
	case ActionDiscount:
		return []string{"product_id", "percent"}
	case ActionCreateTicket:
		return []string{"subject", "description", "category"}
	case ActionResolveTicket:
		return []string{"ticket_id"}
	default:
		return nil
	}
}

// ActionProposal is a single proposed side-effecting operation awaiting
// human approval. IDs are generated server-side at proposal time and stay
// stable across the suspend/resume boundary.
type ActionProposal struct {
	ID          string         `json:"id"`
	Type        ActionType     `json:"type"`
	Params      map[string]any `json:"params,omitempty"`
	Description string         `json:"description"`
	Reason      string         `json:"reason,omitempty"`
}

// ChatTurn is one prior conversation turn. History is truncated by the
// caller before it enters the workflow; the engine stores what it is given.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryClass affects synthesis verbosity and tone, never routing.
type QueryClass string

const (
	QuerySimple  QueryClass = "simple"
	QueryComplex QueryClass = "complex"
)

// RouteDecision is the router's outcome. Direct means no specialist is
// needed and synthesis runs against the raw query alone.
type RouteDecision struct {
	Agents []AgentName
	Direct bool
}
