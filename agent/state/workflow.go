package state

import (
	"time"

	contractx "github.com/napatw/storeops/agent/contract"
)

// WorkflowStatus tracks where a thread's run stands. Only awaiting_approval
// threads can be resumed.
type WorkflowStatus string

const (
	StatusRunning          WorkflowStatus = "running"
	StatusAwaitingApproval WorkflowStatus = "awaiting_approval"
	StatusDone             WorkflowStatus = "done"
)

// WorkflowState is the single mutable record threaded through every stage of
// one query's lifecycle. Fields fill strictly in stage order; the whole
// record is what gets checkpointed at the suspend-before-execute point.
type WorkflowState struct {
	ThreadID string `json:"thread_id"`

	Query               string                           `json:"query"`
	ChatHistory         []contractx.ChatTurn             `json:"chat_history,omitempty"`
	QueryClassification contractx.QueryClass             `json:"query_classification,omitempty"`
	AgentsToCall        []contractx.AgentName            `json:"agents_to_call,omitempty"`
	DirectResponse      bool                             `json:"direct_response,omitempty"`
	AgentOutputs        map[contractx.AgentName]string   `json:"agent_outputs,omitempty"`
	Synthesis           string                           `json:"synthesis,omitempty"`
	ProposedActions     []contractx.ActionProposal       `json:"proposed_actions,omitempty"`
	ApprovedActionIDs   []string                         `json:"approved_action_ids,omitempty"`
	ActionResults       []string                         `json:"action_results,omitempty"`
	Response            string                           `json:"response,omitempty"`

	Status    WorkflowStatus `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewWorkflowState seeds a fresh run: query and history set, everything else
// empty, status running.
func NewWorkflowState(threadID, query string, history []contractx.ChatTurn, now time.Time) *WorkflowState {
	return &WorkflowState{
		ThreadID:     threadID,
		Query:        query,
		ChatHistory:  history,
		AgentOutputs: make(map[contractx.AgentName]string),
		Status:       StatusRunning,
		UpdatedAt:    now.UTC(),
	}
}

func (s *WorkflowState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureOutputsMap makes sure AgentOutputs is initialized (a state loaded
// from JSON may have dropped the empty map).
func (s *WorkflowState) EnsureOutputsMap() {
	if s.AgentOutputs == nil {
		s.AgentOutputs = make(map[contractx.AgentName]string)
	}
}

// FindProposal returns the proposal with the given id, if present.
func (s *WorkflowState) FindProposal(id string) (contractx.ActionProposal, bool) {
	for _, p := range s.ProposedActions {
		if p.ID == id {
			return p, true
		}
	}
	return contractx.ActionProposal{}, false
}
