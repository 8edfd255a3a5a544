package workflow

import (
	"context"
	"fmt"

	contractx "github.com/napatw/storeops/agent/contract"
	statex "github.com/napatw/storeops/agent/state"
	"github.com/napatw/storeops/pkg/qstash"
)

// approvalMessage is the webhook payload published when a run suspends. The
// receiving end renders it and collects the approval ids.
type approvalMessage struct {
	ThreadID  string                     `json:"thread_id"`
	Query     string                     `json:"query"`
	Synthesis string                     `json:"synthesis"`
	Actions   []contractx.ActionProposal `json:"actions"`
}

type qstashNotifier struct {
	client      *qstash.Client
	destination string
}

// NewQStashNotifier publishes approval requests to a webhook via QStash.
func NewQStashNotifier(client *qstash.Client, destination string) (Notifier, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: qstash client is required", contractx.ErrValidation)
	}
	if destination == "" {
		return nil, fmt.Errorf("%w: notification destination is required", contractx.ErrValidation)
	}
	return &qstashNotifier{client: client, destination: destination}, nil
}

func (n *qstashNotifier) Notify(ctx context.Context, st *statex.WorkflowState) error {
	if st == nil || len(st.ProposedActions) == 0 {
		return nil
	}
	return n.client.PublishJSON(ctx, n.destination, approvalMessage{
		ThreadID:  st.ThreadID,
		Query:     st.Query,
		Synthesis: st.Synthesis,
		Actions:   st.ProposedActions,
	})
}
