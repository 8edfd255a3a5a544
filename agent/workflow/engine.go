package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/napatw/storeops/agent/contract"
	statex "github.com/napatw/storeops/agent/state"
)

// Notifier publishes an approval request when a run suspends. Implementations
// must tolerate being handed a state they do not recognize.
type Notifier interface {
	Notify(ctx context.Context, st *statex.WorkflowState) error
}

// Result is what a caller gets back from one engine call.
type Result struct {
	ThreadID         string
	Response         string
	AgentsToCall     []contractx.AgentName
	AgentOutputs     map[contractx.AgentName]string
	ProposedActions  []contractx.ActionProposal
	ActionResults    []string
	AwaitingApproval bool
}

// Engine drives the query pipeline and owns the suspend/resume boundary:
// side-effecting actions run only through Resume, against a checkpoint that
// was persisted when the run suspended.
type Engine struct {
	runner      compose.Runnable[*statex.WorkflowState, *statex.WorkflowState]
	executor    contractx.ActionExecutor
	checkpoints statex.Store
	notifier    Notifier
	now         func() time.Time
}

// EngineOption adjusts engine construction.
type EngineOption func(*Engine)

// WithNotifier attaches an approval notifier. Notification failures are
// logged, never fatal: the checkpoint is already durable by then.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(
	ctx context.Context,
	router contractx.Router,
	registry contractx.Registry,
	synthesizer contractx.Synthesizer,
	planner contractx.Planner,
	executor contractx.ActionExecutor,
	checkpoints statex.Store,
	opts ...EngineOption,
) (*Engine, error) {
	if checkpoints == nil {
		return nil, fmt.Errorf("%w: checkpoint store is required", contractx.ErrValidation)
	}
	runner, err := compileWorkflowGraph(ctx, router, registry, synthesizer, planner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	e := &Engine{
		runner:      runner,
		executor:    executor,
		checkpoints: checkpoints,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunQuery processes one user query on a thread. When the planner proposes
// actions the run suspends: state is checkpointed as awaiting_approval and
// nothing is executed until Resume.
func (e *Engine) RunQuery(ctx context.Context, threadID, query string, history []contractx.ChatTurn) (*Result, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, fmt.Errorf("%w: thread id is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	st := statex.NewWorkflowState(threadID, query, history, e.now())
	st, err := e.runner.Invoke(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("run query on thread=%s: %w", threadID, err)
	}

	if len(st.ProposedActions) > 0 {
		st.Status = statex.StatusAwaitingApproval
	} else {
		st.Status = statex.StatusDone
	}
	st.Touch(e.now())
	if err := e.checkpoints.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("checkpoint thread=%s: %w", threadID, err)
	}

	if st.Status == statex.StatusAwaitingApproval {
		log.Info().Str("thread_id", threadID).Int("proposals", len(st.ProposedActions)).Msg("run suspended for approval")
		if e.notifier != nil {
			if err := e.notifier.Notify(ctx, st); err != nil {
				log.Warn().Err(err).Str("thread_id", threadID).Msg("approval notification failed")
			}
		}
	}

	return resultFrom(st), nil
}

// Resume finishes a suspended thread: it loads the checkpoint, applies the
// approved subset of the proposals, and persists the terminal state.
// Approval ids that match no proposal are silently ignored.
func (e *Engine) Resume(ctx context.Context, threadID string, approvedIDs []string) (*Result, error) {
	st, err := e.checkpoints.Load(ctx, strings.TrimSpace(threadID))
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return nil, fmt.Errorf("%w: thread=%s", contractx.ErrNoCheckpoint, threadID)
		}
		return nil, fmt.Errorf("load checkpoint thread=%s: %w", threadID, err)
	}
	if st.Status != statex.StatusAwaitingApproval {
		return nil, fmt.Errorf("%w: thread=%s status=%s is not awaiting approval", contractx.ErrValidation, threadID, st.Status)
	}

	var approved []string
	for _, id := range approvedIDs {
		if _, ok := st.FindProposal(strings.TrimSpace(id)); ok {
			approved = append(approved, strings.TrimSpace(id))
		}
	}
	st.ApprovedActionIDs = approved
	st.ActionResults = e.executor.Execute(ctx, st.ProposedActions, approved)

	if len(st.ActionResults) > 0 {
		var b strings.Builder
		b.WriteString(st.Response)
		b.WriteString("\n\n### Executed Actions\n")
		for _, line := range st.ActionResults {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		st.Response = strings.TrimRight(b.String(), "\n")
	}

	st.Status = statex.StatusDone
	st.Touch(e.now())
	if err := e.checkpoints.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("checkpoint thread=%s: %w", threadID, err)
	}

	log.Info().Str("thread_id", st.ThreadID).Int("executed", len(st.ActionResults)).Msg("run resumed to completion")
	return resultFrom(st), nil
}

// resultFrom copies the state's collections so a caller holding the Result
// cannot mutate what the engine checkpoints.
func resultFrom(st *statex.WorkflowState) *Result {
	var outputs map[contractx.AgentName]string
	if st.AgentOutputs != nil {
		outputs = make(map[contractx.AgentName]string, len(st.AgentOutputs))
		for name, out := range st.AgentOutputs {
			outputs[name] = out
		}
	}
	return &Result{
		ThreadID:         st.ThreadID,
		Response:         st.Response,
		AgentsToCall:     append([]contractx.AgentName(nil), st.AgentsToCall...),
		AgentOutputs:     outputs,
		ProposedActions:  append([]contractx.ActionProposal(nil), st.ProposedActions...),
		ActionResults:    append([]string(nil), st.ActionResults...),
		AwaitingApproval: st.Status == statex.StatusAwaitingApproval,
	}
}
