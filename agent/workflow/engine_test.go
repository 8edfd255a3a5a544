package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/napatw/storeops/agent/contract"
	statex "github.com/napatw/storeops/agent/state"
)

type fakeRouter struct {
	decision contractx.RouteDecision
	err      error
}

func (f *fakeRouter) Classify(ctx context.Context, query string, history []contractx.ChatTurn) (contractx.RouteDecision, error) {
	return f.decision, f.err
}

type fakeSpecialist struct {
	output string
	err    error
}

func (f *fakeSpecialist) Run(ctx context.Context, query string) (string, error) {
	return f.output, f.err
}

type fakeRegistry struct {
	specialists map[contractx.AgentName]contractx.Specialist
}

func (f *fakeRegistry) Specialist(name contractx.AgentName) (contractx.Specialist, bool) {
	s, ok := f.specialists[name]
	return s, ok
}

func (f *fakeRegistry) Names() []contractx.AgentName {
	names := make([]contractx.AgentName, 0, len(f.specialists))
	for name := range f.specialists {
		names = append(names, name)
	}
	return names
}

type fakeSynthesizer struct {
	answer string

	gotOutputs map[contractx.AgentName]string
	gotClass   contractx.QueryClass
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, query string, history []contractx.ChatTurn, outputs map[contractx.AgentName]string, class contractx.QueryClass) (string, error) {
	f.gotOutputs = outputs
	f.gotClass = class
	return f.answer, nil
}

type fakePlanner struct {
	proposals []contractx.ActionProposal
	called    bool
}

func (f *fakePlanner) Propose(ctx context.Context, query, synthesis string) ([]contractx.ActionProposal, error) {
	f.called = true
	return f.proposals, nil
}

type fakeExecutor struct {
	results     []string
	gotApproved []string
}

func (f *fakeExecutor) Execute(ctx context.Context, proposals []contractx.ActionProposal, approvedIDs []string) []string {
	f.gotApproved = approvedIDs
	return f.results
}

type fakeNotifier struct {
	notified int
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, st *statex.WorkflowState) error {
	f.notified++
	return f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, router contractx.Router, registry contractx.Registry, synth contractx.Synthesizer, planner contractx.Planner, exec contractx.ActionExecutor, store statex.Store, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append(opts, WithClock(fixedClock))
	engine, err := NewEngine(context.Background(), router, registry, synth, planner, exec, store, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestRunQueryDirectPath(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{Direct: true}}
	synth := &fakeSynthesizer{answer: "Hello! How can I help?"}
	planner := &fakePlanner{}
	store := statex.NewMemoryStore()
	engine := newTestEngine(t, router, &fakeRegistry{}, synth, planner, &fakeExecutor{}, store)

	res, err := engine.RunQuery(context.Background(), "t1", "hi there", nil)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if res.AwaitingApproval {
		t.Fatal("direct path must not suspend")
	}
	if res.Response != "Hello! How can I help?" {
		t.Fatalf("unexpected response: %q", res.Response)
	}
	if !planner.called {
		t.Fatal("planner must run on the direct path too")
	}
	if synth.gotClass != contractx.QuerySimple {
		t.Fatalf("direct path classification = %s, want simple", synth.gotClass)
	}

	st, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("checkpoint missing: %v", err)
	}
	if st.Status != statex.StatusDone {
		t.Fatalf("status = %s, want done", st.Status)
	}
}

func TestRunQueryDirectPathCanSuspend(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{Direct: true}}
	planner := &fakePlanner{proposals: []contractx.ActionProposal{
		{ID: "aaaa1111", Type: contractx.ActionCreateTicket, Description: "Open a ticket"},
	}}
	store := statex.NewMemoryStore()
	engine := newTestEngine(t, router, &fakeRegistry{}, &fakeSynthesizer{answer: "I will open a ticket."}, planner, &fakeExecutor{}, store)

	res, err := engine.RunQuery(context.Background(), "t1", "please file a ticket for me", nil)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if !res.AwaitingApproval {
		t.Fatal("direct-path proposals must still suspend for approval")
	}
	if len(res.ProposedActions) != 1 || res.ProposedActions[0].ID != "aaaa1111" {
		t.Fatalf("proposals not surfaced: %v", res.ProposedActions)
	}

	st, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("checkpoint missing: %v", err)
	}
	if st.Status != statex.StatusAwaitingApproval {
		t.Fatalf("status = %s, want awaiting_approval", st.Status)
	}
}

func TestRunQueryFansOutAndClassifies(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{
		Agents: []contractx.AgentName{contractx.AgentSales, contractx.AgentInventory},
	}}
	registry := &fakeRegistry{specialists: map[contractx.AgentName]contractx.Specialist{
		contractx.AgentSales:     &fakeSpecialist{output: "revenue fine"},
		contractx.AgentInventory: &fakeSpecialist{output: "two items low"},
	}}
	synth := &fakeSynthesizer{answer: "combined answer"}
	engine := newTestEngine(t, router, registry, synth, &fakePlanner{}, &fakeExecutor{}, statex.NewMemoryStore())

	res, err := engine.RunQuery(context.Background(), "t1", "how are sales and stock?", nil)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if res.AgentOutputs[contractx.AgentSales] != "revenue fine" || res.AgentOutputs[contractx.AgentInventory] != "two items low" {
		t.Fatalf("specialist outputs not collected: %v", res.AgentOutputs)
	}
	if synth.gotClass != contractx.QueryComplex {
		t.Fatalf("two-agent run classification = %s, want complex", synth.gotClass)
	}
	if synth.gotOutputs[contractx.AgentSales] != "revenue fine" {
		t.Fatalf("synthesizer did not receive outputs: %v", synth.gotOutputs)
	}
}

func TestRunQuerySpecialistErrorIsFatal(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{Agents: []contractx.AgentName{contractx.AgentSales}}}
	registry := &fakeRegistry{specialists: map[contractx.AgentName]contractx.Specialist{
		contractx.AgentSales: &fakeSpecialist{err: errors.New("model down")},
	}}
	engine := newTestEngine(t, router, registry, &fakeSynthesizer{}, &fakePlanner{}, &fakeExecutor{}, statex.NewMemoryStore())

	if _, err := engine.RunQuery(context.Background(), "t1", "q", nil); err == nil {
		t.Fatal("expected error from failing specialist")
	}
}

func TestRunQuerySuspendsOnProposals(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{Agents: []contractx.AgentName{contractx.AgentInventory}}}
	registry := &fakeRegistry{specialists: map[contractx.AgentName]contractx.Specialist{
		contractx.AgentInventory: &fakeSpecialist{output: "widget out of stock"},
	}}
	planner := &fakePlanner{proposals: []contractx.ActionProposal{
		{ID: "aaaa1111", Type: contractx.ActionRestock, Description: "Restock Widget"},
	}}
	notifier := &fakeNotifier{}
	store := statex.NewMemoryStore()
	engine := newTestEngine(t, router, registry, &fakeSynthesizer{answer: "restock needed"}, planner, &fakeExecutor{}, store, WithNotifier(notifier))

	res, err := engine.RunQuery(context.Background(), "t1", "check stock", nil)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if !res.AwaitingApproval {
		t.Fatal("expected suspension on pending proposals")
	}
	if len(res.ActionResults) != 0 {
		t.Fatalf("nothing may execute before approval, got %v", res.ActionResults)
	}
	if notifier.notified != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.notified)
	}

	st, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("checkpoint missing: %v", err)
	}
	if st.Status != statex.StatusAwaitingApproval {
		t.Fatalf("status = %s, want awaiting_approval", st.Status)
	}
	if len(st.ProposedActions) != 1 || st.ProposedActions[0].ID != "aaaa1111" {
		t.Fatalf("proposals not checkpointed: %v", st.ProposedActions)
	}
}

func TestRunQueryNotifierFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{decision: contractx.RouteDecision{Agents: []contractx.AgentName{contractx.AgentInventory}}}
	registry := &fakeRegistry{specialists: map[contractx.AgentName]contractx.Specialist{
		contractx.AgentInventory: &fakeSpecialist{output: "out of stock"},
	}}
	planner := &fakePlanner{proposals: []contractx.ActionProposal{{ID: "a", Type: contractx.ActionRestock}}}
	engine := newTestEngine(t, router, registry, &fakeSynthesizer{answer: "x"}, planner, &fakeExecutor{}, statex.NewMemoryStore(),
		WithNotifier(&fakeNotifier{err: errors.New("webhook down")}))

	res, err := engine.RunQuery(context.Background(), "t1", "q", nil)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if !res.AwaitingApproval {
		t.Fatal("suspension must survive a notification failure")
	}
}

func suspendedState(t *testing.T, store statex.Store) {
	t.Helper()
	st := statex.NewWorkflowState("t1", "check stock", nil, fixedClock())
	st.Synthesis = "restock needed"
	st.Response = "restock needed"
	st.ProposedActions = []contractx.ActionProposal{
		{ID: "aaaa1111", Type: contractx.ActionRestock, Description: "Restock Widget"},
		{ID: "bbbb2222", Type: contractx.ActionPauseCampaign, Description: "Pause campaign"},
	}
	st.Status = statex.StatusAwaitingApproval
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}
}

func TestResumeExecutesApprovedSubset(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	suspendedState(t, store)
	exec := &fakeExecutor{results: []string{"✅ Restocked 'Widget': 0 → 50 units (+50)"}}
	engine := newTestEngine(t, &fakeRouter{}, &fakeRegistry{}, &fakeSynthesizer{}, &fakePlanner{}, exec, store)

	res, err := engine.Resume(context.Background(), "t1", []string{"aaaa1111", "stale999"})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.AwaitingApproval {
		t.Fatal("resumed thread must be terminal")
	}
	// Stale id filtered before the executor sees it.
	if len(exec.gotApproved) != 1 || exec.gotApproved[0] != "aaaa1111" {
		t.Fatalf("executor approvals = %v, want [aaaa1111]", exec.gotApproved)
	}
	if !strings.Contains(res.Response, "### Executed Actions") {
		t.Fatalf("results not appended to response: %q", res.Response)
	}
	if !strings.Contains(res.Response, "- ✅ Restocked 'Widget': 0 → 50 units (+50)") {
		t.Fatalf("result line missing: %q", res.Response)
	}

	st, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("checkpoint missing after resume: %v", err)
	}
	if st.Status != statex.StatusDone {
		t.Fatalf("status = %s, want done", st.Status)
	}
}

func TestResultDoesNotAliasWorkflowState(t *testing.T) {
	t.Parallel()

	st := statex.NewWorkflowState("t1", "check stock", nil, fixedClock())
	st.AgentsToCall = []contractx.AgentName{contractx.AgentInventory}
	st.AgentOutputs[contractx.AgentInventory] = "widget out of stock"
	st.ProposedActions = []contractx.ActionProposal{
		{ID: "aaaa1111", Type: contractx.ActionRestock, Description: "Restock Widget"},
	}
	st.ActionResults = []string{"pending"}

	res := resultFrom(st)

	// A caller scribbling on the result must not reach the state the engine
	// goes on to checkpoint.
	res.AgentOutputs[contractx.AgentInventory] = "tampered"
	res.ProposedActions[0].Description = "tampered"
	res.AgentsToCall[0] = contractx.AgentSales
	res.ActionResults[0] = "tampered"

	if st.AgentOutputs[contractx.AgentInventory] != "widget out of stock" {
		t.Fatalf("state output mutated through result: %v", st.AgentOutputs)
	}
	if st.ProposedActions[0].Description != "Restock Widget" {
		t.Fatalf("state proposal mutated through result: %v", st.ProposedActions)
	}
	if st.AgentsToCall[0] != contractx.AgentInventory {
		t.Fatalf("state routing mutated through result: %v", st.AgentsToCall)
	}
	if st.ActionResults[0] != "pending" {
		t.Fatalf("state results mutated through result: %v", st.ActionResults)
	}
}

func TestResumeRejectAll(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	suspendedState(t, store)
	exec := &fakeExecutor{}
	engine := newTestEngine(t, &fakeRouter{}, &fakeRegistry{}, &fakeSynthesizer{}, &fakePlanner{}, exec, store)

	res, err := engine.Resume(context.Background(), "t1", nil)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if strings.Contains(res.Response, "### Executed Actions") {
		t.Fatalf("reject-all must not append a results section: %q", res.Response)
	}
	if res.Response != "restock needed" {
		t.Fatalf("response changed on reject-all: %q", res.Response)
	}
}

func TestResumeWithoutCheckpoint(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, &fakeRouter{}, &fakeRegistry{}, &fakeSynthesizer{}, &fakePlanner{}, &fakeExecutor{}, statex.NewMemoryStore())
	_, err := engine.Resume(context.Background(), "missing", []string{"a"})
	if !errors.Is(err, contractx.ErrNoCheckpoint) {
		t.Fatalf("expected ErrNoCheckpoint, got %v", err)
	}
}

func TestResumeTwiceFails(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	suspendedState(t, store)
	engine := newTestEngine(t, &fakeRouter{}, &fakeRegistry{}, &fakeSynthesizer{}, &fakePlanner{}, &fakeExecutor{}, store)

	if _, err := engine.Resume(context.Background(), "t1", nil); err != nil {
		t.Fatalf("first Resume() error = %v", err)
	}
	if _, err := engine.Resume(context.Background(), "t1", nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("second resume must fail validation, got %v", err)
	}
}
