package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/napatw/storeops/agent/contract"
	"github.com/napatw/storeops/pkg/commercedb"
)

type fakeStore struct {
	contractx.DataStore

	products  map[int64]*commercedb.Product
	inventory map[int64]*commercedb.InventoryItem
	campaigns map[int64]*commercedb.Campaign
	tickets   map[int64]*commercedb.Ticket

	restocked []string
	paused    []int64
	resolved  []int64
	created   []string
	updateErr error
}

func (f *fakeStore) GetProduct(ctx context.Context, id int64) (*commercedb.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: product id=%d", commercedb.ErrNotFound, id)
}

func (f *fakeStore) GetProductInventory(ctx context.Context, id int64) (*commercedb.InventoryItem, error) {
	if item, ok := f.inventory[id]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("%w: inventory for product id=%d", commercedb.ErrNotFound, id)
}

func (f *fakeStore) GetCampaign(ctx context.Context, id int64) (*commercedb.Campaign, error) {
	if c, ok := f.campaigns[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: campaign id=%d", commercedb.ErrNotFound, id)
}

func (f *fakeStore) GetTicket(ctx context.Context, id int64) (*commercedb.Ticket, error) {
	if t, ok := f.tickets[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: ticket id=%d", commercedb.ErrNotFound, id)
}

func (f *fakeStore) UpdateStock(ctx context.Context, productID, quantity int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.restocked = append(f.restocked, fmt.Sprintf("%d+%d", productID, quantity))
	return nil
}

func (f *fakeStore) PauseCampaign(ctx context.Context, id int64) error {
	f.paused = append(f.paused, id)
	return nil
}

func (f *fakeStore) ResolveTicket(ctx context.Context, id int64) error {
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeStore) CreateTicket(ctx context.Context, subject, description, category, priority string) error {
	f.created = append(f.created, subject)
	return nil
}

func (f *fakeStore) ApplyDiscount(ctx context.Context, productID int64, percent float64) error {
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  map[int64]*commercedb.Product{3: {ID: 3, Name: "Widget", Price: 40.00}},
		inventory: map[int64]*commercedb.InventoryItem{3: {ID: 3, Name: "Widget", Stock: 5}},
		campaigns: map[int64]*commercedb.Campaign{9: {ID: 9, Name: "Summer Sale"}},
		tickets:   map[int64]*commercedb.Ticket{12: {ID: 12, Subject: "Login broken"}},
	}
}

func proposals() []contractx.ActionProposal {
	return []contractx.ActionProposal{
		{ID: "aaaa1111", Type: contractx.ActionRestock, Params: map[string]any{"product_id": float64(3), "quantity": float64(50)}, Description: "Restock Widget"},
		{ID: "bbbb2222", Type: contractx.ActionPauseCampaign, Params: map[string]any{"campaign_id": float64(9)}, Description: "Pause Summer Sale"},
		{ID: "cccc3333", Type: contractx.ActionResolveTicket, Params: map[string]any{"ticket_id": float64(12)}, Description: "Resolve login ticket"},
	}
}

func TestExecuteAppliesOnlyApprovedInOrder(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	exec := NewExecutor(store)

	results := exec.Execute(context.Background(), proposals(), []string{"cccc3333", "aaaa1111"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	// Proposal order wins over approval order.
	if results[0] != "✅ Restocked 'Widget': 5 → 55 units (+50)" {
		t.Fatalf("unexpected first result: %s", results[0])
	}
	if results[1] != "✅ Resolved ticket ID 12" {
		t.Fatalf("unexpected second result: %s", results[1])
	}
	if len(store.paused) != 0 {
		t.Fatalf("unapproved campaign pause ran: %v", store.paused)
	}
}

func TestExecuteStaleApprovalIgnored(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(newFakeStore())
	results := exec.Execute(context.Background(), proposals(), []string{"zzzz9999"})
	if len(results) != 0 {
		t.Fatalf("stale id must produce no results, got %v", results)
	}
}

func TestExecuteEmptyApprovalSet(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(newFakeStore())
	if results := exec.Execute(context.Background(), proposals(), nil); len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestExecuteMissingTargets(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(newFakeStore())
	ps := []contractx.ActionProposal{
		{ID: "a", Type: contractx.ActionRestock, Params: map[string]any{"product_id": float64(99)}},
		{ID: "b", Type: contractx.ActionPauseCampaign, Params: map[string]any{"campaign_id": float64(99)}},
		{ID: "c", Type: contractx.ActionResolveTicket, Params: map[string]any{"ticket_id": float64(99)}},
	}
	results := exec.Execute(context.Background(), ps, []string{"a", "b", "c"})
	want := []string{
		"❌ Product ID 99 not found.",
		"❌ Campaign ID 99 not found.",
		"❌ Ticket ID 99 not found.",
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result %d = %q, want %q", i, results[i], want[i])
		}
	}
}

func TestExecuteUnknownTypeAndFailureContainment(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.updateErr = errors.New("db locked")
	exec := NewExecutor(store)

	ps := []contractx.ActionProposal{
		{ID: "a", Type: contractx.ActionType("launch_rocket"), Description: "nope"},
		{ID: "b", Type: contractx.ActionRestock, Params: map[string]any{"product_id": float64(3)}, Description: "Restock Widget"},
		{ID: "c", Type: contractx.ActionPauseCampaign, Params: map[string]any{"campaign_id": float64(9)}, Description: "Pause"},
	}
	results := exec.Execute(context.Background(), ps, []string{"a", "b", "c"})
	if results[0] != "⚠ Unknown action: launch_rocket" {
		t.Fatalf("unexpected unknown-type result: %s", results[0])
	}
	if !strings.HasPrefix(results[1], "✗ Failed: Restock Widget - ") {
		t.Fatalf("unexpected failure result: %s", results[1])
	}
	// The batch continues past the failure.
	if results[2] != "✅ Paused campaign 'Summer Sale'" {
		t.Fatalf("unexpected third result: %s", results[2])
	}
}

func TestExecuteDiscountPriceMath(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(newFakeStore())
	ps := []contractx.ActionProposal{
		{ID: "a", Type: contractx.ActionDiscount, Params: map[string]any{"product_id": float64(3), "percent": float64(15)}},
	}
	results := exec.Execute(context.Background(), ps, []string{"a"})
	if results[0] != "✅ Applied 15% discount on 'Widget': $40.00 → $34.00" {
		t.Fatalf("unexpected discount result: %s", results[0])
	}
}

func TestExecuteCreateTicketDefaults(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	exec := NewExecutor(store)
	ps := []contractx.ActionProposal{
		{ID: "a", Type: contractx.ActionCreateTicket, Params: map[string]any{"subject": "Refund backlog"}},
	}
	results := exec.Execute(context.Background(), ps, []string{"a"})
	if results[0] != "✅ Created medium priority ticket: 'Refund backlog'" {
		t.Fatalf("unexpected create result: %s", results[0])
	}
	if len(store.created) != 1 || store.created[0] != "Refund backlog" {
		t.Fatalf("ticket not created: %v", store.created)
	}
}

func TestExecuteMissingRequiredParam(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(newFakeStore())
	ps := []contractx.ActionProposal{
		{ID: "a", Type: contractx.ActionRestock, Params: map[string]any{}, Description: "Restock something"},
	}
	results := exec.Execute(context.Background(), ps, []string{"a"})
	if !strings.HasPrefix(results[0], "✗ Failed: Restock something - ") {
		t.Fatalf("unexpected result for missing param: %s", results[0])
	}
}
