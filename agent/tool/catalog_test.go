package tool

import (
	"context"
	"strings"
	"testing"
	"time"

	contractx "github.com/napatw/storeops/agent/contract"
	"github.com/napatw/storeops/pkg/commercedb"
	"github.com/napatw/storeops/pkg/vectorstore"
)

type fakeData struct {
	contractx.DataStore

	sales     []commercedb.SalesDay
	inventory []commercedb.InventoryItem
	tickets   []commercedb.Ticket
	campaigns []commercedb.Campaign
	incidents []commercedb.Incident
}

func (f *fakeData) GetSales(ctx context.Context, start, end string) ([]commercedb.SalesDay, error) {
	return f.sales, nil
}

func (f *fakeData) GetInventory(ctx context.Context) ([]commercedb.InventoryItem, error) {
	return f.inventory, nil
}

func (f *fakeData) GetOpenTickets(ctx context.Context) ([]commercedb.Ticket, error) {
	return f.tickets, nil
}

func (f *fakeData) GetCampaigns(ctx context.Context) ([]commercedb.Campaign, error) {
	return f.campaigns, nil
}

func (f *fakeData) GetIncidents(ctx context.Context, incidentType string) ([]commercedb.Incident, error) {
	if incidentType == "" {
		return f.incidents, nil
	}
	var out []commercedb.Incident
	for _, inc := range f.incidents {
		if inc.Type == incidentType {
			out = append(out, inc)
		}
	}
	return out, nil
}

type fakeSearch struct {
	hits []vectorstore.Scored
}

func (f *fakeSearch) Search(ctx context.Context, collection, query string, limit int, filter map[string]string) ([]vectorstore.Scored, error) {
	return f.hits, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestForAgentToolSets(t *testing.T) {
	t.Parallel()

	deps := Deps{Data: &fakeData{}, Search: &fakeSearch{}, Now: fixedNow}
	for _, name := range contractx.AllAgents() {
		infos, executor := ForAgent(name, deps)
		if len(infos) != 5 {
			t.Fatalf("%s: expected 5 tool infos, got %d", name, len(infos))
		}
		if executor == nil {
			t.Fatalf("%s: executor must not be nil", name)
		}
	}
	if infos, executor := ForAgent(contractx.AgentName("bogus"), deps); infos != nil || executor != nil {
		t.Fatal("unknown agent must yield nil tool set")
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	_, executor := ForAgent(contractx.AgentSales, Deps{Data: &fakeData{}, Now: fixedNow})
	if _, err := executor(context.Background(), "no_such_tool", nil); err == nil {
		t.Fatal("expected error for unknown tool name")
	}
}

func TestSalesSummaryDefaultsAndTotals(t *testing.T) {
	t.Parallel()

	data := &fakeData{sales: []commercedb.SalesDay{
		{SaleDate: "2025-06-13", Revenue: 1000.50, Orders: 10},
		{SaleDate: "2025-06-14", Revenue: 2499.50, Orders: 15},
	}}
	_, executor := ForAgent(contractx.AgentSales, Deps{Data: data, Now: fixedNow})

	out, err := executor(context.Background(), "get_sales_summary", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Sales Summary (2025-06-08 to 2025-06-15):") {
		t.Fatalf("default date window missing: %s", out)
	}
	if !strings.Contains(out, "Total Revenue: $3,500.00") {
		t.Fatalf("revenue total missing: %s", out)
	}
	if !strings.Contains(out, "Total Orders: 25") {
		t.Fatalf("order total missing: %s", out)
	}
	// Newest day first in the breakdown.
	if strings.Index(out, "2025-06-14") > strings.Index(out, "2025-06-13") {
		t.Fatalf("daily breakdown not sorted descending: %s", out)
	}
}

func TestSalesSummaryEmpty(t *testing.T) {
	t.Parallel()

	_, executor := ForAgent(contractx.AgentSales, Deps{Data: &fakeData{}, Now: fixedNow})
	out, err := executor(context.Background(), "get_sales_summary", map[string]any{
		"start_date": "2025-01-01",
		"end_date":   "2025-01-07",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No sales data found between 2025-01-01 and 2025-01-07" {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestInventoryStatusBuckets(t *testing.T) {
	t.Parallel()

	data := &fakeData{inventory: []commercedb.InventoryItem{
		{ID: 1, Name: "Widget", Stock: 0, ReorderLevel: 10},
		{ID: 2, Name: "Gadget", Stock: 5, ReorderLevel: 10},
		{ID: 3, Name: "Gizmo", Stock: 50, ReorderLevel: 10},
	}}
	_, executor := ForAgent(contractx.AgentInventory, Deps{Data: data, Now: fixedNow})

	out, err := executor(context.Background(), "get_inventory_status", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"CRITICAL - Out of Stock (1):",
		"LOW - Below Reorder Level (1):",
		"OK - Adequate Stock (1):",
		"Widget (ID: 1): 0 units (reorder at 10)",
		"Gadget (ID: 2): 5 units (reorder at 10)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestCheckStockMixedResults(t *testing.T) {
	t.Parallel()

	data := &fakeData{inventory: []commercedb.InventoryItem{
		{ID: 1, Name: "Widget", Stock: 0, ReorderLevel: 10},
	}}
	_, executor := ForAgent(contractx.AgentInventory, Deps{Data: data, Now: fixedNow})

	out, err := executor(context.Background(), "check_stock_for_products", map[string]any{
		"product_ids": []any{float64(1), float64(99)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "❌ OUT Widget (ID: 1): 0 units") {
		t.Fatalf("missing out-of-stock line: %s", out)
	}
	if !strings.Contains(out, "❓ Product ID 99: Not found") {
		t.Fatalf("missing not-found line: %s", out)
	}
}

func TestOpenTicketsGroupedByPriority(t *testing.T) {
	t.Parallel()

	data := &fakeData{tickets: []commercedb.Ticket{
		{ID: 1, Subject: "Broken checkout", Category: "technical", Priority: "high"},
		{ID: 2, Subject: "Where is my order", Category: "shipping", Priority: "low"},
	}}
	_, executor := ForAgent(contractx.AgentSupport, Deps{Data: data, Now: fixedNow})

	out, err := executor(context.Background(), "get_open_tickets", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Open Support Tickets (2 total):") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "🔴 [1] Broken checkout (technical)") {
		t.Fatalf("missing high priority line: %s", out)
	}
	if !strings.Contains(out, "MEDIUM Priority (0):\n  None") {
		t.Fatalf("missing empty medium section: %s", out)
	}
}

func TestUnderperformingCampaignsThreshold(t *testing.T) {
	t.Parallel()

	data := &fakeData{campaigns: []commercedb.Campaign{
		{ID: 1, Name: "Summer Sale", Channel: "email", Spent: 5000, CTR: 0.4},
		{ID: 2, Name: "Brand Push", Channel: "social", Spent: 3000, CTR: 2.5},
	}}
	_, executor := ForAgent(contractx.AgentMarketing, Deps{Data: data, Now: fixedNow})

	out, err := executor(context.Background(), "get_underperforming_campaigns", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Summer Sale (ID: 1)") {
		t.Fatalf("expected campaign below threshold: %s", out)
	}
	if strings.Contains(out, "Brand Push") {
		t.Fatalf("campaign above threshold must be excluded: %s", out)
	}
	if !strings.Contains(out, "Total spent on underperforming: $5,000") {
		t.Fatalf("missing spend total: %s", out)
	}
}

func TestSearchSimilarIncidentsRendersHits(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{hits: []vectorstore.Scored{
		{Score: 0.92, Payload: map[string]any{
			"incident_type": "stockout",
			"description":   "Top seller ran out during promo",
			"root_cause":    "Reorder point too low",
			"action_taken":  "Emergency restock",
			"outcome":       "Recovered in 2 days",
		}},
	}}
	_, executor := ForAgent(contractx.AgentMemory, Deps{Data: &fakeData{}, Search: search, Now: fixedNow})

	out, err := executor(context.Background(), "search_similar_incidents", map[string]any{"query": "promo stockout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Similar Historical Incidents (1 found):",
		"[STOCKOUT] (Relevance: 92%)",
		"Root cause: Reorder point too low",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRecentIncidentsWindowFilter(t *testing.T) {
	t.Parallel()

	data := &fakeData{incidents: []commercedb.Incident{
		{Type: "stockout", Description: "old", OccurredAt: "2024-01-01T00:00:00Z", RootCause: "x", ActionTaken: "y"},
		{Type: "stockout", Description: "fresh", OccurredAt: "2025-06-10T00:00:00Z", RootCause: "x", ActionTaken: "y"},
	}}
	_, executor := ForAgent(contractx.AgentMemory, Deps{Data: data, Search: &fakeSearch{}, Now: fixedNow})

	out, err := executor(context.Background(), "get_recent_incidents", map[string]any{"days": float64(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "fresh") {
		t.Fatalf("recent incident missing: %s", out)
	}
	if strings.Contains(out, "old") {
		t.Fatalf("stale incident must be excluded: %s", out)
	}
}

func TestCatalogueListing(t *testing.T) {
	t.Parallel()

	infos, _ := ForAgent(contractx.AgentSales, Deps{Data: &fakeData{}, Now: fixedNow})
	listing := Catalogue(infos)
	if !strings.HasPrefix(listing, "Available tools:") {
		t.Fatalf("unexpected listing prefix: %s", listing)
	}
	if !strings.Contains(listing, "- get_sales_summary:") {
		t.Fatalf("tool entry missing: %s", listing)
	}
	if Catalogue(nil) != "" {
		t.Fatal("empty catalogue must render empty")
	}
}
