package contract

import (
	"context"

	"github.com/napatw/storeops/pkg/commercedb"
	"github.com/napatw/storeops/pkg/vectorstore"
)

// Specialist is one domain-scoped reasoning unit: it answers a query in
// natural language, calling its tools as it sees fit.
type Specialist interface {
	Run(ctx context.Context, query string) (string, error)
}

// Registry resolves specialists by validated agent name.
type Registry interface {
	Specialist(name AgentName) (Specialist, bool)
	Names() []AgentName
}

// Router classifies a query into the subset of specialists needed, or none.
type Router interface {
	Classify(ctx context.Context, query string, history []ChatTurn) (RouteDecision, error)
}

// Synthesizer merges specialist findings (possibly none) into one answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, history []ChatTurn, outputs map[AgentName]string, class QueryClass) (string, error)
}

// Planner derives structured action proposals from a synthesized answer.
// Malformed model output yields an empty slice, never an error; only the
// model call itself failing is an error.
type Planner interface {
	Propose(ctx context.Context, query, synthesis string) ([]ActionProposal, error)
}

// ActionExecutor applies approved proposals, one result line per approved
// proposal, in original proposal order. Failures are contained per action.
type ActionExecutor interface {
	Execute(ctx context.Context, proposals []ActionProposal, approvedIDs []string) []string
}

// DataStore is the read/write surface the tools and the executor need from
// the relational facade.
type DataStore interface {
	GetProduct(ctx context.Context, productID int64) (*commercedb.Product, error)
	GetAllProducts(ctx context.Context) ([]commercedb.Product, error)
	GetSales(ctx context.Context, start, end string) ([]commercedb.SalesDay, error)
	GetTopProducts(ctx context.Context, start, end string, limit int) ([]commercedb.TopProduct, error)
	GetSalesByRegion(ctx context.Context, start, end string) ([]commercedb.RegionSales, error)
	GetProductSales(ctx context.Context, productID int64, start, end string) ([]commercedb.Sale, error)
	GetInventory(ctx context.Context) ([]commercedb.InventoryItem, error)
	GetProductInventory(ctx context.Context, productID int64) (*commercedb.InventoryItem, error)
	GetLowStock(ctx context.Context) ([]commercedb.InventoryItem, error)
	GetOutOfStock(ctx context.Context) ([]commercedb.InventoryItem, error)
	GetOpenTickets(ctx context.Context) ([]commercedb.Ticket, error)
	GetTicket(ctx context.Context, ticketID int64) (*commercedb.Ticket, error)
	GetTicketsByCategory(ctx context.Context, category string) ([]commercedb.Ticket, error)
	GetTicketSummary(ctx context.Context) ([]commercedb.TicketGroup, error)
	GetTicketTrends(ctx context.Context, start, end string) ([]commercedb.TicketDay, error)
	GetCampaigns(ctx context.Context) ([]commercedb.Campaign, error)
	GetCampaign(ctx context.Context, campaignID int64) (*commercedb.Campaign, error)
	GetIncidents(ctx context.Context, incidentType string) ([]commercedb.Incident, error)

	UpdateStock(ctx context.Context, productID int64, quantity int64) error
	PauseCampaign(ctx context.Context, campaignID int64) error
	CreateTicket(ctx context.Context, subject, description, category, priority string) error
	ResolveTicket(ctx context.Context, ticketID int64) error
	ApplyDiscount(ctx context.Context, productID int64, percent float64) error
}

// SearchStore is the similarity-search surface the memory tools need.
type SearchStore interface {
	Search(ctx context.Context, collection, query string, limit int, filter map[string]string) ([]vectorstore.Scored, error)
}
