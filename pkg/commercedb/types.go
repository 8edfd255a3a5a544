package commercedb

// Row types returned by facade reads. Column names follow the schema; keep
// them stable, tools and the action executor format against them.

type Product struct {
	ID          int64   `bun:"id"`
	Name        string  `bun:"name"`
	Category    string  `bun:"category"`
	Price       float64 `bun:"price"`
	Description string  `bun:"description"`
}

type SalesDay struct {
	SaleDate string  `bun:"sale_date"`
	Revenue  float64 `bun:"revenue"`
	Orders   int64   `bun:"orders"`
}

type TopProduct struct {
	ID      int64   `bun:"id"`
	Name    string  `bun:"name"`
	Revenue float64 `bun:"revenue"`
	Units   int64   `bun:"units"`
}

type RegionSales struct {
	Region  string  `bun:"region"`
	Revenue float64 `bun:"revenue"`
	Orders  int64   `bun:"orders"`
}

type Sale struct {
	ID        int64   `bun:"id"`
	ProductID int64   `bun:"product_id"`
	Quantity  int64   `bun:"quantity"`
	Amount    float64 `bun:"amount"`
	SaleDate  string  `bun:"sale_date"`
	Region    string  `bun:"region"`
}

type InventoryItem struct {
	ID           int64  `bun:"id"`
	Name         string `bun:"name"`
	Stock        int64  `bun:"stock"`
	ReorderLevel int64  `bun:"reorder_level"`
}

type Ticket struct {
	ID          int64  `bun:"id"`
	Subject     string `bun:"subject"`
	Description string `bun:"description"`
	Category    string `bun:"category"`
	Priority    string `bun:"priority"`
	Status      string `bun:"status"`
	CreatedAt   string `bun:"created_at"`
}

type TicketGroup struct {
	Category string `bun:"category"`
	Priority string `bun:"priority"`
	Count    int64  `bun:"count"`
}

type TicketDay struct {
	Date  string `bun:"date"`
	Count int64  `bun:"count"`
}

type Campaign struct {
	ID          int64   `bun:"id"`
	Name        string  `bun:"name"`
	Channel     string  `bun:"channel"`
	Budget      float64 `bun:"budget"`
	Spent       float64 `bun:"spent"`
	Status      string  `bun:"status"`
	Impressions int64   `bun:"impressions"`
	Clicks      int64   `bun:"clicks"`
	Conversions int64   `bun:"conversions"`
	CTR         float64 `bun:"ctr"`
	ConvRate    float64 `bun:"conv_rate"`
}

type Incident struct {
	ID          int64  `bun:"id"`
	Type        string `bun:"type"`
	Description string `bun:"description"`
	RootCause   string `bun:"root_cause"`
	ActionTaken string `bun:"action_taken"`
	Outcome     string `bun:"outcome"`
	OccurredAt  string `bun:"occurred_at"`
}
