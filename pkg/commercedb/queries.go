package commercedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (d *DB) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var p Product
	err := d.bun.NewRaw("SELECT * FROM products WHERE id = ?", productID).Scan(ctx, &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product id=%d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (d *DB) GetAllProducts(ctx context.Context) ([]Product, error) {
	var rows []Product
	if err := d.bun.NewRaw("SELECT * FROM products ORDER BY name").Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return rows, nil
}

// GetSales returns the daily revenue/order summary between two ISO dates.
func (d *DB) GetSales(ctx context.Context, start, end string) ([]SalesDay, error) {
	var rows []SalesDay
	err := d.bun.NewRaw(
		"SELECT sale_date, SUM(amount) AS revenue, SUM(quantity) AS orders "+
			"FROM sales WHERE sale_date BETWEEN ? AND ? GROUP BY sale_date",
		start, end,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get sales: %w", err)
	}
	return rows, nil
}

func (d *DB) GetTopProducts(ctx context.Context, start, end string, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []TopProduct
	err := d.bun.NewRaw(
		"SELECT p.id, p.name, SUM(s.amount) AS revenue, SUM(s.quantity) AS units "+
			"FROM sales s JOIN products p ON s.product_id = p.id "+
			"WHERE s.sale_date BETWEEN ? AND ? GROUP BY p.id, p.name ORDER BY revenue DESC LIMIT ?",
		start, end, limit,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get top products: %w", err)
	}
	return rows, nil
}

func (d *DB) GetSalesByRegion(ctx context.Context, start, end string) ([]RegionSales, error) {
	var rows []RegionSales
	err := d.bun.NewRaw(
		"SELECT region, SUM(amount) AS revenue, SUM(quantity) AS orders "+
			"FROM sales WHERE sale_date BETWEEN ? AND ? GROUP BY region",
		start, end,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get sales by region: %w", err)
	}
	return rows, nil
}

func (d *DB) GetProductSales(ctx context.Context, productID int64, start, end string) ([]Sale, error) {
	var rows []Sale
	err := d.bun.NewRaw(
		"SELECT * FROM sales WHERE product_id = ? AND sale_date BETWEEN ? AND ? ORDER BY sale_date DESC",
		productID, start, end,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get product sales: %w", err)
	}
	return rows, nil
}

func (d *DB) GetInventory(ctx context.Context) ([]InventoryItem, error) {
	var rows []InventoryItem
	err := d.bun.NewRaw(
		"SELECT p.id, p.name, i.stock, i.reorder_level " +
			"FROM inventory i JOIN products p ON i.product_id = p.id ORDER BY i.stock",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rows, nil
}

func (d *DB) GetProductInventory(ctx context.Context, productID int64) (*InventoryItem, error) {
	var item InventoryItem
	err := d.bun.NewRaw(
		"SELECT p.id, p.name, i.stock, i.reorder_level "+
			"FROM inventory i JOIN products p ON i.product_id = p.id WHERE i.product_id = ?",
		productID,
	).Scan(ctx, &item)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: inventory for product id=%d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("get product inventory: %w", err)
	}
	return &item, nil
}

// GetLowStock returns products at or below their reorder level, excluding
// those already out of stock.
func (d *DB) GetLowStock(ctx context.Context) ([]InventoryItem, error) {
	var rows []InventoryItem
	err := d.bun.NewRaw(
		"SELECT p.id, p.name, i.stock, i.reorder_level FROM inventory i " +
			"JOIN products p ON i.product_id = p.id " +
			"WHERE i.stock <= i.reorder_level AND i.stock > 0",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get low stock: %w", err)
	}
	return rows, nil
}

func (d *DB) GetOutOfStock(ctx context.Context) ([]InventoryItem, error) {
	var rows []InventoryItem
	err := d.bun.NewRaw(
		"SELECT p.id, p.name, i.stock, i.reorder_level FROM inventory i " +
			"JOIN products p ON i.product_id = p.id WHERE i.stock = 0",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get out of stock: %w", err)
	}
	return rows, nil
}

// GetOpenTickets returns open tickets ordered high priority first.
func (d *DB) GetOpenTickets(ctx context.Context) ([]Ticket, error) {
	var rows []Ticket
	err := d.bun.NewRaw(
		"SELECT * FROM tickets WHERE status = 'open' ORDER BY " +
			"CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get open tickets: %w", err)
	}
	return rows, nil
}

func (d *DB) GetTicket(ctx context.Context, ticketID int64) (*Ticket, error) {
	var t Ticket
	err := d.bun.NewRaw("SELECT * FROM tickets WHERE id = ?", ticketID).Scan(ctx, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ticket id=%d", ErrNotFound, ticketID)
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

func (d *DB) GetTicketsByCategory(ctx context.Context, category string) ([]Ticket, error) {
	var rows []Ticket
	err := d.bun.NewRaw(
		"SELECT * FROM tickets WHERE status = 'open' AND category = ? ORDER BY "+
			"CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END",
		category,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get tickets by category: %w", err)
	}
	return rows, nil
}

func (d *DB) GetTicketSummary(ctx context.Context) ([]TicketGroup, error) {
	var rows []TicketGroup
	err := d.bun.NewRaw(
		"SELECT category, priority, COUNT(*) AS count FROM tickets " +
			"WHERE status = 'open' GROUP BY category, priority",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get ticket summary: %w", err)
	}
	return rows, nil
}

func (d *DB) GetTicketTrends(ctx context.Context, start, end string) ([]TicketDay, error) {
	var rows []TicketDay
	err := d.bun.NewRaw(
		"SELECT DATE(created_at) AS date, COUNT(*) AS count FROM tickets "+
			"WHERE DATE(created_at) BETWEEN ? AND ? GROUP BY DATE(created_at)",
		start, end,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get ticket trends: %w", err)
	}
	return rows, nil
}

// GetCampaigns returns active campaigns with computed CTR and conversion
// rate (percentages, 2 decimal places).
func (d *DB) GetCampaigns(ctx context.Context) ([]Campaign, error) {
	var rows []Campaign
	err := d.bun.NewRaw(
		"SELECT *, ROUND(clicks * 100.0 / NULLIF(impressions, 0), 2) AS ctr, " +
			"ROUND(conversions * 100.0 / NULLIF(clicks, 0), 2) AS conv_rate " +
			"FROM campaigns WHERE status = 'active'",
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get campaigns: %w", err)
	}
	return rows, nil
}

func (d *DB) GetCampaign(ctx context.Context, campaignID int64) (*Campaign, error) {
	var c Campaign
	err := d.bun.NewRaw(
		"SELECT *, ROUND(clicks * 100.0 / NULLIF(impressions, 0), 2) AS ctr, "+
			"ROUND(conversions * 100.0 / NULLIF(clicks, 0), 2) AS conv_rate "+
			"FROM campaigns WHERE id = ?",
		campaignID,
	).Scan(ctx, &c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: campaign id=%d", ErrNotFound, campaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

// GetIncidents returns historical incidents, newest first, optionally
// filtered by type. Empty type means no filter.
func (d *DB) GetIncidents(ctx context.Context, incidentType string) ([]Incident, error) {
	var rows []Incident
	var err error
	if incidentType != "" {
		err = d.bun.NewRaw(
			"SELECT * FROM incidents WHERE type = ? ORDER BY occurred_at DESC",
			incidentType,
		).Scan(ctx, &rows)
	} else {
		err = d.bun.NewRaw("SELECT * FROM incidents ORDER BY occurred_at DESC").Scan(ctx, &rows)
	}
	if err != nil {
		return nil, fmt.Errorf("get incidents: %w", err)
	}
	return rows, nil
}
