package commercedb

import (
	"context"
	"fmt"
	"time"
)

// Writes return only after the statement has committed; callers may rely on
// a follow-up read observing the change.

// UpdateStock adds quantity to the current stock of a product (additive, to
// match restock semantics; pass a negative quantity to draw down).
func (d *DB) UpdateStock(ctx context.Context, productID int64, quantity int64) error {
	_, err := d.bun.ExecContext(ctx,
		"UPDATE inventory SET stock = stock + ? WHERE product_id = ?",
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

func (d *DB) PauseCampaign(ctx context.Context, campaignID int64) error {
	_, err := d.bun.ExecContext(ctx,
		"UPDATE campaigns SET status = 'paused' WHERE id = ?",
		campaignID,
	)
	if err != nil {
		return fmt.Errorf("pause campaign: %w", err)
	}
	return nil
}

func (d *DB) CreateTicket(ctx context.Context, subject, description, category, priority string) error {
	if priority == "" {
		priority = "medium"
	}
	_, err := d.bun.ExecContext(ctx,
		"INSERT INTO tickets (subject, description, category, priority, status, created_at) "+
			"VALUES (?, ?, ?, ?, 'open', ?)",
		subject, description, category, priority, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (d *DB) ResolveTicket(ctx context.Context, ticketID int64) error {
	_, err := d.bun.ExecContext(ctx,
		"UPDATE tickets SET status = 'resolved' WHERE id = ?",
		ticketID,
	)
	if err != nil {
		return fmt.Errorf("resolve ticket: %w", err)
	}
	return nil
}

// ApplyDiscount reduces the product price by percent. The caller is expected
// to have checked the product exists; a missing row is a no-op here.
func (d *DB) ApplyDiscount(ctx context.Context, productID int64, percent float64) error {
	_, err := d.bun.ExecContext(ctx,
		"UPDATE products SET price = ROUND(price * (1 - ? / 100.0), 2) WHERE id = ?",
		percent, productID,
	)
	if err != nil {
		return fmt.Errorf("apply discount: %w", err)
	}
	return nil
}
