package commercedb

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		price REAL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id INTEGER PRIMARY KEY,
		stock INTEGER DEFAULT 0,
		reorder_level INTEGER DEFAULT 10
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY,
		product_id INTEGER,
		quantity INTEGER,
		amount REAL,
		sale_date TEXT,
		region TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY,
		subject TEXT,
		description TEXT,
		category TEXT,
		priority TEXT DEFAULT 'medium',
		status TEXT DEFAULT 'open',
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY,
		name TEXT,
		channel TEXT,
		budget REAL,
		spent REAL DEFAULT 0,
		status TEXT DEFAULT 'active',
		impressions INTEGER DEFAULT 0,
		clicks INTEGER DEFAULT 0,
		conversions INTEGER DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS incidents (
		id INTEGER PRIMARY KEY,
		type TEXT,
		description TEXT,
		root_cause TEXT,
		action_taken TEXT,
		outcome TEXT,
		occurred_at TEXT
	)`,
}

// InitSchema creates the domain tables if they do not exist. Seeding is the
// responsibility of external tooling.
func (d *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.bun.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
