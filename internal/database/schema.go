package database

import "database/sql"

// statements run in order at startup. Every statement is idempotent so the
// server can boot against a fresh or an existing database.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		price NUMERIC NOT NULL,
		discounted_price NUMERIC,
		stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category TEXT,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		image_id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		address_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id),
		street TEXT NOT NULL,
		number TEXT NOT NULL,
		complement TEXT,
		neighborhood TEXT,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		cart_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(user_id),
		total NUMERIC NOT NULL DEFAULT 0,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		item_id TEXT PRIMARY KEY,
		cart_id TEXT NOT NULL REFERENCES carts(cart_id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products(product_id),
		quantity INT NOT NULL CHECK (quantity >= 1),
		price NUMERIC NOT NULL,
		UNIQUE (cart_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id),
		address_id TEXT NOT NULL REFERENCES addresses(address_id),
		payment_method TEXT NOT NULL,
		shipping_cost NUMERIC NOT NULL DEFAULT 0,
		total NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		item_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		title TEXT NOT NULL,
		quantity INT NOT NULL,
		price NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		payment_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE REFERENCES orders(order_id),
		amount NUMERIC NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		intent_id TEXT,
		client_secret TEXT,
		receipt_url TEXT,
		error_message TEXT,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS free_shipping_rules (
		rule_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		min_order_value NUMERIC NOT NULL DEFAULT 0,
		regions TEXT[] NOT NULL DEFAULT '{}',
		product_categories TEXT[] NOT NULL DEFAULT '{}',
		service_types TEXT[] NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL REFERENCES users(user_id),
		product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		image TEXT,
		ord INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS testimonials (
		testimonial_id TEXT PRIMARY KEY,
		author TEXT NOT NULL,
		quote TEXT NOT NULL,
		avatar TEXT,
		ord INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_intent ON payments(intent_id)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
