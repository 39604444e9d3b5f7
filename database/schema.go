package database

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS menu (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_name VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		quantity INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		INDEX idx_customers_phone (phone)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		order_date DATETIME NOT NULL,
		total_price DOUBLE NOT NULL,
		status VARCHAR(16) NOT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	)`,
	// menu_id is not a real FK: menu rows may be deleted while old orders still point at them.
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		menu_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id),
		INDEX idx_order_items_menu (menu_id)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(64) NOT NULL,
		phone VARCHAR(32)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS menu (
		id BIGSERIAL PRIMARY KEY,
		item_name TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers (phone)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		order_date TIMESTAMPTZ NOT NULL,
		total_price DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id),
		menu_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGSERIAL PRIMARY KEY,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		phone TEXT
	)`,
}

// Schema returns the DDL statements for the dialect, in dependency order.
func (d Dialect) Schema() []string {
	if d == Postgres {
		return postgresSchema
	}
	return mysqlSchema
}

// Migrate creates any missing table. Existing tables are left alone.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range d.Dialect.Schema() {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
