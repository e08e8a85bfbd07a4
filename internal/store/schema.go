package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the tables in dependency order. PostgreSQL DDL is
// transactional, so a failure part-way leaves no half-built schema.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS warehouse_zones (
		id             VARCHAR(50)  PRIMARY KEY,
		name           VARCHAR(100) NOT NULL UNIQUE,
		capacity       INTEGER      NOT NULL DEFAULT 0,
		max_capacity   INTEGER      NOT NULL,
		temperature    NUMERIC(5,2),
		humidity       NUMERIC(5,2),
		status         VARCHAR(50)  NOT NULL DEFAULT 'Normal',
		products_count INTEGER      NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id           VARCHAR(50)   PRIMARY KEY,
		name         VARCHAR(255)  NOT NULL,
		category     VARCHAR(100)  NOT NULL DEFAULT '',
		zone         VARCHAR(50)   NOT NULL REFERENCES warehouse_zones(id) ON DELETE RESTRICT ON UPDATE CASCADE,
		shelf        VARCHAR(50)   NOT NULL DEFAULT '',
		unit_value   NUMERIC(12,2) NOT NULL DEFAULT 0,
		quantity     INTEGER       NOT NULL DEFAULT 0,
		min_stock    INTEGER       NOT NULL DEFAULT 0,
		max_stock    INTEGER       NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_audits (
		id             VARCHAR(20)  PRIMARY KEY,
		zone           VARCHAR(50)  NOT NULL REFERENCES warehouse_zones(id) ON DELETE RESTRICT ON UPDATE CASCADE,
		scheduled_date DATE         NOT NULL,
		auditor        VARCHAR(100) NOT NULL,
		audit_type     VARCHAR(50)  NOT NULL,
		status         VARCHAR(50)  NOT NULL DEFAULT 'Scheduled',
		discrepancies  INTEGER      NOT NULL DEFAULT 0,
		accuracy       NUMERIC(5,2) NOT NULL DEFAULT 100.00
	)`,
	`CREATE TABLE IF NOT EXISTS incoming_shipments (
		id       VARCHAR(20)   PRIMARY KEY,
		supplier VARCHAR(255)  NOT NULL,
		eta      TIMESTAMPTZ   NOT NULL,
		items    INTEGER       NOT NULL DEFAULT 0,
		value    NUMERIC(12,2) NOT NULL DEFAULT 0,
		tracking VARCHAR(100)  NOT NULL UNIQUE,
		status   VARCHAR(50)   NOT NULL DEFAULT 'Pending'
	)`,
	`CREATE TABLE IF NOT EXISTS outgoing_shipments (
		id          VARCHAR(20)   PRIMARY KEY,
		customer    VARCHAR(255)  NOT NULL,
		departure   TIMESTAMPTZ   NOT NULL,
		destination VARCHAR(255)  NOT NULL,
		items       INTEGER       NOT NULL DEFAULT 0,
		value       NUMERIC(12,2) NOT NULL DEFAULT 0,
		status      VARCHAR(50)   NOT NULL DEFAULT 'Pending'
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         VARCHAR(20)   PRIMARY KEY,
		customer   VARCHAR(255)  NOT NULL,
		status     VARCHAR(50)   NOT NULL DEFAULT 'Pending',
		items      INTEGER       NOT NULL DEFAULT 0,
		value      NUMERIC(12,2) NOT NULL DEFAULT 0,
		order_date TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		priority   VARCHAR(20)   NOT NULL DEFAULT 'Low'
	)`,
	`CREATE TABLE IF NOT EXISTS generated_reports (
		id           VARCHAR(20)  PRIMARY KEY,
		report_name  VARCHAR(255) NOT NULL,
		report_type  VARCHAR(20)  NOT NULL CHECK (report_type IN ('inventory', 'shipments', 'audits', 'performance', 'financial')),
		generated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		file_format  VARCHAR(10)  NOT NULL DEFAULT 'PDF',
		file_size_kb INTEGER      NOT NULL DEFAULT 0,
		status       VARCHAR(20)  NOT NULL DEFAULT 'Completed'
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		setting_key   VARCHAR(100) PRIMARY KEY CHECK (setting_key <> ''),
		setting_value TEXT         NOT NULL DEFAULT '',
		last_updated  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL    PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(50)  NOT NULL DEFAULT 'Staff',
		status        VARCHAR(20)  NOT NULL DEFAULT 'Active',
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS app_notifications (
		id         BIGSERIAL    PRIMARY KEY,
		message    TEXT         NOT NULL,
		type       VARCHAR(20)  NOT NULL DEFAULT 'info' CHECK (type IN ('info', 'warning', 'error', 'success')),
		is_read    BOOLEAN      NOT NULL DEFAULT FALSE,
		link       VARCHAR(255),
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_zone ON products(zone)`,
	`CREATE INDEX IF NOT EXISTS idx_audits_zone ON inventory_audits(zone)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON app_notifications(is_read, created_at DESC)`,
}

// InitSchema creates missing tables and ID sequences, advances each sequence
// past IDs already stored, and writes the default settings. Defaults
// overwrite existing values on conflict. Everything runs in one transaction.
func (s *Store) InitSchema(ctx context.Context, defaults []models.Setting) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}

		for _, seq := range idSequences {
			if err := initSequence(ctx, tx, seq); err != nil {
				return err
			}
		}

		for _, d := range defaults {
			if _, err := tx.ExecContext(ctx, upsertSettingQuery, d.Key, d.Value); err != nil {
				return fmt.Errorf("failed to seed setting %q: %w", d.Key, err)
			}
		}
		return nil
	})
}
