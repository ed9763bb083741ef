package repository

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteSchema mirrors db/migrations for the SQLite dialect
const sqliteSchema = `
CREATE TABLE equipment (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT      NOT NULL,
    main_category  TEXT      NOT NULL CHECK (main_category IN ('production', 'home-ec-set')),
    category       TEXT      NOT NULL,
    subcategory    TEXT,
    description    TEXT,
    image_url      TEXT,
    specifications TEXT      NOT NULL DEFAULT '[]',
    price_per_unit NUMERIC,
    units_per_item INTEGER   NOT NULL DEFAULT 1,
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE quote_requests (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_name      TEXT      NOT NULL,
    customer_email     TEXT      NOT NULL,
    customer_phone     TEXT      NOT NULL,
    company            TEXT,
    job_name           TEXT      NOT NULL,
    job_number         TEXT,
    purchase_order     TEXT,
    start_date         DATE      NOT NULL,
    end_date           DATE      NOT NULL,
    shooting_locations TEXT      NOT NULL,
    special_requests   TEXT,
    items              TEXT      NOT NULL,
    status             TEXT      NOT NULL DEFAULT 'pending',
    is_tax_exempt      BOOLEAN   NOT NULL DEFAULT 0,
    discount_amount    NUMERIC   NOT NULL DEFAULT 0,
    created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at         TIMESTAMP,
    deletion_reason    TEXT,
    deleted_by_id      TEXT,
    deleted_by_name    TEXT,
    deleted_by_email   TEXT
);
CREATE TABLE quote_audit_logs (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    quote_id           INTEGER   NOT NULL,
    action_type        TEXT      NOT NULL,
    performed_by_id    TEXT      NOT NULL,
    performed_by_name  TEXT,
    performed_by_email TEXT,
    performed_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    customer_name      TEXT      NOT NULL,
    customer_email     TEXT      NOT NULL,
    company            TEXT,
    job_name           TEXT      NOT NULL,
    details            TEXT
);
CREATE TABLE cart_sessions (
    session_key TEXT PRIMARY KEY,
    items       TEXT      NOT NULL DEFAULT '[]',
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive for the test
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(sqliteSchema); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
