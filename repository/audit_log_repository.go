package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"rental-quotes/models"
)

const auditColumns = `id, quote_id, action_type, performed_by_id, performed_by_name, performed_by_email,
		performed_at, customer_name, customer_email, company, job_name, details`

// queryRower is satisfied by both *sql.DB and *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// AuditLogRepository appends and reads quote audit entries. Entries are never changed.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Ensure AuditLogRepository implements AuditLogRepositoryInterface
var _ AuditLogRepositoryInterface = (*AuditLogRepository)(nil)

func scanAuditEntry(row rowScanner) (*models.QuoteAuditLogEntry, error) {
	var e models.QuoteAuditLogEntry
	var name, email, company, details sql.NullString
	var performedAt nullTime

	err := row.Scan(
		&e.ID,
		&e.QuoteID,
		&e.Action,
		&e.PerformedBy.ID,
		&name,
		&email,
		&performedAt,
		&e.Snapshot.CustomerName,
		&e.Snapshot.CustomerEmail,
		&company,
		&e.Snapshot.JobName,
		&details,
	)
	if err != nil {
		return nil, err
	}
	e.PerformedBy.Name = stringOrEmpty(name)
	e.PerformedBy.Email = stringOrEmpty(email)
	e.PerformedAt = performedAt.Time
	e.Snapshot.Company = stringOrEmpty(company)
	e.Details = stringOrEmpty(details)
	return &e, nil
}

// Append inserts an entry. When tx is non-nil the entry commits or rolls back with it.
func (r *AuditLogRepository) Append(ctx context.Context, tx *sql.Tx, entry models.QuoteAuditLogEntry) (*models.QuoteAuditLogEntry, error) {
	var q queryRower = r.db
	if tx != nil {
		q = tx
	}

	query := `
		INSERT INTO quote_audit_logs (quote_id, action_type, performed_by_id, performed_by_name,
			performed_by_email, customer_name, customer_email, company, job_name, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + auditColumns

	saved, err := scanAuditEntry(q.QueryRowContext(ctx, query,
		entry.QuoteID,
		string(entry.Action),
		entry.PerformedBy.ID,
		nullString(entry.PerformedBy.Name),
		nullString(entry.PerformedBy.Email),
		entry.Snapshot.CustomerName,
		entry.Snapshot.CustomerEmail,
		nullString(entry.Snapshot.Company),
		entry.Snapshot.JobName,
		nullString(entry.Details),
	))
	if err != nil {
		log.Printf("❌ Append: Error writing audit entry quote_id=%d action=%s: %v", entry.QuoteID, entry.Action, err)
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}

	log.Printf("📝 Append: Audit entry id=%d quote_id=%d action=%s by=%s", saved.ID, saved.QuoteID, saved.Action, saved.PerformedBy.ID)
	return saved, nil
}

// ListByQuote returns a quote's entries oldest first
func (r *AuditLogRepository) ListByQuote(ctx context.Context, quoteID int64) ([]models.QuoteAuditLogEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM quote_audit_logs WHERE quote_id = $1 ORDER BY performed_at ASC, id ASC`
	return r.query(ctx, query, quoteID)
}

// List returns the most recent entries across all quotes, newest first
func (r *AuditLogRepository) List(ctx context.Context, limit int) ([]models.QuoteAuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + auditColumns + ` FROM quote_audit_logs ORDER BY performed_at DESC, id DESC LIMIT $1`
	return r.query(ctx, query, limit)
}

func (r *AuditLogRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.QuoteAuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ AuditLog: Error querying entries: %v", err)
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.QuoteAuditLogEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
