package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"rental-quotes/models"
)

const quoteColumns = `id, customer_name, customer_email, customer_phone, company, job_name, job_number,
		purchase_order, start_date, end_date, shooting_locations, special_requests, items, status,
		is_tax_exempt, discount_amount, created_at, updated_at, deleted_at, deletion_reason,
		deleted_by_id, deleted_by_name, deleted_by_email`

// QuoteRequestRepository handles database operations for quote requests.
// Soft delete, restore and permanent delete write their audit entry in the same transaction.
type QuoteRequestRepository struct {
	db    *sql.DB
	audit AuditLogRepositoryInterface
}

// NewQuoteRequestRepository creates a new QuoteRequestRepository
func NewQuoteRequestRepository(db *sql.DB, audit AuditLogRepositoryInterface) *QuoteRequestRepository {
	return &QuoteRequestRepository{db: db, audit: audit}
}

// Ensure QuoteRequestRepository implements QuoteRequestRepositoryInterface
var _ QuoteRequestRepositoryInterface = (*QuoteRequestRepository)(nil)

func scanQuote(row rowScanner) (*models.QuoteRequest, error) {
	var q models.QuoteRequest
	var company, jobNumber, purchaseOrder, specialRequests sql.NullString
	var deletionReason, deletedByID, deletedByName, deletedByEmail sql.NullString
	var createdAt, updatedAt, deletedAt nullTime
	items := []models.CartLineItem{}

	err := row.Scan(
		&q.ID,
		&q.CustomerName,
		&q.CustomerEmail,
		&q.CustomerPhone,
		&company,
		&q.JobName,
		&jobNumber,
		&purchaseOrder,
		&q.StartDate,
		&q.EndDate,
		&q.ShootingLocations,
		&specialRequests,
		jsonColumn{Target: &items},
		&q.Status,
		&q.IsTaxExempt,
		&q.DiscountAmount,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&deletionReason,
		&deletedByID,
		&deletedByName,
		&deletedByEmail,
	)
	if err != nil {
		return nil, err
	}

	q.Company = stringOrEmpty(company)
	q.JobNumber = stringOrEmpty(jobNumber)
	q.PurchaseOrder = stringOrEmpty(purchaseOrder)
	q.SpecialRequests = stringOrEmpty(specialRequests)
	q.Items = items
	q.CreatedAt = createdAt.Time
	q.UpdatedAt = updatedAt.Time
	q.DeletedAt = deletedAt.Ptr()
	q.DeletionReason = stringOrEmpty(deletionReason)
	if deletedByID.Valid {
		q.DeletedBy = &models.Performer{
			ID:    deletedByID.String,
			Name:  stringOrEmpty(deletedByName),
			Email: stringOrEmpty(deletedByEmail),
		}
	}
	return &q, nil
}

func getQuote(ctx context.Context, q queryRower, id int64) (*models.QuoteRequest, error) {
	quote, err := scanQuote(q.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quote_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to fetch quote request: %w", err)
	}
	return quote, nil
}

// Create inserts a new quote request. Status always starts as pending.
func (r *QuoteRequestRepository) Create(ctx context.Context, input models.QuoteRequestInput) (*models.QuoteRequest, error) {
	log.Printf("📦 Create: Creating quote request for %s, job=%s, %d lines", input.CustomerEmail, input.JobName, len(input.Items))

	if err := input.Validate(); err != nil {
		log.Printf("❌ Create: Invalid quote request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	items, err := toJSON(input.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	query := `
		INSERT INTO quote_requests (customer_name, customer_email, customer_phone, company, job_name,
			job_number, purchase_order, start_date, end_date, shooting_locations, special_requests,
			items, status, is_tax_exempt, discount_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', $13, 0)
		RETURNING ` + quoteColumns

	quote, err := scanQuote(r.db.QueryRowContext(ctx, query,
		strings.TrimSpace(input.CustomerName),
		strings.TrimSpace(input.CustomerEmail),
		strings.TrimSpace(input.CustomerPhone),
		nullString(strings.TrimSpace(input.Company)),
		strings.TrimSpace(input.JobName),
		nullString(strings.TrimSpace(input.JobNumber)),
		nullString(strings.TrimSpace(input.PurchaseOrder)),
		input.StartDate,
		input.EndDate,
		strings.TrimSpace(input.ShootingLocations),
		nullString(strings.TrimSpace(input.SpecialRequests)),
		items,
		input.IsTaxExempt,
	))
	if err != nil {
		log.Printf("❌ Create: Error creating quote request: %v", err)
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}

	log.Printf("✅ Create: Successfully created quote request id=%d", quote.ID)
	return quote, nil
}

// Get retrieves a quote request whether or not it is soft-deleted
func (r *QuoteRequestRepository) Get(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	quote, err := getQuote(ctx, r.db, id)
	if err != nil && !errors.Is(err, ErrQuoteNotFound) {
		log.Printf("❌ Get: Error fetching quote request id=%d: %v", id, err)
	}
	return quote, err
}

// searchClause matches term case-insensitively against the free-text columns.
// The term is built by likePattern, which escapes LIKE wildcards with a backslash.
func searchClause(placeholder string) string {
	like := ` LIKE ` + placeholder + ` ESCAPE '\'`
	return `(LOWER(customer_name)` + like +
		` OR LOWER(customer_email)` + like +
		` OR LOWER(job_name)` + like +
		` OR LOWER(COALESCE(company, ''))` + like + `)`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// ListActive returns quotes that are not soft-deleted, newest first
func (r *QuoteRequestRepository) ListActive(ctx context.Context, filter models.QuoteFilter) ([]models.QuoteRequest, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if strings.TrimSpace(filter.Search) != "" {
		args = append(args, likePattern(filter.Search))
		conditions = append(conditions, searchClause(fmt.Sprintf("$%d", len(args))))
	}

	query := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	return r.list(ctx, "ListActive", query, args...)
}

// ListDeleted returns soft-deleted quotes, most recently deleted first
func (r *QuoteRequestRepository) ListDeleted(ctx context.Context, search string) ([]models.QuoteRequest, error) {
	query := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE deleted_at IS NOT NULL`
	var args []interface{}
	if strings.TrimSpace(search) != "" {
		args = append(args, likePattern(search))
		query += ` AND ` + searchClause("$1")
	}
	query += ` ORDER BY deleted_at DESC, id DESC`
	return r.list(ctx, "ListDeleted", query, args...)
}

func (r *QuoteRequestRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.QuoteRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ %s: Error querying quote requests: %v", op, err)
		return nil, fmt.Errorf("failed to query quote requests: %w", err)
	}
	defer rows.Close()

	quotes := []models.QuoteRequest{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			log.Printf("❌ %s: Error scanning quote request: %v", op, err)
			return nil, fmt.Errorf("failed to scan quote request: %w", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote requests: %w", err)
	}

	log.Printf("✅ %s: Found %d quote requests", op, len(quotes))
	return quotes, nil
}

// applyUpdate merges u into q and validates the result
func applyUpdate(q *models.QuoteRequest, u models.QuoteRequestUpdate) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&q.CustomerName, u.CustomerName)
	setString(&q.CustomerEmail, u.CustomerEmail)
	setString(&q.CustomerPhone, u.CustomerPhone)
	setString(&q.Company, u.Company)
	setString(&q.JobName, u.JobName)
	setString(&q.JobNumber, u.JobNumber)
	setString(&q.PurchaseOrder, u.PurchaseOrder)
	setString(&q.ShootingLocations, u.ShootingLocations)
	setString(&q.SpecialRequests, u.SpecialRequests)
	if u.StartDate != nil {
		q.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		q.EndDate = *u.EndDate
	}
	if u.Items != nil {
		q.Items = u.Items
	}
	if u.IsTaxExempt != nil {
		q.IsTaxExempt = *u.IsTaxExempt
	}
	if u.DiscountAmount != nil {
		q.DiscountAmount = *u.DiscountAmount
	}

	if q.CustomerName == "" || q.CustomerEmail == "" || q.CustomerPhone == "" || q.JobName == "" || q.ShootingLocations == "" {
		return fmt.Errorf("required fields cannot be cleared")
	}
	if q.StartDate.IsZero() || q.EndDate.IsZero() || !q.EndDate.After(q.StartDate) {
		return fmt.Errorf("endDate must be after startDate")
	}
	if len(q.Items) == 0 {
		return fmt.Errorf("quote request must contain at least one item")
	}
	for _, item := range q.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d has invalid quantity %d", item.Equipment.ID, item.Quantity)
		}
	}
	if q.DiscountAmount.IsNegative() {
		return fmt.Errorf("discountAmount cannot be negative")
	}
	return nil
}

// Update applies a partial update to an active quote and returns the stored row
func (r *QuoteRequestRepository) Update(ctx context.Context, id int64, update models.QuoteRequestUpdate) (*models.QuoteRequest, error) {
	log.Printf("📦 Update: Updating quote request id=%d", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ Update: Error starting transaction: %v", err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getQuote(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, ErrQuoteDeleted
	}
	if update.IsEmpty() {
		return current, nil
	}
	if err := applyUpdate(current, update); err != nil {
		log.Printf("❌ Update: Invalid update for quote request id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	items, err := toJSON(current.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	query := `
		UPDATE quote_requests
		SET customer_name = $1, customer_email = $2, customer_phone = $3, company = $4, job_name = $5,
			job_number = $6, purchase_order = $7, start_date = $8, end_date = $9, shooting_locations = $10,
			special_requests = $11, items = $12, is_tax_exempt = $13, discount_amount = $14,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $15
		RETURNING ` + quoteColumns

	saved, err := scanQuote(tx.QueryRowContext(ctx, query,
		current.CustomerName,
		current.CustomerEmail,
		current.CustomerPhone,
		nullString(current.Company),
		current.JobName,
		nullString(current.JobNumber),
		nullString(current.PurchaseOrder),
		current.StartDate,
		current.EndDate,
		current.ShootingLocations,
		nullString(current.SpecialRequests),
		items,
		current.IsTaxExempt,
		current.DiscountAmount.Round(2),
		id,
	))
	if err != nil {
		log.Printf("❌ Update: Error updating quote request id=%d: %v", id, err)
		return nil, fmt.Errorf("failed to update quote request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Update: Error committing transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ Update: Successfully updated quote request id=%d", id)
	return saved, nil
}

// SetStatus moves an active quote to any status
func (r *QuoteRequestRepository) SetStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.QuoteRequest, error) {
	log.Printf("📦 SetStatus: Setting quote request id=%d status=%s", id, status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	query := `
		UPDATE quote_requests SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING ` + quoteColumns

	quote, err := scanQuote(r.db.QueryRowContext(ctx, query, string(status), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.inactiveReason(ctx, id)
		}
		log.Printf("❌ SetStatus: Error updating status: %v", err)
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("✅ SetStatus: Quote request id=%d is now %s", id, status)
	return quote, nil
}

// inactiveReason explains why an active-only write matched no row
func (r *QuoteRequestRepository) inactiveReason(ctx context.Context, id int64) error {
	quote, err := getQuote(ctx, r.db, id)
	if err != nil {
		return err
	}
	if quote.IsDeleted() {
		return ErrQuoteDeleted
	}
	return ErrQuoteNotFound
}

// SoftDelete moves an active quote to the deleted set and records who did it
func (r *QuoteRequestRepository) SoftDelete(ctx context.Context, id int64, performer models.Performer, reason string) (*models.QuoteRequest, error) {
	log.Printf("🗑️ SoftDelete: Deleting quote request id=%d by=%s", id, performer.ID)
	reason = strings.TrimSpace(reason)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getQuote(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, ErrQuoteDeleted
	}

	query := `
		UPDATE quote_requests
		SET deleted_at = CURRENT_TIMESTAMP, deletion_reason = $1, deleted_by_id = $2,
			deleted_by_name = $3, deleted_by_email = $4
		WHERE id = $5
		RETURNING ` + quoteColumns

	saved, err := scanQuote(tx.QueryRowContext(ctx, query,
		nullString(reason),
		performer.ID,
		nullString(performer.Name),
		nullString(performer.Email),
		id,
	))
	if err != nil {
		log.Printf("❌ SoftDelete: Error deleting quote request id=%d: %v", id, err)
		return nil, fmt.Errorf("failed to delete quote request: %w", err)
	}

	if _, err := r.audit.Append(ctx, tx, models.QuoteAuditLogEntry{
		QuoteID:     id,
		Action:      models.AuditActionDeleted,
		PerformedBy: performer,
		Snapshot:    current.Snapshot(),
		Details:     reason,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ SoftDelete: Error committing transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ SoftDelete: Quote request id=%d moved to deleted", id)
	return saved, nil
}

// Restore returns a soft-deleted quote to the active set
func (r *QuoteRequestRepository) Restore(ctx context.Context, id int64, performer models.Performer) (*models.QuoteRequest, error) {
	log.Printf("♻️ Restore: Restoring quote request id=%d by=%s", id, performer.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getQuote(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsDeleted() {
		return nil, ErrQuoteNotDeleted
	}

	query := `
		UPDATE quote_requests
		SET deleted_at = NULL, deletion_reason = NULL, deleted_by_id = NULL,
			deleted_by_name = NULL, deleted_by_email = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + quoteColumns

	saved, err := scanQuote(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		log.Printf("❌ Restore: Error restoring quote request id=%d: %v", id, err)
		return nil, fmt.Errorf("failed to restore quote request: %w", err)
	}

	if _, err := r.audit.Append(ctx, tx, models.QuoteAuditLogEntry{
		QuoteID:     id,
		Action:      models.AuditActionRestored,
		PerformedBy: performer,
		Snapshot:    current.Snapshot(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ Restore: Quote request id=%d restored", id)
	return saved, nil
}

// PermanentlyDelete removes a soft-deleted quote. Its audit entries are kept.
func (r *QuoteRequestRepository) PermanentlyDelete(ctx context.Context, id int64, performer models.Performer) error {
	log.Printf("🗑️ PermanentlyDelete: Removing quote request id=%d by=%s", id, performer.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getQuote(ctx, tx, id)
	if err != nil {
		return err
	}
	if !current.IsDeleted() {
		return ErrQuoteNotDeleted
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_requests WHERE id = $1`, id); err != nil {
		log.Printf("❌ PermanentlyDelete: Error removing quote request id=%d: %v", id, err)
		return fmt.Errorf("failed to remove quote request: %w", err)
	}

	if _, err := r.audit.Append(ctx, tx, models.QuoteAuditLogEntry{
		QuoteID:     id,
		Action:      models.AuditActionPermanentlyDeleted,
		PerformedBy: performer,
		Snapshot:    current.Snapshot(),
		Details:     current.DeletionReason,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ PermanentlyDelete: Quote request id=%d removed", id)
	return nil
}
