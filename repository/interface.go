package repository

import (
	"context"
	"database/sql"

	"rental-quotes/models"
)

// EquipmentRepositoryInterface defines the contract for equipment catalog operations
type EquipmentRepositoryInterface interface {
	List(ctx context.Context, mainCategory *models.MainCategory) ([]models.Equipment, error)
	Get(ctx context.Context, id int64) (*models.Equipment, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]models.Equipment, error)
	Create(ctx context.Context, input models.EquipmentInput) (*models.Equipment, error)
	Update(ctx context.Context, id int64, input models.EquipmentInput) (*models.Equipment, error)
	SetImage(ctx context.Context, id int64, imageURL string) (*models.Equipment, error)
	Delete(ctx context.Context, id int64) error
	Catalog(ctx context.Context, mainCategory *models.MainCategory) (*models.CatalogResponse, error)
}

// QuoteRequestRepositoryInterface defines the contract for quote request persistence
type QuoteRequestRepositoryInterface interface {
	Create(ctx context.Context, input models.QuoteRequestInput) (*models.QuoteRequest, error)
	Get(ctx context.Context, id int64) (*models.QuoteRequest, error)
	ListActive(ctx context.Context, filter models.QuoteFilter) ([]models.QuoteRequest, error)
	ListDeleted(ctx context.Context, search string) ([]models.QuoteRequest, error)
	Update(ctx context.Context, id int64, update models.QuoteRequestUpdate) (*models.QuoteRequest, error)
	SetStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.QuoteRequest, error)
	SoftDelete(ctx context.Context, id int64, performer models.Performer, reason string) (*models.QuoteRequest, error)
	Restore(ctx context.Context, id int64, performer models.Performer) (*models.QuoteRequest, error)
	PermanentlyDelete(ctx context.Context, id int64, performer models.Performer) error
}

// AuditLogRepositoryInterface is append-only: there is no update or delete
type AuditLogRepositoryInterface interface {
	Append(ctx context.Context, tx *sql.Tx, entry models.QuoteAuditLogEntry) (*models.QuoteAuditLogEntry, error)
	ListByQuote(ctx context.Context, quoteID int64) ([]models.QuoteAuditLogEntry, error)
	List(ctx context.Context, limit int) ([]models.QuoteAuditLogEntry, error)
}
