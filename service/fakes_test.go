package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"rental-quotes/models"
	"rental-quotes/repository"
)

type fakeEquipmentRepo struct {
	items map[int64]models.Equipment
}

func newFakeEquipmentRepo(items ...models.Equipment) *fakeEquipmentRepo {
	r := &fakeEquipmentRepo{items: map[int64]models.Equipment{}}
	for _, e := range items {
		r.items[e.ID] = e
	}
	return r
}

var _ repository.EquipmentRepositoryInterface = (*fakeEquipmentRepo)(nil)

func (r *fakeEquipmentRepo) List(ctx context.Context, mainCategory *models.MainCategory) ([]models.Equipment, error) {
	out := []models.Equipment{}
	for _, e := range r.items {
		if mainCategory == nil || e.MainCategory == *mainCategory {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEquipmentRepo) Get(ctx context.Context, id int64) (*models.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, repository.ErrEquipmentNotFound
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) GetMany(ctx context.Context, ids []int64) (map[int64]models.Equipment, error) {
	out := map[int64]models.Equipment{}
	for _, id := range ids {
		if e, ok := r.items[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) Create(ctx context.Context, input models.EquipmentInput) (*models.Equipment, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeEquipmentRepo) Update(ctx context.Context, id int64, input models.EquipmentInput) (*models.Equipment, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeEquipmentRepo) SetImage(ctx context.Context, id int64, imageURL string) (*models.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, repository.ErrEquipmentNotFound
	}
	e.ImageURL = imageURL
	r.items[id] = e
	return &e, nil
}

func (r *fakeEquipmentRepo) Delete(ctx context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func (r *fakeEquipmentRepo) Catalog(ctx context.Context, mainCategory *models.MainCategory) (*models.CatalogResponse, error) {
	return nil, errors.New("not implemented")
}

type fakeQuoteRepo struct {
	quotes  map[int64]*models.QuoteRequest
	audit   *fakeAuditRepo
	updates int
}

func newFakeQuoteRepo(audit *fakeAuditRepo, quotes ...models.QuoteRequest) *fakeQuoteRepo {
	r := &fakeQuoteRepo{quotes: map[int64]*models.QuoteRequest{}, audit: audit}
	for i := range quotes {
		q := quotes[i]
		r.quotes[q.ID] = &q
	}
	return r
}

var _ repository.QuoteRequestRepositoryInterface = (*fakeQuoteRepo)(nil)

func (r *fakeQuoteRepo) Create(ctx context.Context, input models.QuoteRequestInput) (*models.QuoteRequest, error) {
	q := models.QuoteRequest{
		ID:            int64(len(r.quotes) + 1),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		JobName:       input.JobName,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Items:         input.Items,
		Status:        models.QuoteStatusPending,
	}
	r.quotes[q.ID] = &q
	return &q, nil
}

func (r *fakeQuoteRepo) Get(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	c := *q
	return &c, nil
}

func (r *fakeQuoteRepo) ListActive(ctx context.Context, filter models.QuoteFilter) ([]models.QuoteRequest, error) {
	out := []models.QuoteRequest{}
	for _, q := range r.quotes {
		if q.IsDeleted() || (filter.Status != nil && q.Status != *filter.Status) {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (r *fakeQuoteRepo) ListDeleted(ctx context.Context, search string) ([]models.QuoteRequest, error) {
	out := []models.QuoteRequest{}
	for _, q := range r.quotes {
		if q.IsDeleted() {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fakeQuoteRepo) Update(ctx context.Context, id int64, update models.QuoteRequestUpdate) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	if q.IsDeleted() {
		return nil, repository.ErrQuoteDeleted
	}
	if update.Items != nil {
		q.Items = update.Items
	}
	if update.StartDate != nil {
		q.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		q.EndDate = *update.EndDate
	}
	if update.IsTaxExempt != nil {
		q.IsTaxExempt = *update.IsTaxExempt
	}
	if update.DiscountAmount != nil {
		q.DiscountAmount = *update.DiscountAmount
	}
	r.updates++
	c := *q
	return &c, nil
}

func (r *fakeQuoteRepo) SetStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	q.Status = status
	c := *q
	return &c, nil
}

func (r *fakeQuoteRepo) SoftDelete(ctx context.Context, id int64, performer models.Performer, reason string) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	if q.IsDeleted() {
		return nil, repository.ErrQuoteDeleted
	}
	now := time.Now()
	q.DeletedAt = &now
	q.DeletedBy = &performer
	q.DeletionReason = reason
	r.audit.record(q, models.AuditActionDeleted, performer, reason)
	c := *q
	return &c, nil
}

func (r *fakeQuoteRepo) Restore(ctx context.Context, id int64, performer models.Performer) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	if !q.IsDeleted() {
		return nil, repository.ErrQuoteNotDeleted
	}
	q.DeletedAt, q.DeletedBy, q.DeletionReason = nil, nil, ""
	r.audit.record(q, models.AuditActionRestored, performer, "")
	c := *q
	return &c, nil
}

func (r *fakeQuoteRepo) PermanentlyDelete(ctx context.Context, id int64, performer models.Performer) error {
	q, ok := r.quotes[id]
	if !ok {
		return repository.ErrQuoteNotFound
	}
	if !q.IsDeleted() {
		return repository.ErrQuoteNotDeleted
	}
	r.audit.record(q, models.AuditActionPermanentlyDeleted, performer, "")
	delete(r.quotes, id)
	return nil
}

type fakeAuditRepo struct {
	entries []models.QuoteAuditLogEntry
}

var _ repository.AuditLogRepositoryInterface = (*fakeAuditRepo)(nil)

func (r *fakeAuditRepo) record(q *models.QuoteRequest, action models.AuditAction, performer models.Performer, details string) {
	r.entries = append(r.entries, models.QuoteAuditLogEntry{
		ID:          int64(len(r.entries) + 1),
		QuoteID:     q.ID,
		Action:      action,
		PerformedBy: performer,
		PerformedAt: time.Now(),
		Snapshot:    q.Snapshot(),
		Details:     details,
	})
}

func (r *fakeAuditRepo) Append(ctx context.Context, tx *sql.Tx, entry models.QuoteAuditLogEntry) (*models.QuoteAuditLogEntry, error) {
	entry.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
	return &entry, nil
}

func (r *fakeAuditRepo) ListByQuote(ctx context.Context, quoteID int64) ([]models.QuoteAuditLogEntry, error) {
	out := []models.QuoteAuditLogEntry{}
	for _, e := range r.entries {
		if e.QuoteID == quoteID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) List(ctx context.Context, limit int) ([]models.QuoteAuditLogEntry, error) {
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	return r.entries[:limit], nil
}

type fakeRenderer struct {
	html string
	err  error
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type fakeMailer struct {
	sent []EmailMessage
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeObjectStore struct {
	names []string
	err   error
}

func (s *fakeObjectStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "https://files.example.com/" + name, nil
}

func testEquipment(id int64, name, price string, unitsPerItem int) models.Equipment {
	return models.Equipment{
		ID:           id,
		Name:         name,
		MainCategory: models.MainCategoryProduction,
		Category:     "Lighting",
		PricePerUnit: decimal.NewNullDecimal(decimal.RequireFromString(price)),
		UnitsPerItem: unitsPerItem,
	}
}

// scenarioQuote is two units at $100/day over June 1-8: $1,200 before 7% tax, $1,284 after
func scenarioQuote(id int64) models.QuoteRequest {
	return models.QuoteRequest{
		ID:                id,
		CustomerName:      "Dana Reyes",
		CustomerEmail:     "dana@northlight.example",
		CustomerPhone:     "555-0100",
		Company:           "Northlight Films",
		JobName:           "Sunset Spot",
		StartDate:         models.NewDate(2025, time.June, 1),
		EndDate:           models.NewDate(2025, time.June, 8),
		ShootingLocations: "Stage 4",
		Items:             []models.CartLineItem{{Equipment: testEquipment(1, "LED Panel", "100", 1), Quantity: 2}},
		Status:            models.QuoteStatusPending,
		DiscountAmount:    decimal.Zero,
	}
}
