package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/repository"
)

// QuoteDocuments renders quote documents
type QuoteDocuments interface {
	GeneratePDF(ctx context.Context, quote models.QuoteRequest) (*QuoteDocument, error)
	RenderHTML(quote models.QuoteRequest) (string, error)
	RenderEmail(quote models.QuoteRequest) (string, error)
	RenderNotice(quote models.QuoteRequest) (string, error)
}

// MailSettings configures quote emails
type MailSettings struct {
	InternalRecipient     string
	AuthorizationFormPath string
}

// QuoteAdminService implements back-office quote management
type QuoteAdminService struct {
	quotes    repository.QuoteRequestRepositoryInterface
	audit     repository.AuditLogRepositoryInterface
	equipment repository.EquipmentRepositoryInterface
	engine    *pricing.Engine
	documents QuoteDocuments
	mailer    Mailer
	mail      MailSettings
}

// NewQuoteAdminService creates a new QuoteAdminService. documents and mailer may be nil
// when PDF generation or email is not configured.
func NewQuoteAdminService(
	quotes repository.QuoteRequestRepositoryInterface,
	audit repository.AuditLogRepositoryInterface,
	equipment repository.EquipmentRepositoryInterface,
	engine *pricing.Engine,
	documents QuoteDocuments,
	mailer Mailer,
	mail MailSettings,
) *QuoteAdminService {
	return &QuoteAdminService{
		quotes:    quotes,
		audit:     audit,
		equipment: equipment,
		engine:    engine,
		documents: documents,
		mailer:    mailer,
		mail:      mail,
	}
}

// Detail attaches the computed pricing to a quote
func (s *QuoteAdminService) Detail(quote models.QuoteRequest) models.QuoteDetailResponse {
	return models.QuoteDetailResponse{
		QuoteRequest: quote,
		Pricing:      s.engine.Calculate(pricing.InputFromQuote(quote)),
	}
}

// ListActive lists quotes in the working set
func (s *QuoteAdminService) ListActive(ctx context.Context, search, status string) ([]models.QuoteRequest, error) {
	filter := models.QuoteFilter{Search: search}
	if status != "" && status != "all" {
		parsed, err := models.ParseQuoteStatus(status)
		if err != nil {
			return nil, &ValidationError{Field: "status", Message: err.Error()}
		}
		filter.Status = &parsed
	}
	return s.quotes.ListActive(ctx, filter)
}

// ListDeleted lists soft-deleted quotes
func (s *QuoteAdminService) ListDeleted(ctx context.Context, search string) ([]models.QuoteRequest, error) {
	return s.quotes.ListDeleted(ctx, search)
}

// Get returns a quote with pricing
func (s *QuoteAdminService) Get(ctx context.Context, id int64) (*models.QuoteDetailResponse, error) {
	quote, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := s.Detail(*quote)
	return &detail, nil
}

// activeQuote loads a quote and rejects soft-deleted ones
func (s *QuoteAdminService) activeQuote(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	quote, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.IsDeleted() {
		return nil, repository.ErrQuoteDeleted
	}
	return quote, nil
}

func (s *QuoteAdminService) update(ctx context.Context, id int64, update models.QuoteRequestUpdate) (*models.QuoteDetailResponse, error) {
	saved, err := s.quotes.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	detail := s.Detail(*saved)
	return &detail, nil
}

// SetStatus changes the status. Any status may follow any other.
func (s *QuoteAdminService) SetStatus(ctx context.Context, id int64, status string) (*models.QuoteDetailResponse, error) {
	parsed, err := models.ParseQuoteStatus(status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: err.Error()}
	}
	saved, err := s.quotes.SetStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	detail := s.Detail(*saved)
	return &detail, nil
}

// SetDiscount stores a discount typed by staff. Unparseable or negative input becomes zero.
func (s *QuoteAdminService) SetDiscount(ctx context.Context, id int64, raw string) (*models.QuoteDetailResponse, error) {
	amount := ParseDiscount(raw)
	log.Printf("💰 SetDiscount: Quote id=%d discount %q -> %s", id, raw, amount)
	return s.update(ctx, id, models.QuoteRequestUpdate{DiscountAmount: &amount})
}

// SetDates changes the rental period after validating it
func (s *QuoteAdminService) SetDates(ctx context.Context, id int64, start, end string) (*models.QuoteDetailResponse, error) {
	startDate, endDate, err := ValidateDates(start, end)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, models.QuoteRequestUpdate{StartDate: &startDate, EndDate: &endDate})
}

// SetTaxExempt toggles tax exemption
func (s *QuoteAdminService) SetTaxExempt(ctx context.Context, id int64, exempt bool) (*models.QuoteDetailResponse, error) {
	return s.update(ctx, id, models.QuoteRequestUpdate{IsTaxExempt: &exempt})
}

// SaveItems stages ops against the saved items and persists the result when anything changed
func (s *QuoteAdminService) SaveItems(ctx context.Context, id int64, ops []models.ItemEditOp) (*models.EditItemsResponse, error) {
	quote, err := s.activeQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	editor := NewItemEditor(quote.Items)
	lookup := func(equipmentID int64) (models.Equipment, error) {
		equipment, err := s.equipment.Get(ctx, equipmentID)
		if err != nil {
			return models.Equipment{}, err
		}
		return *equipment, nil
	}
	if err := editor.Apply(ops, lookup); err != nil {
		if isItemEditError(err) {
			return nil, &ValidationError{Field: "ops", Message: err.Error()}
		}
		return nil, err
	}

	if !editor.Dirty() {
		return &models.EditItemsResponse{Quote: s.Detail(*quote)}, nil
	}
	if len(editor.Items()) == 0 {
		return nil, &ValidationError{Field: "ops", Message: "a quote must keep at least one item"}
	}

	changes := editor.Diff()
	detail, err := s.update(ctx, id, models.QuoteRequestUpdate{Items: editor.Items()})
	if err != nil {
		return nil, err
	}
	editor.Commit(detail.Items)

	log.Printf("✅ SaveItems: Quote id=%d items saved:\n%s", id, changes)
	return &models.EditItemsResponse{Quote: *detail, Changes: changes}, nil
}

func isItemEditError(err error) bool {
	return errors.Is(err, ErrItemAlreadyPresent) ||
		errors.Is(err, ErrItemNotPresent) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownItemOp) ||
		errors.Is(err, repository.ErrEquipmentNotFound)
}

// EquipmentOptions lists catalog equipment that can still be added to the quote
func (s *QuoteAdminService) EquipmentOptions(ctx context.Context, id int64, search string) ([]models.Equipment, error) {
	quote, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.equipment.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewItemEditor(quote.Items).Options(catalog, search), nil
}

// ResyncPrices refreshes each item's equipment snapshot from the current catalog.
// Items whose equipment no longer exists keep their snapshot.
func (s *QuoteAdminService) ResyncPrices(ctx context.Context, id int64) (*models.QuoteDetailResponse, int, error) {
	quote, err := s.activeQuote(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(quote.Items))
	for _, item := range quote.Items {
		ids = append(ids, item.Equipment.ID)
	}
	current, err := s.equipment.GetMany(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]models.CartLineItem, len(quote.Items))
	refreshed := 0
	for i, item := range quote.Items {
		items[i] = item
		if equipment, ok := current[item.Equipment.ID]; ok {
			items[i].Equipment = equipment
			refreshed++
		}
	}

	detail, err := s.update(ctx, id, models.QuoteRequestUpdate{Items: items})
	if err != nil {
		return nil, 0, err
	}
	log.Printf("✅ ResyncPrices: Quote id=%d refreshed %d of %d items", id, refreshed, len(items))
	return detail, refreshed, nil
}

// SoftDelete moves a quote to the deleted set
func (s *QuoteAdminService) SoftDelete(ctx context.Context, id int64, performer models.Performer, reason string) (*models.QuoteRequest, error) {
	return s.quotes.SoftDelete(ctx, id, performer, reason)
}

// Restore returns a quote to the working set
func (s *QuoteAdminService) Restore(ctx context.Context, id int64, performer models.Performer) (*models.QuoteRequest, error) {
	return s.quotes.Restore(ctx, id, performer)
}

// PermanentlyDelete erases a soft-deleted quote. confirm must be true.
func (s *QuoteAdminService) PermanentlyDelete(ctx context.Context, id int64, performer models.Performer, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return s.quotes.PermanentlyDelete(ctx, id, performer)
}

// AuditLog returns a quote's audit trail
func (s *QuoteAdminService) AuditLog(ctx context.Context, id int64) ([]models.QuoteAuditLogEntry, error) {
	return s.audit.ListByQuote(ctx, id)
}

// RecentAuditLog returns the latest audit entries across quotes
func (s *QuoteAdminService) RecentAuditLog(ctx context.Context, limit int) ([]models.QuoteAuditLogEntry, error) {
	return s.audit.List(ctx, limit)
}

// RenderHTML returns the printable quote page
func (s *QuoteAdminService) RenderHTML(ctx context.Context, id int64) (string, error) {
	if s.documents == nil {
		return "", &ExternalServiceError{Service: "document rendering", Err: ErrNotConfigured}
	}
	quote, err := s.quotes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.documents.RenderHTML(*quote)
}

// GeneratePDF prints an active quote
func (s *QuoteAdminService) GeneratePDF(ctx context.Context, id int64) (*models.QuotePDFResponse, error) {
	quote, err := s.activeQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.generatePDF(ctx, *quote)
	if err != nil {
		return nil, err
	}
	return &models.QuotePDFResponse{PDFBase64: doc.Base64(), Filename: doc.Filename}, nil
}

func (s *QuoteAdminService) generatePDF(ctx context.Context, quote models.QuoteRequest) (*QuoteDocument, error) {
	if s.documents == nil {
		return nil, &ExternalServiceError{Service: "PDF generation", Err: ErrNotConfigured}
	}
	doc, err := s.documents.GeneratePDF(ctx, quote)
	if err != nil {
		return nil, &ExternalServiceError{Service: "PDF generation", Err: err}
	}
	return doc, nil
}

// SendQuoteEmail emails the PDF of an active quote and the authorization form to
// the customer, then notifies staff. A failed staff notification is logged only.
func (s *QuoteAdminService) SendQuoteEmail(ctx context.Context, id int64) error {
	if s.mailer == nil {
		return &ExternalServiceError{Service: "email", Err: ErrNotConfigured}
	}
	quote, err := s.activeQuote(ctx, id)
	if err != nil {
		return err
	}

	doc, err := s.generatePDF(ctx, *quote)
	if err != nil {
		return err
	}
	body, err := s.documents.RenderEmail(*quote)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	attachments := []Attachment{{Filename: doc.Filename, ContentType: "application/pdf", Data: doc.PDF}}
	if form := s.authorizationForm(); form != nil {
		attachments = append(attachments, *form)
	}

	log.Printf("📧 SendQuoteEmail: Sending quote id=%d to %s", id, quote.CustomerEmail)
	if err := s.mailer.Send(ctx, EmailMessage{
		To:          []string{quote.CustomerEmail},
		ReplyTo:     s.mail.InternalRecipient,
		Subject:     fmt.Sprintf("Your rental quote #%d: %s", quote.ID, quote.JobName),
		HTMLBody:    body,
		Attachments: attachments,
	}); err != nil {
		return &ExternalServiceError{Service: "email", Err: err}
	}

	if s.mail.InternalRecipient != "" {
		notice, err := s.documents.RenderNotice(*quote)
		if err == nil {
			err = s.mailer.Send(ctx, EmailMessage{
				To:       []string{s.mail.InternalRecipient},
				Subject:  fmt.Sprintf("Quote #%d sent to %s", quote.ID, quote.CustomerName),
				HTMLBody: notice,
			})
		}
		if err != nil {
			log.Printf("⚠️ SendQuoteEmail: Internal notification for quote id=%d failed: %v", id, err)
		}
	}

	log.Printf("✅ SendQuoteEmail: Quote id=%d emailed", id)
	return nil
}

func (s *QuoteAdminService) authorizationForm() *Attachment {
	if s.mail.AuthorizationFormPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.mail.AuthorizationFormPath)
	if err != nil {
		log.Printf("⚠️ SendQuoteEmail: Authorization form not attached: %v", err)
		return nil
	}
	return &Attachment{
		Filename:    filepath.Base(s.mail.AuthorizationFormPath),
		ContentType: "application/pdf",
		Data:        data,
	}
}
