package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/repository"
)

type adminFixture struct {
	svc       *QuoteAdminService
	quotes    *fakeQuoteRepo
	audit     *fakeAuditRepo
	equipment *fakeEquipmentRepo
	mailer    *fakeMailer
	renderer  *fakeRenderer
}

func newAdminFixture(t *testing.T, mail MailSettings) *adminFixture {
	t.Helper()
	engine, err := pricing.NewEngine(pricing.DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	renderer := &fakeRenderer{}
	docs, err := NewQuoteDocumentService(engine, renderer)
	if err != nil {
		t.Fatalf("new document service: %v", err)
	}
	f := &adminFixture{
		audit:    &fakeAuditRepo{},
		mailer:   &fakeMailer{},
		renderer: renderer,
		equipment: newFakeEquipmentRepo(
			testEquipment(1, "LED Panel", "100", 1),
			testEquipment(2, "C-Stand", "10", 1),
			testEquipment(3, "Sandbag", "2", 1),
		),
	}
	f.quotes = newFakeQuoteRepo(f.audit, scenarioQuote(41))
	f.svc = NewQuoteAdminService(f.quotes, f.audit, f.equipment, engine, docs, f.mailer, mail)
	return f
}

var admin = models.Performer{ID: "u-1", Name: "Sam Ortiz", Email: "sam@rentals.example"}

func TestAdminGetIncludesPricing(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})

	detail, err := f.svc.Get(context.Background(), 41)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Pricing.FinalTotal.String() != "1284" {
		t.Fatalf("expected final total 1284 got %s", detail.Pricing.FinalTotal)
	}

	if _, err := f.svc.Get(context.Background(), 999); !errors.Is(err, repository.ErrQuoteNotFound) {
		t.Fatalf("expected ErrQuoteNotFound got %v", err)
	}
}

func TestAdminListActiveStatusFilter(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	quotes, err := f.svc.ListActive(ctx, "", "In Progress")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected no in-progress quotes got %d", len(quotes))
	}
	quotes, err = f.svc.ListActive(ctx, "", "all")
	if err != nil || len(quotes) != 1 {
		t.Fatalf("expected 1 quote got %d (%v)", len(quotes), err)
	}

	var verr *ValidationError
	if _, err := f.svc.ListActive(ctx, "", "archived"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
}

func TestAdminSetStatusAnyToAny(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	for _, status := range []string{"completed", "pending", "rejected", "approved"} {
		detail, err := f.svc.SetStatus(ctx, 41, status)
		if err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
		if string(detail.Status) != status {
			t.Fatalf("expected %s got %s", status, detail.Status)
		}
	}

	var verr *ValidationError
	if _, err := f.svc.SetStatus(ctx, 41, "archived"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
}

func TestAdminSetDiscount(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	detail, err := f.svc.SetDiscount(ctx, 41, "$200")
	if err != nil {
		t.Fatalf("set discount: %v", err)
	}
	// (1200 - 200) * 1.07
	if detail.Pricing.FinalTotal.String() != "1070" {
		t.Fatalf("expected 1070 got %s", detail.Pricing.FinalTotal)
	}

	detail, err = f.svc.SetDiscount(ctx, 41, "abc")
	if err != nil {
		t.Fatalf("set discount: %v", err)
	}
	if !detail.DiscountAmount.IsZero() {
		t.Fatalf("unparseable discount should be stored as zero, got %s", detail.DiscountAmount)
	}

	detail, err = f.svc.SetDiscount(ctx, 41, "5000")
	if err != nil {
		t.Fatalf("set discount: %v", err)
	}
	if !detail.Pricing.FinalTotal.IsZero() {
		t.Fatalf("discount above the grand total should clamp to zero total, got %s", detail.Pricing.FinalTotal)
	}
}

func TestAdminSetDatesAndTaxExempt(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	var verr *ValidationError
	if _, err := f.svc.SetDates(ctx, 41, "2025-06-08", "2025-06-01"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if f.quotes.updates != 0 {
		t.Fatalf("rejected dates must not be persisted")
	}

	detail, err := f.svc.SetDates(ctx, 41, "2025-06-01", "2025-06-04")
	if err != nil {
		t.Fatalf("set dates: %v", err)
	}
	if detail.Pricing.RentalDays != 2 {
		t.Fatalf("expected 2 rental days got %d", detail.Pricing.RentalDays)
	}

	detail, err = f.svc.SetTaxExempt(ctx, 41, true)
	if err != nil {
		t.Fatalf("set tax exempt: %v", err)
	}
	if !detail.Pricing.Tax.IsZero() || !detail.Pricing.FinalTotal.Equal(detail.Pricing.SubtotalAfterDiscount) {
		t.Fatalf("tax exempt quote should carry no tax: %+v", detail.Pricing)
	}
}

func TestAdminSaveItems(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	resp, err := f.svc.SaveItems(ctx, 41, []models.ItemEditOp{
		{Op: ItemOpAdd, EquipmentID: 2},
		{Op: ItemOpSetQuantity, EquipmentID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	if len(resp.Quote.Items) != 2 || resp.Quote.Items[1].Quantity != 3 {
		t.Fatalf("unexpected items %+v", resp.Quote.Items)
	}
	if resp.Changes == "" {
		t.Fatalf("expected a change summary")
	}
	// 1200 + 3 * 10 * 6
	if resp.Quote.Pricing.GrandTotal.String() != "1380" {
		t.Fatalf("expected grand total 1380 got %s", resp.Quote.Pricing.GrandTotal)
	}

	updates := f.quotes.updates
	resp, err = f.svc.SaveItems(ctx, 41, nil)
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	if f.quotes.updates != updates || resp.Changes != "" {
		t.Fatalf("saving without changes must not write")
	}
}

func TestAdminSaveItemsRejected(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	cases := [][]models.ItemEditOp{
		{{Op: ItemOpAdd, EquipmentID: 1}},
		{{Op: ItemOpAdd, EquipmentID: 99}},
		{{Op: ItemOpSetQuantity, EquipmentID: 1, Quantity: 0}},
		{{Op: ItemOpRemove, EquipmentID: 1}},
	}
	for i, ops := range cases {
		var verr *ValidationError
		if _, err := f.svc.SaveItems(ctx, 41, ops); !errors.As(err, &verr) {
			t.Fatalf("case %d: expected ValidationError got %v", i, err)
		}
	}
	if f.quotes.updates != 0 {
		t.Fatalf("rejected edits must not be persisted")
	}

	if _, err := f.svc.SoftDelete(ctx, 41, admin, "duplicate"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.svc.SaveItems(ctx, 41, []models.ItemEditOp{{Op: ItemOpAdd, EquipmentID: 2}}); !errors.Is(err, repository.ErrQuoteDeleted) {
		t.Fatalf("expected ErrQuoteDeleted got %v", err)
	}
}

func TestAdminEquipmentOptions(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})

	options, err := f.svc.EquipmentOptions(context.Background(), 41, "")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(options) != 2 || options[0].ID != 2 || options[1].ID != 3 {
		t.Fatalf("unexpected options %+v", options)
	}
}

func TestAdminResyncPrices(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	f.equipment.items[1] = testEquipment(1, "LED Panel", "120", 1)
	detail, refreshed, err := f.svc.ResyncPrices(ctx, 41)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("expected 1 refreshed item got %d", refreshed)
	}
	if detail.Items[0].Quantity != 2 || detail.Pricing.GrandTotal.String() != "1440" {
		t.Fatalf("unexpected resync result: qty=%d total=%s", detail.Items[0].Quantity, detail.Pricing.GrandTotal)
	}

	delete(f.equipment.items, 1)
	detail, refreshed, err = f.svc.ResyncPrices(ctx, 41)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if refreshed != 0 || detail.Items[0].Equipment.PricePerUnit.Decimal.String() != "120" {
		t.Fatalf("missing equipment should keep its snapshot")
	}
}

func TestAdminDeleteLifecycle(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})
	ctx := context.Background()

	if err := f.svc.PermanentlyDelete(ctx, 41, admin, true); !errors.Is(err, repository.ErrQuoteNotDeleted) {
		t.Fatalf("expected ErrQuoteNotDeleted got %v", err)
	}
	if _, err := f.svc.SoftDelete(ctx, 41, admin, "customer cancelled"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.svc.Restore(ctx, 41, admin); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.svc.SoftDelete(ctx, 41, admin, "duplicate"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := f.svc.PermanentlyDelete(ctx, 41, admin, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired got %v", err)
	}
	if err := f.svc.PermanentlyDelete(ctx, 41, admin, true); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}

	entries, err := f.svc.AuditLog(ctx, 41)
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	want := []models.AuditAction{
		models.AuditActionDeleted,
		models.AuditActionRestored,
		models.AuditActionDeleted,
		models.AuditActionPermanentlyDeleted,
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d audit entries got %d", len(want), len(entries))
	}
	for i, action := range want {
		if entries[i].Action != action {
			t.Fatalf("entry %d: expected %s got %s", i, action, entries[i].Action)
		}
	}
	if entries[3].Snapshot.CustomerName != "Dana Reyes" {
		t.Fatalf("audit entry should keep the customer snapshot")
	}
}

func TestAdminGeneratePDF(t *testing.T) {
	f := newAdminFixture(t, MailSettings{})

	resp, err := f.svc.GeneratePDF(context.Background(), 41)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.PDFBase64 == "" || resp.Filename != "quote-41-northlight-films-sunset-spot.pdf" {
		t.Fatalf("unexpected response %+v", resp)
	}

	f.renderer.err = errors.New("chrome crashed")
	var extErr *ExternalServiceError
	if _, err := f.svc.GeneratePDF(context.Background(), 41); !errors.As(err, &extErr) {
		t.Fatalf("expected ExternalServiceError got %v", err)
	}
}

func TestAdminSendQuoteEmail(t *testing.T) {
	form := filepath.Join(t.TempDir(), "credit-card-authorization.pdf")
	if err := os.WriteFile(form, []byte("%PDF form"), 0o644); err != nil {
		t.Fatalf("write form: %v", err)
	}
	f := newAdminFixture(t, MailSettings{InternalRecipient: "quotes@rentals.example", AuthorizationFormPath: form})

	if err := f.svc.SendQuoteEmail(context.Background(), 41); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected customer email and internal notice, got %d messages", len(f.mailer.sent))
	}
	customer := f.mailer.sent[0]
	if customer.To[0] != "dana@northlight.example" || customer.ReplyTo != "quotes@rentals.example" {
		t.Fatalf("unexpected customer email %+v", customer)
	}
	if len(customer.Attachments) != 2 || customer.Attachments[1].Filename != "credit-card-authorization.pdf" {
		t.Fatalf("expected quote PDF and authorization form attachments, got %d", len(customer.Attachments))
	}
	if f.mailer.sent[1].To[0] != "quotes@rentals.example" {
		t.Fatalf("unexpected notice recipient %v", f.mailer.sent[1].To)
	}
}

func TestAdminSendQuoteEmailFailures(t *testing.T) {
	f := newAdminFixture(t, MailSettings{AuthorizationFormPath: "/does/not/exist.pdf"})
	ctx := context.Background()

	if err := f.svc.SendQuoteEmail(ctx, 41); err != nil {
		t.Fatalf("a missing authorization form should not block sending: %v", err)
	}
	if len(f.mailer.sent) != 1 || len(f.mailer.sent[0].Attachments) != 1 {
		t.Fatalf("expected one message with only the quote PDF")
	}

	f.mailer.err = errors.New("quota exceeded")
	var extErr *ExternalServiceError
	if err := f.svc.SendQuoteEmail(ctx, 41); !errors.As(err, &extErr) || extErr.Service != "email" {
		t.Fatalf("expected email ExternalServiceError got %v", err)
	}

	f.svc.mailer = nil
	if err := f.svc.SendQuoteEmail(ctx, 41); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured got %v", err)
	}
}

func TestAdminDocumentsRejectDeletedQuote(t *testing.T) {
	f := newAdminFixture(t, MailSettings{InternalRecipient: "quotes@rentals.example"})
	ctx := context.Background()

	if _, err := f.svc.SoftDelete(ctx, 41, admin, "duplicate"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.svc.GeneratePDF(ctx, 41); !errors.Is(err, repository.ErrQuoteDeleted) {
		t.Fatalf("expected ErrQuoteDeleted from GeneratePDF got %v", err)
	}
	if err := f.svc.SendQuoteEmail(ctx, 41); !errors.Is(err, repository.ErrQuoteDeleted) {
		t.Fatalf("expected ErrQuoteDeleted from SendQuoteEmail got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no email should go out for a deleted quote, got %d", len(f.mailer.sent))
	}

	if _, err := f.svc.Restore(ctx, 41, admin); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.svc.GeneratePDF(ctx, 41); err != nil {
		t.Fatalf("generate after restore: %v", err)
	}
	if err := f.svc.SendQuoteEmail(ctx, 41); err != nil {
		t.Fatalf("send after restore: %v", err)
	}
}
