package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-quotes/cart"
	"rental-quotes/models"
)

type fakeCreator struct {
	calls int
	input models.QuoteRequestInput
	err   error
}

func (f *fakeCreator) Create(_ context.Context, input models.QuoteRequestInput) (*models.QuoteRequest, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &models.QuoteRequest{ID: 41, CustomerEmail: input.CustomerEmail, Status: models.QuoteStatusPending, Items: input.Items}, nil
}

func validDetails() Details {
	return Details{
		ProductionCompany: "Northlight Films",
		ContactName:       "Dana Ruiz",
		ContactEmail:      "dana@example.com",
		ContactPhone:      "305-555-0100",
		JobName:           "Sunset Spot",
		PrimaryPickupDate: models.NewDate(2025, time.June, 1),
		PrimaryReturnDate: models.NewDate(2025, time.June, 8),
		ShootingLocations: "Miami Beach",
	}
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(cart.NewMemoryStorage(), "session")
	c.AddItem(context.Background(), models.Equipment{ID: 1, Name: "Chair", UnitsPerItem: 1})
	c.AddItem(context.Background(), models.Equipment{ID: 1, Name: "Chair", UnitsPerItem: 1})
	return c
}

func advanceToReview(t *testing.T, f *Flow) {
	t.Helper()
	if err := f.Next(); err != nil {
		t.Fatalf("next from cart: %v", err)
	}
	if err := f.SetDetails(validDetails()); err != nil {
		t.Fatalf("set details: %v", err)
	}
	if err := f.Next(); err != nil {
		t.Fatalf("next from details: %v", err)
	}
	if f.Step() != ReviewingQuote {
		t.Fatalf("expected reviewing_quote got %s", f.Step())
	}
}

func TestEmptyCartCannotAdvance(t *testing.T) {
	creator := &fakeCreator{}
	f := NewFlow(cart.New(nil, "k"), creator)
	if err := f.Next(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart got %v", err)
	}
	if f.Step() != ReviewingCart {
		t.Fatalf("expected reviewing_cart got %s", f.Step())
	}
	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatalf("submit should fail from reviewing_cart")
	}
	if creator.calls != 0 {
		t.Fatalf("create must not be called, got %d calls", creator.calls)
	}
}

func TestDetailsValidationListsMissingFields(t *testing.T) {
	f := NewFlow(filledCart(t), &fakeCreator{})
	if err := f.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	d := validDetails()
	d.ContactPhone = "  "
	d.ShootingLocations = ""
	_ = f.SetDetails(d)

	err := f.Next()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if len(verr.Missing) != 2 || verr.Missing[0] != "contactPhone" || verr.Missing[1] != "shootingLocations" {
		t.Fatalf("unexpected missing fields: %v", verr.Missing)
	}
	if f.Step() != CollectingDetails {
		t.Fatalf("should stay on collecting_details, got %s", f.Step())
	}
}

func TestDetailsValidationChecksEmailAndDates(t *testing.T) {
	d := validDetails()
	d.ContactEmail = "not-an-email"
	d.PrimaryReturnDate = d.PrimaryPickupDate
	var verr *ValidationError
	if err := d.Validate(); !errors.As(err, &verr) || len(verr.Problems) != 2 {
		t.Fatalf("expected two problems got %v", err)
	}
	if err := validDetails().Validate(); err != nil {
		t.Fatalf("valid details rejected: %v", err)
	}
}

func TestSubmitSuccessClearsCartAndAutoReturns(t *testing.T) {
	c := filledCart(t)
	creator := &fakeCreator{}
	f := NewFlow(c, creator, WithConfirmationWindow(20*time.Millisecond))
	advanceToReview(t, f)

	quote, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if quote.ID != 41 || creator.calls != 1 {
		t.Fatalf("unexpected result %+v calls=%d", quote, creator.calls)
	}
	if creator.input.Company != "Northlight Films" || creator.input.Items[0].Quantity != 2 {
		t.Fatalf("payload not built from details and cart: %+v", creator.input)
	}
	if f.Step() != Submitted {
		t.Fatalf("expected submitted got %s", f.Step())
	}
	if c.TotalItems() != 0 {
		t.Fatalf("cart should be cleared")
	}
	if f.Details() != (Details{}) {
		t.Fatalf("details should be reset")
	}

	deadline := time.Now().Add(time.Second)
	for f.Step() != ReviewingCart {
		if time.Now().After(deadline) {
			t.Fatalf("flow did not return to reviewing_cart")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmitFailurePreservesDataAndAllowsRetry(t *testing.T) {
	c := filledCart(t)
	creator := &fakeCreator{err: errors.New("store unavailable")}
	f := NewFlow(c, creator)
	advanceToReview(t, f)

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected submit error")
	}
	if f.Step() != SubmissionFailed {
		t.Fatalf("expected submission_failed got %s", f.Step())
	}
	if f.LastError() == nil || f.Details().ContactName != "Dana Ruiz" || c.TotalItems() != 2 {
		t.Fatalf("failure must keep data and record the reason")
	}

	creator.err = nil
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.Step() != Submitted || creator.calls != 2 {
		t.Fatalf("retry should submit, step=%s calls=%d", f.Step(), creator.calls)
	}
	_ = f.Close()
}

func TestCloseBeforeSubmittingMarksManualClose(t *testing.T) {
	f := NewFlow(filledCart(t), &fakeCreator{})
	advanceToReview(t, f)
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !f.ManuallyClosed() || f.Step() != ReviewingCart {
		t.Fatalf("expected manual close and reset, step=%s", f.Step())
	}
	if f.Details().JobName != "Sunset Spot" {
		t.Fatalf("closing should keep entered details")
	}
}

func TestCloseAfterSubmitCancelsTimer(t *testing.T) {
	f := NewFlow(filledCart(t), &fakeCreator{}, WithConfirmationWindow(time.Hour))
	advanceToReview(t, f)
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.Step() != ReviewingCart || f.ManuallyClosed() {
		t.Fatalf("unexpected state after close: step=%s manual=%v", f.Step(), f.ManuallyClosed())
	}
}

func TestBackMovesOneStep(t *testing.T) {
	f := NewFlow(filledCart(t), &fakeCreator{})
	advanceToReview(t, f)
	if err := f.Back(); err != nil || f.Step() != CollectingDetails {
		t.Fatalf("back to details: %v %s", err, f.Step())
	}
	if err := f.Back(); err != nil || f.Step() != ReviewingCart {
		t.Fatalf("back to cart: %v %s", err, f.Step())
	}
	if err := f.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
}
