// Package submission drives a customer from a filled cart to a persisted quote request.
//
// The flow moves ReviewingCart -> CollectingDetails -> ReviewingQuote -> Submitting and
// ends in Submitted or SubmissionFailed. A successful submission clears the cart and,
// after ConfirmationWindow, returns the flow to ReviewingCart.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"rental-quotes/cart"
	"rental-quotes/models"
)

// DefaultConfirmationWindow is how long the confirmation stays up before the flow resets
const DefaultConfirmationWindow = 10 * time.Second

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidTransition    = errors.New("invalid step transition")
	ErrSubmissionInProgress = errors.New("submission in progress")
)

// Step is a state of the flow
type Step int

const (
	ReviewingCart Step = iota
	CollectingDetails
	ReviewingQuote
	Submitting
	Submitted
	SubmissionFailed
)

func (s Step) String() string {
	switch s {
	case ReviewingCart:
		return "reviewing_cart"
	case CollectingDetails:
		return "collecting_details"
	case ReviewingQuote:
		return "reviewing_quote"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case SubmissionFailed:
		return "submission_failed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// QuoteCreator persists a new quote request
type QuoteCreator interface {
	Create(ctx context.Context, input models.QuoteRequestInput) (*models.QuoteRequest, error)
}

// State is a point-in-time view of the flow
type State struct {
	Step           Step                 `json:"step"`
	Details        Details              `json:"details"`
	Cart           models.CartResponse  `json:"cart"`
	LastError      string               `json:"lastError,omitempty"`
	ManuallyClosed bool                 `json:"manuallyClosed"`
	Submitted      *models.QuoteRequest `json:"submitted,omitempty"`
}

// Option configures a Flow
type Option func(*Flow)

// WithConfirmationWindow overrides DefaultConfirmationWindow
func WithConfirmationWindow(d time.Duration) Option {
	return func(f *Flow) {
		f.confirmationWindow = d
	}
}

// Flow is the submission state machine for one cart. It is safe for concurrent use.
type Flow struct {
	mu                 sync.Mutex
	cart               *cart.Cart
	creator            QuoteCreator
	step               Step
	details            Details
	lastErr            error
	submitted          *models.QuoteRequest
	manuallyClosed     bool
	timer              *time.Timer
	confirmationWindow time.Duration
}

// NewFlow starts a flow at ReviewingCart
func NewFlow(c *cart.Cart, creator QuoteCreator, opts ...Option) *Flow {
	f := &Flow{
		cart:               c,
		creator:            creator,
		step:               ReviewingCart,
		confirmationWindow: DefaultConfirmationWindow,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Step returns the current step
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// LastError returns the reason of the last failed submission
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// ManuallyClosed reports whether the user closed the flow before submitting
func (f *Flow) ManuallyClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manuallyClosed
}

// Details returns the collected customer details
func (f *Flow) Details() Details {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details
}

// State returns a snapshot of the flow
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := State{
		Step:           f.step,
		Details:        f.details,
		Cart:           f.cart.Response(),
		ManuallyClosed: f.manuallyClosed,
		Submitted:      f.submitted,
	}
	if f.lastErr != nil {
		s.LastError = f.lastErr.Error()
	}
	return s
}

// SetDetails stores the customer details. They are validated when leaving CollectingDetails.
func (f *Flow) SetDetails(d Details) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == Submitting {
		return ErrSubmissionInProgress
	}
	f.details = d.Normalize()
	return nil
}

// Next advances one step. Leaving ReviewingCart needs a non-empty cart and leaving
// CollectingDetails needs valid details. ReviewingQuote advances through Submit.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case ReviewingCart:
		if f.cart.TotalItems() == 0 {
			return ErrEmptyCart
		}
		f.step = CollectingDetails
	case CollectingDetails:
		if err := f.details.Validate(); err != nil {
			return err
		}
		f.step = ReviewingQuote
	default:
		return fmt.Errorf("%w: cannot advance from %s", ErrInvalidTransition, f.step)
	}
	f.manuallyClosed = false
	return nil
}

// Back moves one step towards ReviewingCart
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case CollectingDetails:
		f.step = ReviewingCart
	case ReviewingQuote, SubmissionFailed:
		f.step = CollectingDetails
	default:
		return fmt.Errorf("%w: cannot go back from %s", ErrInvalidTransition, f.step)
	}
	return nil
}

// Submit creates the quote request from the cart and details. It is allowed from
// ReviewingQuote and, as a retry, from SubmissionFailed.
func (f *Flow) Submit(ctx context.Context) (*models.QuoteRequest, error) {
	f.mu.Lock()
	if f.step != ReviewingQuote && f.step != SubmissionFailed {
		step := f.step
		f.mu.Unlock()
		if step == Submitting {
			return nil, ErrSubmissionInProgress
		}
		return nil, fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, step)
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if err := f.details.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	input := f.details.QuoteInput(items)
	f.step = Submitting
	f.lastErr = nil
	f.mu.Unlock()

	log.Printf("📝 Submit: Creating quote request for %s (%d lines)", input.CustomerEmail, len(items))
	quote, err := f.creator.Create(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		log.Printf("❌ Submit: Failed to create quote request: %v", err)
		f.step = SubmissionFailed
		f.lastErr = err
		return nil, fmt.Errorf("failed to submit quote request: %w", err)
	}

	log.Printf("✅ Submit: Quote request %d created", quote.ID)
	f.cart.Clear(ctx)
	f.details = Details{}
	f.submitted = quote
	f.step = Submitted
	f.stopTimer()
	f.timer = time.AfterFunc(f.confirmationWindow, f.returnToCart)
	return quote, nil
}

// Close dismisses the flow. Before Submitting it records a manual close and resets
// to ReviewingCart, keeping entered details. After Submitted it cancels the pending
// auto-return and resets immediately.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case Submitting:
		return ErrSubmissionInProgress
	case Submitted:
		f.stopTimer()
		f.submitted = nil
	default:
		f.manuallyClosed = true
	}
	f.step = ReviewingCart
	return nil
}

func (f *Flow) returnToCart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == Submitted {
		f.step = ReviewingCart
		f.submitted = nil
	}
	f.timer = nil
}

// stopTimer must be called with mu held
func (f *Flow) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
