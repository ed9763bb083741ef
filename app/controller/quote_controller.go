package controller

import (
	"log"
	"net/http"

	"rental-quotes/cart"
	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/submission"
)

// QuoteController handles quote previews and submissions from the storefront
type QuoteController struct {
	storage cart.Storage
	creator submission.QuoteCreator
	engine  *pricing.Engine
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(storage cart.Storage, creator submission.QuoteCreator, engine *pricing.Engine) *QuoteController {
	return &QuoteController{
		storage: storage,
		creator: creator,
		engine:  engine,
	}
}

// Preview handles POST /quotes/preview
// Example request:
//
//	{
//	  "items": [{"equipment": {"id": 1, "pricePerUnit": "100", "unitsPerItem": 1}, "quantity": 2}],
//	  "startDate": "2025-06-01",
//	  "endDate": "2025-06-08"
//	}
//
// Example response:
//
//	{"currency": "USD", "rentalDays": 6, "grandTotal": "1200", "tax": "84", "finalTotal": "1284", ...}
func (c *QuoteController) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.PricingPreviewRequest
	if !decodeJSON(w, r, "PreviewQuote", &req) {
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		writeErrorMessage(w, http.StatusBadRequest, "endDate must be after startDate")
		return
	}
	writeJSON(w, http.StatusOK, c.engine.Calculate(pricing.Input{
		Items:       req.Items,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Discount:    req.DiscountAmount,
		IsTaxExempt: req.IsTaxExempt,
	}))
}

// Submit handles POST /quotes. The body is the customer details; the items come
// from the visitor's cart, which is cleared once the quote is stored.
// Example request:
//
//	{
//	  "productionCompany": "Northlight Films",
//	  "contactName": "Dana Reyes",
//	  "contactEmail": "dana@northlight.example",
//	  "contactPhone": "555-0100",
//	  "jobName": "Sunset Spot",
//	  "primaryPickupDate": "2025-06-01",
//	  "primaryReturnDate": "2025-06-08",
//	  "shootingLocations": "Stage 4"
//	}
func (c *QuoteController) Submit(w http.ResponseWriter, r *http.Request) {
	var details submission.Details
	if !decodeJSON(w, r, "SubmitQuote", &details) {
		return
	}

	current, err := cart.Open(r.Context(), c.storage, cartKey(w, r))
	if err != nil {
		writeError(w, "SubmitQuote", err)
		return
	}

	flow := submission.NewFlow(current, c.creator)
	defer closeLogged("SubmitQuote", flow)

	if err := flow.Next(); err != nil {
		writeError(w, "SubmitQuote", err)
		return
	}
	if err := flow.SetDetails(details); err != nil {
		writeError(w, "SubmitQuote", err)
		return
	}
	if err := flow.Next(); err != nil {
		writeError(w, "SubmitQuote", err)
		return
	}
	quote, err := flow.Submit(r.Context())
	if err != nil {
		writeError(w, "SubmitQuote", err)
		return
	}

	log.Printf("✅ SubmitQuote: Quote request id=%d submitted from %s", quote.ID, current.Key())
	writeJSON(w, http.StatusCreated, models.QuoteDetailResponse{
		QuoteRequest: *quote,
		Pricing:      c.engine.Calculate(pricing.InputFromQuote(*quote)),
	})
}
