package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a quote request
type QuoteStatus string

const (
	QuoteStatusPending    QuoteStatus = "pending"
	QuoteStatusApproved   QuoteStatus = "approved"
	QuoteStatusInProgress QuoteStatus = "in_progress"
	QuoteStatusCompleted  QuoteStatus = "completed"
	QuoteStatusRejected   QuoteStatus = "rejected"
)

// QuoteStatuses lists every status. Any status may follow any other.
var QuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusApproved,
	QuoteStatusInProgress,
	QuoteStatusCompleted,
	QuoteStatusRejected,
}

// Valid reports whether s is a known status
func (s QuoteStatus) Valid() bool {
	for _, known := range QuoteStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseQuoteStatus normalizes and validates a status string ("In Progress" -> in_progress)
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := QuoteStatus(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return status, nil
}

// Performer identifies the authenticated user behind an admin action
type Performer struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// QuoteRequest represents a persisted customer quote request
// Example response:
//
//	{
//	  "id": 41,
//	  "customerName": "Dana Ruiz",
//	  "customerEmail": "dana@example.com",
//	  "customerPhone": "305-555-0100",
//	  "company": "Northlight Films",
//	  "jobName": "Sunset Spot",
//	  "startDate": "2025-06-01",
//	  "endDate": "2025-06-08",
//	  "shootingLocations": "Miami Beach",
//	  "items": [{"equipment": {"id": 12, "name": "Folding Chairs", ...}, "quantity": 2}],
//	  "status": "pending",
//	  "isTaxExempt": false,
//	  "discountAmount": "0",
//	  "createdAt": "2025-05-20T14:03:11Z",
//	  "updatedAt": "2025-05-20T14:03:11Z"
//	}
type QuoteRequest struct {
	ID                int64           `json:"id"`
	CustomerName      string          `json:"customerName"`
	CustomerEmail     string          `json:"customerEmail"`
	CustomerPhone     string          `json:"customerPhone"`
	Company           string          `json:"company,omitempty"`
	JobName           string          `json:"jobName"`
	JobNumber         string          `json:"jobNumber,omitempty"`
	PurchaseOrder     string          `json:"purchaseOrder,omitempty"`
	StartDate         Date            `json:"startDate"`
	EndDate           Date            `json:"endDate"`
	ShootingLocations string          `json:"shootingLocations"`
	SpecialRequests   string          `json:"specialRequests,omitempty"`
	Items             []CartLineItem  `json:"items"`
	Status            QuoteStatus     `json:"status"`
	IsTaxExempt       bool            `json:"isTaxExempt"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
	DeletionReason    string          `json:"deletionReason,omitempty"`
	DeletedBy         *Performer      `json:"deletedBy,omitempty"`
}

// IsDeleted reports whether the quote is in the soft-deleted set
func (q QuoteRequest) IsDeleted() bool {
	return q.DeletedAt != nil
}

// Snapshot captures the customer-identifying fields recorded in audit entries
func (q QuoteRequest) Snapshot() QuoteSnapshot {
	return QuoteSnapshot{
		CustomerName:  q.CustomerName,
		CustomerEmail: q.CustomerEmail,
		Company:       q.Company,
		JobName:       q.JobName,
	}
}

// QuoteRequestInput is the create payload. Status is not part of it: new quotes are always pending.
type QuoteRequestInput struct {
	CustomerName      string         `json:"customerName"`
	CustomerEmail     string         `json:"customerEmail"`
	CustomerPhone     string         `json:"customerPhone"`
	Company           string         `json:"company,omitempty"`
	JobName           string         `json:"jobName"`
	JobNumber         string         `json:"jobNumber,omitempty"`
	PurchaseOrder     string         `json:"purchaseOrder,omitempty"`
	StartDate         Date           `json:"startDate"`
	EndDate           Date           `json:"endDate"`
	ShootingLocations string         `json:"shootingLocations"`
	SpecialRequests   string         `json:"specialRequests,omitempty"`
	Items             []CartLineItem `json:"items"`
	IsTaxExempt       bool           `json:"isTaxExempt"`
}

// Validate checks the fields the store requires on creation
func (in QuoteRequestInput) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"customerName", in.CustomerName},
		{"customerEmail", in.CustomerEmail},
		{"customerPhone", in.CustomerPhone},
		{"jobName", in.JobName},
		{"shootingLocations", in.ShootingLocations},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if in.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if in.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.EndDate.After(in.StartDate) {
		return fmt.Errorf("endDate must be after startDate")
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("quote request must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d has invalid quantity %d", item.Equipment.ID, item.Quantity)
		}
	}
	return nil
}

// QuoteRequestUpdate is a partial update; nil fields are left unchanged
type QuoteRequestUpdate struct {
	CustomerName      *string          `json:"customerName,omitempty"`
	CustomerEmail     *string          `json:"customerEmail,omitempty"`
	CustomerPhone     *string          `json:"customerPhone,omitempty"`
	Company           *string          `json:"company,omitempty"`
	JobName           *string          `json:"jobName,omitempty"`
	JobNumber         *string          `json:"jobNumber,omitempty"`
	PurchaseOrder     *string          `json:"purchaseOrder,omitempty"`
	StartDate         *Date            `json:"startDate,omitempty"`
	EndDate           *Date            `json:"endDate,omitempty"`
	ShootingLocations *string          `json:"shootingLocations,omitempty"`
	SpecialRequests   *string          `json:"specialRequests,omitempty"`
	Items             []CartLineItem   `json:"items,omitempty"`
	IsTaxExempt       *bool            `json:"isTaxExempt,omitempty"`
	DiscountAmount    *decimal.Decimal `json:"discountAmount,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u QuoteRequestUpdate) IsEmpty() bool {
	return u.CustomerName == nil && u.CustomerEmail == nil && u.CustomerPhone == nil &&
		u.Company == nil && u.JobName == nil && u.JobNumber == nil && u.PurchaseOrder == nil &&
		u.StartDate == nil && u.EndDate == nil && u.ShootingLocations == nil &&
		u.SpecialRequests == nil && u.Items == nil && u.IsTaxExempt == nil && u.DiscountAmount == nil
}

// QuoteFilter narrows the active quote listing
type QuoteFilter struct {
	Search string
	Status *QuoteStatus
}

// QuoteListResponse represents the response for listing quote requests
type QuoteListResponse struct {
	Quotes []QuoteRequest `json:"quotes"`
}

// QuoteDetailResponse is a quote with its computed pricing
type QuoteDetailResponse struct {
	QuoteRequest
	Pricing PricingBreakdown `json:"pricing"`
}

// SetStatusRequest is the body of PUT /admin/quotes/{id}/status
// Example: {"status": "approved"}
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetDiscountRequest is the body of PUT /admin/quotes/{id}/discount.
// Amount is free text as typed by the admin.
// Example: {"amount": "150.00"}
type SetDiscountRequest struct {
	Amount string `json:"amount"`
}

// SetDatesRequest is the body of PUT /admin/quotes/{id}/dates
// Example: {"startDate": "2025-06-01", "endDate": "2025-06-08"}
type SetDatesRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SetTaxExemptRequest is the body of PUT /admin/quotes/{id}/tax-exempt
type SetTaxExemptRequest struct {
	IsTaxExempt bool `json:"isTaxExempt"`
}

// DeleteQuoteRequest is the optional body of DELETE /admin/quotes/{id}
// Example: {"reason": "Duplicate submission"}
type DeleteQuoteRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ItemEditOp is one staged edit against a quote's items
// Examples:
//
//	{"op": "add", "equipmentId": 12}
//	{"op": "set_quantity", "equipmentId": 12, "quantity": 4}
//	{"op": "remove", "equipmentId": 12}
type ItemEditOp struct {
	Op          string `json:"op"`
	EquipmentID int64  `json:"equipmentId"`
	Quantity    int    `json:"quantity,omitempty"`
}

// EditItemsRequest is the body of PATCH /admin/quotes/{id}/items
type EditItemsRequest struct {
	Ops []ItemEditOp `json:"ops"`
}

// EditItemsResponse returns the saved quote and a readable summary of what changed
type EditItemsResponse struct {
	Quote   QuoteDetailResponse `json:"quote"`
	Changes string              `json:"changes"`
}

// QuotePDFResponse is returned by PDF generation
type QuotePDFResponse struct {
	PDFBase64 string `json:"pdfBase64"`
	Filename  string `json:"filename"`
}

// MessageResponse is a plain confirmation body
type MessageResponse struct {
	Message string `json:"message"`
}

// ResyncPricesResponse returns the quote after its item snapshots were refreshed from the catalog
type ResyncPricesResponse struct {
	Quote     QuoteDetailResponse `json:"quote"`
	Refreshed int                 `json:"refreshed"`
}
