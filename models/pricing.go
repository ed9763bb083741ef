package models

import "github.com/shopspring/decimal"

// PricingLine represents pricing information for a single quote line
type PricingLine struct {
	EquipmentID  int64           `json:"equipmentId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitsPerItem int             `json:"unitsPerItem"`
	TotalUnits   int             `json:"totalUnits"`   // quantity * unitsPerItem
	PricePerUnit decimal.Decimal `json:"pricePerUnit"` // zero when the equipment is not priced
	Subtotal     decimal.Decimal `json:"subtotal"`     // totalUnits * pricePerUnit * rentalDays
}

// PricingBreakdown represents the complete pricing calculation result
type PricingBreakdown struct {
	Currency              string          `json:"currency"`
	RentalDays            int             `json:"rentalDays"`
	Lines                 []PricingLine   `json:"lines"`
	GrandTotal            decimal.Decimal `json:"grandTotal"`
	Discount              decimal.Decimal `json:"discount"` // discount actually applied
	SubtotalAfterDiscount decimal.Decimal `json:"subtotalAfterDiscount"`
	IsTaxExempt           bool            `json:"isTaxExempt"`
	TaxRate               decimal.Decimal `json:"taxRate"`
	Tax                   decimal.Decimal `json:"tax"`
	FinalTotal            decimal.Decimal `json:"finalTotal"`
}

// PricingPreviewRequest is the body of POST /quotes/preview
// Example:
//
//	{
//	  "items": [{"equipment": {"id": 1, "pricePerUnit": "100", "unitsPerItem": 1}, "quantity": 2}],
//	  "startDate": "2025-06-01",
//	  "endDate": "2025-06-08",
//	  "discountAmount": "0",
//	  "isTaxExempt": false
//	}
type PricingPreviewRequest struct {
	Items          []CartLineItem  `json:"items"`
	StartDate      Date            `json:"startDate"`
	EndDate        Date            `json:"endDate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	IsTaxExempt    bool            `json:"isTaxExempt"`
}
