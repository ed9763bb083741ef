package submission

import (
	"fmt"
	"net/mail"
	"strings"

	"rental-quotes/models"
)

// Details is the customer and job information collected before submitting
type Details struct {
	ProductionCompany   string      `json:"productionCompany"`
	ContactName         string      `json:"contactName"`
	ContactEmail        string      `json:"contactEmail"`
	ContactPhone        string      `json:"contactPhone"`
	JobName             string      `json:"jobName"`
	JobNumber           string      `json:"jobNumber,omitempty"`
	PurchaseOrderNumber string      `json:"purchaseOrderNumber,omitempty"`
	PrimaryPickupDate   models.Date `json:"primaryPickupDate"`
	PrimaryReturnDate   models.Date `json:"primaryReturnDate"`
	ShootingLocations   string      `json:"shootingLocations"`
	SpecialRequests     string      `json:"specialRequests,omitempty"`
	IsTaxExempt         bool        `json:"isTaxExempt"`
}

// ValidationError lists the problems that keep the details from being accepted
type ValidationError struct {
	Missing  []string
	Problems []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return strings.Join(parts, "; ")
}

// Normalize trims all text fields
func (d Details) Normalize() Details {
	d.ProductionCompany = strings.TrimSpace(d.ProductionCompany)
	d.ContactName = strings.TrimSpace(d.ContactName)
	d.ContactEmail = strings.TrimSpace(d.ContactEmail)
	d.ContactPhone = strings.TrimSpace(d.ContactPhone)
	d.JobName = strings.TrimSpace(d.JobName)
	d.JobNumber = strings.TrimSpace(d.JobNumber)
	d.PurchaseOrderNumber = strings.TrimSpace(d.PurchaseOrderNumber)
	d.ShootingLocations = strings.TrimSpace(d.ShootingLocations)
	d.SpecialRequests = strings.TrimSpace(d.SpecialRequests)
	return d
}

// Validate returns a *ValidationError when a required field is empty, the email is
// malformed, or the return date is not after the pickup date
func (d Details) Validate() error {
	verr := &ValidationError{}
	required := []struct {
		name  string
		value string
	}{
		{"productionCompany", d.ProductionCompany},
		{"contactName", d.ContactName},
		{"contactEmail", d.ContactEmail},
		{"contactPhone", d.ContactPhone},
		{"jobName", d.JobName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.Missing = append(verr.Missing, f.name)
		}
	}
	if d.PrimaryPickupDate.IsZero() {
		verr.Missing = append(verr.Missing, "primaryPickupDate")
	}
	if d.PrimaryReturnDate.IsZero() {
		verr.Missing = append(verr.Missing, "primaryReturnDate")
	}
	if strings.TrimSpace(d.ShootingLocations) == "" {
		verr.Missing = append(verr.Missing, "shootingLocations")
	}

	if email := strings.TrimSpace(d.ContactEmail); email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			verr.Problems = append(verr.Problems, fmt.Sprintf("contactEmail %q is not a valid email address", email))
		}
	}
	if !d.PrimaryPickupDate.IsZero() && !d.PrimaryReturnDate.IsZero() && !d.PrimaryReturnDate.After(d.PrimaryPickupDate) {
		verr.Problems = append(verr.Problems, "primaryReturnDate must be after primaryPickupDate")
	}

	if len(verr.Missing) > 0 || len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// QuoteInput maps the details and a cart snapshot to a quote request payload
func (d Details) QuoteInput(items []models.CartLineItem) models.QuoteRequestInput {
	return models.QuoteRequestInput{
		CustomerName:      d.ContactName,
		CustomerEmail:     d.ContactEmail,
		CustomerPhone:     d.ContactPhone,
		Company:           d.ProductionCompany,
		JobName:           d.JobName,
		JobNumber:         d.JobNumber,
		PurchaseOrder:     d.PurchaseOrderNumber,
		StartDate:         d.PrimaryPickupDate,
		EndDate:           d.PrimaryReturnDate,
		ShootingLocations: d.ShootingLocations,
		SpecialRequests:   d.SpecialRequests,
		Items:             items,
		IsTaxExempt:       d.IsTaxExempt,
	}
}
