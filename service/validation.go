package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rental-quotes/models"
)

// ValidationError is a rejected admin input. Nothing is persisted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseDiscount reads a discount typed by staff. Anything that is not a
// non-negative number becomes zero. "$1,250.50" is accepted.
func ParseDiscount(raw string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

// ValidateDates parses a rental period. Both dates are required and the end must be after the start.
func ValidateDates(start, end string) (models.Date, models.Date, error) {
	if strings.TrimSpace(start) == "" {
		return models.Date{}, models.Date{}, &ValidationError{Field: "startDate", Message: "pickup date is required"}
	}
	if strings.TrimSpace(end) == "" {
		return models.Date{}, models.Date{}, &ValidationError{Field: "endDate", Message: "return date is required"}
	}
	startDate, err := models.ParseDate(start)
	if err != nil {
		return models.Date{}, models.Date{}, &ValidationError{Field: "startDate", Message: err.Error()}
	}
	endDate, err := models.ParseDate(end)
	if err != nil {
		return models.Date{}, models.Date{}, &ValidationError{Field: "endDate", Message: err.Error()}
	}
	if !endDate.After(startDate) {
		return models.Date{}, models.Date{}, &ValidationError{Field: "endDate", Message: "return date must be after pickup date"}
	}
	return startDate, endDate, nil
}
