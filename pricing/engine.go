package pricing

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"rental-quotes/models"
)

// Config represents the pricing configuration structure
// Example file:
//
//	{
//	  "currency": "USD",
//	  "taxRate": "0.07",
//	  "excludedDays": 2,
//	  "minimumDays": 1
//	}
type Config struct {
	Currency string          `json:"currency"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	// ExcludedDays is the number of calendar days in the span that are not billed (pickup and return)
	ExcludedDays int `json:"excludedDays"`
	MinimumDays  int `json:"minimumDays"`
}

// DefaultTaxRate is the combined Miami-Dade County sales tax rate
var DefaultTaxRate = decimal.RequireFromString("0.07")

// DefaultConfig returns the configuration used when no config file is given
func DefaultConfig() Config {
	return Config{
		Currency:     "USD",
		TaxRate:      DefaultTaxRate,
		ExcludedDays: 2,
		MinimumDays:  1,
	}
}

// LoadConfig reads and validates a JSON pricing config. Missing fields take their defaults.
func LoadConfig(configPath string) (Config, error) {
	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = filepath.Join(wd, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read pricing config: %w", err)
	}

	var raw struct {
		Currency     string           `json:"currency"`
		TaxRate      *decimal.Decimal `json:"taxRate"`
		ExcludedDays *int             `json:"excludedDays"`
		MinimumDays  *int             `json:"minimumDays"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse pricing config: %w", err)
	}

	config := DefaultConfig()
	if raw.Currency != "" {
		config.Currency = raw.Currency
	}
	if raw.TaxRate != nil {
		config.TaxRate = *raw.TaxRate
	}
	if raw.ExcludedDays != nil {
		config.ExcludedDays = *raw.ExcludedDays
	}
	if raw.MinimumDays != nil {
		config.MinimumDays = *raw.MinimumDays
	}

	if err := validateConfig(config); err != nil {
		return Config{}, fmt.Errorf("invalid pricing config: %w", err)
	}
	log.Printf("✅ PricingEngine: Loaded pricing config from %s (taxRate=%s)", configPath, config.TaxRate)
	return config, nil
}

func validateConfig(config Config) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if config.TaxRate.IsNegative() || config.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("taxRate must be in [0, 1), got %s", config.TaxRate)
	}
	if config.ExcludedDays < 0 {
		return fmt.Errorf("excludedDays cannot be negative")
	}
	if config.MinimumDays < 1 {
		return fmt.Errorf("minimumDays must be at least 1")
	}
	return nil
}

// Input is everything the engine needs to price a quote
type Input struct {
	Items       []models.CartLineItem
	StartDate   models.Date
	EndDate     models.Date
	Discount    decimal.Decimal
	IsTaxExempt bool
}

// InputFromQuote builds pricing input from a stored quote request
func InputFromQuote(q models.QuoteRequest) Input {
	return Input{
		Items:       q.Items,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		Discount:    q.DiscountAmount,
		IsTaxExempt: q.IsTaxExempt,
	}
}

// Engine computes quote totals. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates a pricing engine from a validated config
func NewEngine(config Config) (*Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}
	return &Engine{config: config}, nil
}

// NewEngineFromFile loads the config at configPath, or uses DefaultConfig when configPath is empty
func NewEngineFromFile(configPath string) (*Engine, error) {
	if configPath == "" {
		log.Printf("💰 PricingEngine: No config file set, using defaults")
		return NewEngine(DefaultConfig())
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewEngine(config)
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.config
}

// TaxRate returns the single tax rate every priced document uses
func (e *Engine) TaxRate() decimal.Decimal {
	return e.config.TaxRate
}

// RentalDays returns the billable days between start and end.
// The span counts both endpoints; pickup and return days are excluded.
func (e *Engine) RentalDays(start, end models.Date) int {
	span := start.DaysUntil(end) + 1
	days := span - e.config.ExcludedDays
	if days < e.config.MinimumDays {
		return e.config.MinimumDays
	}
	return days
}

// Calculate prices the given items for the rental period
func (e *Engine) Calculate(in Input) models.PricingBreakdown {
	rentalDays := e.RentalDays(in.StartDate, in.EndDate)
	days := decimal.NewFromInt(int64(rentalDays))

	breakdown := models.PricingBreakdown{
		Currency:    e.config.Currency,
		RentalDays:  rentalDays,
		Lines:       make([]models.PricingLine, 0, len(in.Items)),
		GrandTotal:  decimal.Zero,
		IsTaxExempt: in.IsTaxExempt,
		TaxRate:     e.config.TaxRate,
	}

	for _, item := range in.Items {
		unitsPerItem := item.Equipment.EffectiveUnitsPerItem()
		totalUnits := item.Quantity * unitsPerItem
		price := item.Equipment.EffectivePricePerUnit()
		subtotal := price.Mul(decimal.NewFromInt(int64(totalUnits))).Mul(days)

		breakdown.GrandTotal = breakdown.GrandTotal.Add(subtotal)
		breakdown.Lines = append(breakdown.Lines, models.PricingLine{
			EquipmentID:  item.Equipment.ID,
			Name:         item.Equipment.Name,
			Quantity:     item.Quantity,
			UnitsPerItem: unitsPerItem,
			TotalUnits:   totalUnits,
			PricePerUnit: price,
			Subtotal:     subtotal,
		})
	}

	breakdown.Discount = clampDiscount(in.Discount, breakdown.GrandTotal)
	breakdown.SubtotalAfterDiscount = breakdown.GrandTotal.Sub(breakdown.Discount)
	if in.IsTaxExempt {
		breakdown.Tax = decimal.Zero
	} else {
		breakdown.Tax = breakdown.SubtotalAfterDiscount.Mul(e.config.TaxRate)
	}
	breakdown.FinalTotal = breakdown.SubtotalAfterDiscount.Add(breakdown.Tax)

	return breakdown
}

// clampDiscount keeps the applied discount within [0, grandTotal]
func clampDiscount(discount, grandTotal decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(grandTotal) {
		return grandTotal
	}
	return discount
}
