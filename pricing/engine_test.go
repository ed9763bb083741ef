package pricing

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rental-quotes/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pricedItem(id int64, price string, unitsPerItem, quantity int) models.CartLineItem {
	return models.CartLineItem{
		Equipment: models.Equipment{
			ID:           id,
			Name:         "Equipment",
			PricePerUnit: decimal.NewNullDecimal(dec(price)),
			UnitsPerItem: unitsPerItem,
		},
		Quantity: quantity,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func baseInput() Input {
	return Input{
		Items:     []models.CartLineItem{pricedItem(1, "100", 1, 2)},
		StartDate: models.NewDate(2025, time.June, 1),
		EndDate:   models.NewDate(2025, time.June, 8),
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: expected %s got %s", name, want, got)
	}
}

func TestCalculateStandardQuote(t *testing.T) {
	b := newTestEngine(t).Calculate(baseInput())
	if b.RentalDays != 6 {
		t.Fatalf("expected 6 rental days got %d", b.RentalDays)
	}
	assertDec(t, "grandTotal", b.GrandTotal, "1200")
	assertDec(t, "tax", b.Tax, "84")
	assertDec(t, "finalTotal", b.FinalTotal, "1284")
	if len(b.Lines) != 1 || b.Lines[0].TotalUnits != 2 {
		t.Fatalf("unexpected lines: %+v", b.Lines)
	}
}

func TestCalculateTaxExempt(t *testing.T) {
	in := baseInput()
	in.IsTaxExempt = true
	b := newTestEngine(t).Calculate(in)
	assertDec(t, "tax", b.Tax, "0")
	assertDec(t, "finalTotal", b.FinalTotal, "1200")
}

func TestCalculateWithDiscount(t *testing.T) {
	in := baseInput()
	in.Discount = dec("200")
	b := newTestEngine(t).Calculate(in)
	assertDec(t, "subtotalAfterDiscount", b.SubtotalAfterDiscount, "1000")
	assertDec(t, "tax", b.Tax, "70")
	assertDec(t, "finalTotal", b.FinalTotal, "1070")
}

func TestDiscountIsClamped(t *testing.T) {
	e := newTestEngine(t)

	in := baseInput()
	in.Discount = dec("5000")
	b := e.Calculate(in)
	assertDec(t, "discount", b.Discount, "1200")
	assertDec(t, "subtotalAfterDiscount", b.SubtotalAfterDiscount, "0")
	assertDec(t, "tax", b.Tax, "0")
	assertDec(t, "finalTotal", b.FinalTotal, "0")

	in.Discount = dec("-50")
	b = e.Calculate(in)
	assertDec(t, "discount", b.Discount, "0")
	assertDec(t, "finalTotal", b.FinalTotal, "1284")
}

func TestRentalDaysMinimum(t *testing.T) {
	e := newTestEngine(t)
	start := models.NewDate(2025, time.June, 1)
	cases := []struct {
		end  models.Date
		want int
	}{
		{start, 1},
		{start.AddDays(1), 1},
		{start.AddDays(2), 1},
		{start.AddDays(3), 2},
		{start.AddDays(7), 6},
		{start.AddDays(-3), 1},
	}
	for _, c := range cases {
		if got := e.RentalDays(start, c.end); got != c.want {
			t.Fatalf("rental days %s -> %s: expected %d got %d", start, c.end, c.want, got)
		}
	}
}

func TestRentalDaysAcrossMonths(t *testing.T) {
	e := newTestEngine(t)
	got := e.RentalDays(models.NewDate(2025, time.February, 27), models.NewDate(2025, time.March, 3))
	if got != 3 {
		t.Fatalf("expected 3 got %d", got)
	}
}

func TestSubtotalMultipliesUnitsPerItem(t *testing.T) {
	in := baseInput()
	in.Items = []models.CartLineItem{pricedItem(7, "1.5", 50, 3)}
	b := newTestEngine(t).Calculate(in)
	if b.Lines[0].TotalUnits != 150 {
		t.Fatalf("expected 150 units got %d", b.Lines[0].TotalUnits)
	}
	// 150 units * 1.5 * 6 days
	assertDec(t, "subtotal", b.Lines[0].Subtotal, "1350")
	assertDec(t, "grandTotal", b.GrandTotal, "1350")
}

func TestUnpricedEquipmentContributesZero(t *testing.T) {
	in := baseInput()
	in.Items = append(in.Items, models.CartLineItem{
		Equipment: models.Equipment{ID: 9, Name: "Call for price"},
		Quantity:  4,
	})
	b := newTestEngine(t).Calculate(in)
	if len(b.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(b.Lines))
	}
	if b.Lines[1].UnitsPerItem != 1 || b.Lines[1].TotalUnits != 4 {
		t.Fatalf("unitsPerItem should default to 1: %+v", b.Lines[1])
	}
	assertDec(t, "unpriced subtotal", b.Lines[1].Subtotal, "0")
	assertDec(t, "grandTotal", b.GrandTotal, "1200")
}

func TestGrandTotalIsSumOfLines(t *testing.T) {
	in := baseInput()
	in.Items = []models.CartLineItem{
		pricedItem(1, "12.25", 1, 3),
		pricedItem(2, "0.10", 10, 7),
		pricedItem(3, "99.99", 2, 1),
	}
	b := newTestEngine(t).Calculate(in)
	sum := decimal.Zero
	for _, l := range b.Lines {
		sum = sum.Add(l.Subtotal)
	}
	if !sum.Equal(b.GrandTotal) {
		t.Fatalf("grand total %s != sum of lines %s", b.GrandTotal, sum)
	}
	if !b.FinalTotal.Equal(b.SubtotalAfterDiscount.Add(b.Tax)) {
		t.Fatalf("final total %s != subtotal %s + tax %s", b.FinalTotal, b.SubtotalAfterDiscount, b.Tax)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{
			name: "fractional prices",
			input: Input{
				Items: []models.CartLineItem{
					pricedItem(1, "12.35", 1, 3),
					pricedItem(2, "0.07", 12, 7),
					pricedItem(3, "199.99", 2, 1),
					pricedItem(4, "4.5", 4, 5),
				},
				StartDate: models.NewDate(2025, time.June, 1),
				EndDate:   models.NewDate(2025, time.June, 14),
			},
		},
		{
			name: "discount and unpriced item",
			input: Input{
				Items: []models.CartLineItem{
					pricedItem(1, "100", 1, 2),
					{Equipment: models.Equipment{ID: 2, Name: "Unpriced"}, Quantity: 4},
					pricedItem(3, "33.33", 3, 3),
				},
				StartDate: models.NewDate(2025, time.January, 30),
				EndDate:   models.NewDate(2025, time.February, 3),
				Discount:  dec("150.25"),
			},
		},
		{
			name: "tax exempt",
			input: Input{
				Items: []models.CartLineItem{
					pricedItem(1, "8.10", 6, 2),
					pricedItem(2, "2.01", 1, 9),
				},
				StartDate:   models.NewDate(2025, time.March, 1),
				EndDate:     models.NewDate(2025, time.March, 1),
				IsTaxExempt: true,
			},
		},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := engine.Calculate(tt.input)
			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 50; i++ {
				in := tt.input
				in.Items = append([]models.CartLineItem(nil), tt.input.Items...)
				rng.Shuffle(len(in.Items), func(a, b int) { in.Items[a], in.Items[b] = in.Items[b], in.Items[a] })

				got := engine.Calculate(in)
				if got.RentalDays != want.RentalDays {
					t.Fatalf("run %d: rental days %d != %d", i, got.RentalDays, want.RentalDays)
				}
				assertDec(t, "grandTotal", got.GrandTotal, want.GrandTotal.String())
				assertDec(t, "discount", got.Discount, want.Discount.String())
				assertDec(t, "subtotalAfterDiscount", got.SubtotalAfterDiscount, want.SubtotalAfterDiscount.String())
				assertDec(t, "tax", got.Tax, want.Tax.String())
				assertDec(t, "finalTotal", got.FinalTotal, want.FinalTotal.String())
			}
		})
	}
}

func TestEmptyItems(t *testing.T) {
	in := baseInput()
	in.Items = nil
	b := newTestEngine(t).Calculate(in)
	assertDec(t, "finalTotal", b.FinalTotal, "0")
	if b.Lines == nil {
		t.Fatalf("lines should be an empty slice, not nil")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxRate = dec("1.2")
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected error for tax rate >= 1")
	}
	cfg = DefaultConfig()
	cfg.MinimumDays = 0
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected error for minimumDays 0")
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	if err := os.WriteFile(path, []byte(`{"taxRate": 0.065}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Currency != "USD" || cfg.ExcludedDays != 2 || cfg.MinimumDays != 1 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	assertDec(t, "taxRate", cfg.TaxRate, "0.065")
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	if err := os.WriteFile(path, []byte(`{"taxRate": `), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
