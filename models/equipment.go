package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MainCategory is the top-level grouping of the rental catalog
type MainCategory string

const (
	MainCategoryProduction MainCategory = "production"
	MainCategoryHomeEcSet  MainCategory = "home-ec-set"
)

// MainCategories lists the main categories in catalog display order
var MainCategories = []MainCategory{MainCategoryProduction, MainCategoryHomeEcSet}

// Valid reports whether m is one of the known main categories
func (m MainCategory) Valid() bool {
	return m == MainCategoryProduction || m == MainCategoryHomeEcSet
}

// ParseMainCategory normalizes user input ("Production", " home-ec-set ") to a MainCategory
func ParseMainCategory(s string) (MainCategory, error) {
	m := MainCategory(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid main category %q: must be production or home-ec-set", s)
	}
	return m, nil
}

// Equipment represents a rentable catalog entry
// Example:
//
//	{
//	  "id": 12,
//	  "name": "Folding Chairs",
//	  "mainCategory": "home-ec-set",
//	  "category": "Furniture",
//	  "subcategory": "Seating",
//	  "specifications": ["Black resin", "Stackable"],
//	  "pricePerUnit": "1.5",
//	  "unitsPerItem": 50
//	}
type Equipment struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	MainCategory   MainCategory        `json:"mainCategory"`
	Category       string              `json:"category"`
	Subcategory    string              `json:"subcategory,omitempty"`
	Description    string              `json:"description,omitempty"`
	ImageURL       string              `json:"imageUrl,omitempty"`
	Specifications []string            `json:"specifications"`
	PricePerUnit   decimal.NullDecimal `json:"pricePerUnit"` // null means not yet priced
	UnitsPerItem   int                 `json:"unitsPerItem"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// EffectiveUnitsPerItem returns UnitsPerItem, defaulting to 1 when unset
func (e Equipment) EffectiveUnitsPerItem() int {
	if e.UnitsPerItem < 1 {
		return 1
	}
	return e.UnitsPerItem
}

// EffectivePricePerUnit returns PricePerUnit, or zero when the equipment is not priced
func (e Equipment) EffectivePricePerUnit() decimal.Decimal {
	if !e.PricePerUnit.Valid {
		return decimal.Zero
	}
	return e.PricePerUnit.Decimal
}

// EquipmentInput is the request body for creating or updating equipment
type EquipmentInput struct {
	Name           string              `json:"name"`
	MainCategory   MainCategory        `json:"mainCategory"`
	Category       string              `json:"category"`
	Subcategory    string              `json:"subcategory,omitempty"`
	Description    string              `json:"description,omitempty"`
	ImageURL       string              `json:"imageUrl,omitempty"`
	Specifications []string            `json:"specifications"`
	PricePerUnit   decimal.NullDecimal `json:"pricePerUnit"`
	UnitsPerItem   int                 `json:"unitsPerItem"`
}

// Normalize trims text fields, drops blank specifications and defaults UnitsPerItem to 1
func (in *EquipmentInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.MainCategory = MainCategory(strings.ToLower(strings.TrimSpace(string(in.MainCategory))))
	in.Category = strings.TrimSpace(in.Category)
	in.Subcategory = strings.TrimSpace(in.Subcategory)
	in.Description = strings.TrimSpace(in.Description)
	specs := make([]string, 0, len(in.Specifications))
	for _, s := range in.Specifications {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	in.Specifications = specs
	if in.UnitsPerItem == 0 {
		in.UnitsPerItem = 1
	}
}

// Validate checks the input after Normalize
func (in EquipmentInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !in.MainCategory.Valid() {
		return fmt.Errorf("mainCategory must be production or home-ec-set")
	}
	if in.Category == "" {
		return fmt.Errorf("category is required")
	}
	if in.PricePerUnit.Valid && in.PricePerUnit.Decimal.IsNegative() {
		return fmt.Errorf("pricePerUnit cannot be negative")
	}
	if in.UnitsPerItem < 1 {
		return fmt.Errorf("unitsPerItem must be at least 1")
	}
	return nil
}

// CatalogSubcategory groups equipment sharing a subcategory
type CatalogSubcategory struct {
	Name      string      `json:"name"`
	Equipment []Equipment `json:"equipment"`
}

// CatalogCategory groups subcategories under a category
type CatalogCategory struct {
	Name          string               `json:"name"`
	Subcategories []CatalogSubcategory `json:"subcategories"`
}

// CatalogSection is one main category of the browsing catalog
type CatalogSection struct {
	MainCategory MainCategory      `json:"mainCategory"`
	Label        string            `json:"label"`
	ItemCount    int               `json:"itemCount"`
	Categories   []CatalogCategory `json:"categories"`
}

// CatalogResponse represents the grouped catalog returned to browsing pages
type CatalogResponse struct {
	Sections []CatalogSection `json:"sections"`
}

// EquipmentListResponse represents the response for equipment listings
type EquipmentListResponse struct {
	Equipment []Equipment `json:"equipment"`
}
