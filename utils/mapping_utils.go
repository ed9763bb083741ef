package utils

import (
	"strings"

	"rental-quotes/models"
)

// DefaultSubcategory labels equipment without a subcategory in the catalog
const DefaultSubcategory = "General"

// MainCategoryLabel maps a main category to its storefront label
func MainCategoryLabel(m models.MainCategory) string {
	labels := map[models.MainCategory]string{
		models.MainCategoryProduction: "Production Equipment",
		models.MainCategoryHomeEcSet:  "Home Ec & Set Decoration",
	}
	if label, exists := labels[m]; exists {
		return label
	}
	// If not found, return capitalized version of input
	return CapitalizeWords(strings.ReplaceAll(string(m), "-", " "))
}

// StatusLabel maps a quote status to the label shown to staff and customers
func StatusLabel(s models.QuoteStatus) string {
	labels := map[models.QuoteStatus]string{
		models.QuoteStatusPending:    "Pending",
		models.QuoteStatusApproved:   "Approved",
		models.QuoteStatusInProgress: "In Progress",
		models.QuoteStatusCompleted:  "Completed",
		models.QuoteStatusRejected:   "Rejected",
	}
	if label, exists := labels[s]; exists {
		return label
	}
	return CapitalizeWords(strings.ReplaceAll(string(s), "_", " "))
}

// CapitalizeWords capitalizes the first letter of each word
func CapitalizeWords(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
