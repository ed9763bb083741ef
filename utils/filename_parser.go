package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyFileName reduces s to lowercase letters, digits and single hyphens
func SlugifyFileName(s string) string {
	slug := unsafeFileChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// QuotePDFFileName builds the download name of a quote document.
// Example: quote-41-northlight-films-sunset-spot.pdf
func QuotePDFFileName(quoteID int64, company, jobName string) string {
	parts := []string{fmt.Sprintf("quote-%d", quoteID)}
	for _, p := range []string{company, jobName} {
		if slug := SlugifyFileName(p); slug != "" {
			parts = append(parts, slug)
		}
	}
	name := strings.Join(parts, "-")
	if len(name) > 120 {
		name = strings.TrimRight(name[:120], "-")
	}
	return name + ".pdf"
}

// EquipmentImageFileName builds the object name of an optimized equipment image
func EquipmentImageFileName(equipmentID int64, equipmentName string) string {
	slug := SlugifyFileName(equipmentName)
	if slug == "" {
		return fmt.Sprintf("equipment-%d.jpg", equipmentID)
	}
	return fmt.Sprintf("equipment-%d-%s.jpg", equipmentID, slug)
}
