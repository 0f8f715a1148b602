// Package export writes enriched businesses to the report formats the
// sales side works with. Column headers are German and fixed; changing
// them breaks downstream mail-merge templates.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mymedia/leadgen-cli/internal/model"
)

// Headers is the fixed report column order.
var Headers = []string{
	"Firmenname",
	"Kategorie",
	"Adresse",
	"Stadt",
	"Telefon (Firma)",
	"Email (Firma)",
	"Website",
	"Google Rating",
	"Bewertungen",
	"Ansprechpartner 1 - Name",
	"Ansprechpartner 1 - Titel",
	"Ansprechpartner 1 - Email",
	"Ansprechpartner 1 - Telefon",
	"Ansprechpartner 2 - Name",
	"Ansprechpartner 2 - Titel",
	"Ansprechpartner 2 - Email",
	"Ansprechpartner 2 - Telefon",
}

// Rows converts businesses to report rows in input order.
func Rows(businesses []model.Business) [][]string {
	rows := make([][]string, len(businesses))
	for i, b := range businesses {
		rows[i] = row(b)
	}
	return rows
}

func row(b model.Business) []string {
	cells := []string{
		b.Name,
		b.Category,
		b.Address,
		b.City,
		formatPhone(b.Phone),
		strings.Join(b.CompanyEmails, ", "),
		b.Website,
		formatRating(b.GoogleRating),
		formatReviews(b.ReviewCount),
	}
	for i := 0; i < model.MaxContactPersons; i++ {
		if i < len(b.ContactPersons) {
			p := b.ContactPersons[i]
			cells = append(cells, p.Name, p.Title, p.Email, formatPhone(p.Phone))
		} else {
			cells = append(cells, "", "", "", "")
		}
	}
	return cells
}

// formatPhone strips the leading "+"; the CRM import re-adds the prefix
// and chokes on doubled plus signs.
func formatPhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}

func formatRating(rating *float64) string {
	if rating == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *rating)
}

func formatReviews(reviews *int) string {
	if reviews == nil {
		return ""
	}
	return fmt.Sprintf("%d", *reviews)
}

// Slug builds a filesystem- and sheet-name-safe label from a search
// query: diacritics folded, lowercased, non-alphanumerics collapsed to
// single dashes.
func Slug(query model.SearchQuery) string {
	folded := foldDiacritics(query.BusinessType + " " + query.City)

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SheetName derives an XLSX sheet title from the query, within Excel's
// 31-character limit.
func SheetName(query model.SearchQuery) string {
	name := Slug(query)
	if name == "" {
		name = "ergebnisse"
	}
	if len(name) > 31 {
		name = strings.TrimRight(name[:31], "-")
	}
	return name
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// NFD does not decompose ß.
	return strings.ReplaceAll(folded, "ß", "ss")
}
