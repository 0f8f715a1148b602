package model

import "strings"

// ContactPerson is a named individual associated with a business.
// Created only by the contact extractor; Name is required for validity.
type ContactPerson struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Email       string `json:"email"`
	EmailSource string `json:"email_source"` // "website", "impressum", ...
	Phone       string `json:"phone"`
}

// MaxContactPersons caps how many contacts a business carries.
const MaxContactPersons = 2

// Business is a directory-search result to be enriched with contact data.
// All fields except ContactPersons are immutable after the directory
// search; ContactPersons is populated exactly once per enrichment pass.
// The JSON tags double as the cache wire format.
type Business struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Phone          string          `json:"phone"`
	Website        string          `json:"website"`
	CompanyEmails  []string        `json:"company_emails,omitempty"`
	GoogleRating   *float64        `json:"google_rating,omitempty"`
	ReviewCount    *int            `json:"review_count,omitempty"`
	ContactPersons []ContactPerson `json:"contact_persons,omitempty"`
}

// AddCompanyEmail appends an email if it is non-empty and not already present.
func (b *Business) AddCompanyEmail(email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	for _, existing := range b.CompanyEmails {
		if strings.EqualFold(existing, email) {
			return
		}
	}
	b.CompanyEmails = append(b.CompanyEmails, email)
}

// SetContacts installs the extracted contacts, truncated to the cap.
func (b *Business) SetContacts(contacts []ContactPerson) {
	if len(contacts) > MaxContactPersons {
		contacts = contacts[:MaxContactPersons]
	}
	b.ContactPersons = contacts
}

// SearchQuery holds the directory-search parameters. The four fields are
// also the search cache key tuple.
type SearchQuery struct {
	BusinessType string `json:"business_type"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Limit        int    `json:"limit"`
}

// MapsQuery renders the free-text query sent to the directory search,
// e.g. "Zahnarzt in Bozen".
func (q SearchQuery) MapsQuery() string {
	return q.BusinessType + " in " + q.City
}
