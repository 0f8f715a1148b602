package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/model"
	"github.com/mymedia/leadgen-cli/internal/scrape"
)

// defaultMaxPromptChars caps the combined page text sent to the oracle
// in one extraction request.
const defaultMaxPromptChars = 15000

const extractionSystemPrompt = `You extract contact persons from the text of a business website.

Rules:
- Return at most 2 contact persons.
- Only real, named people (owner, doctor, partner, manager, staff). Never invent names and never return the business itself as a person.
- Prefer a person's own email address over generic ones like info@, office@, kontakt@ or praxis@. Use a generic address only when it is clearly the way to reach that person.
- Leave fields you cannot find as empty strings.

Respond with strict JSON, no commentary:
{"contacts": [{"name": "", "title": "", "email": "", "phone": ""}]}`

// emailRe validates a plain local@domain.tld address.
var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Page is one fetched and cleaned website page ready for extraction.
type Page struct {
	URL   string
	Label string
	Text  string
}

// combinePages builds the user prompt: the business name, one block per
// page, and hint lines for emails and phones harvested from mailto:/tel:
// anchors. Page text past the budget is cut, later pages are dropped.
func combinePages(businessName string, pages []Page, signals scrape.Signals, budget int) string {
	if budget <= 0 {
		budget = defaultMaxPromptChars
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n\n", businessName)

	remaining := budget
	for _, p := range pages {
		if remaining <= 0 {
			break
		}
		text := scrape.Truncate(p.Text, remaining)
		fmt.Fprintf(&b, "--- Page: %s ---\n%s\n\n", p.Label, text)
		remaining -= len(text)
	}

	if len(signals.Emails) > 0 {
		fmt.Fprintf(&b, "Email addresses found in page links: %s\n", strings.Join(signals.Emails, ", "))
	}
	if len(signals.Phones) > 0 {
		fmt.Fprintf(&b, "Phone numbers found in page links: %s\n", strings.Join(signals.Phones, ", "))
	}
	return b.String()
}

type extractionReply struct {
	Contacts []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contacts"`
}

// extractContacts asks the oracle for contact persons. Any failure yields
// an empty slice; partial results are kept. An invalid email is blanked
// rather than dropping the person.
func extractContacts(ctx context.Context, oracle Oracle, businessName string, pages []Page, signals scrape.Signals, budget int) []model.ContactPerson {
	if len(pages) == 0 {
		return nil
	}

	reply, err := oracle.Complete(ctx, extractionSystemPrompt, combinePages(businessName, pages, signals, budget))
	if err != nil {
		zap.L().Warn("extract: oracle failed",
			zap.String("business", businessName),
			zap.Error(err),
		)
		return nil
	}

	var parsed extractionReply
	if err := json.Unmarshal([]byte(cleanJSON(reply, '{', '}')), &parsed); err != nil {
		zap.L().Warn("extract: unparseable oracle reply",
			zap.String("business", businessName),
			zap.Error(err),
		)
		return nil
	}

	var contacts []model.ContactPerson
	for _, c := range parsed.Contacts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		person := model.ContactPerson{
			Name:  name,
			Title: strings.TrimSpace(c.Title),
			Phone: strings.TrimSpace(c.Phone),
		}
		email := strings.TrimSpace(c.Email)
		if email != "" && emailRe.MatchString(email) {
			person.Email = email
			person.EmailSource = "website"
		}
		contacts = append(contacts, person)
		if len(contacts) == model.MaxContactPersons {
			break
		}
	}
	return contacts
}
