package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Signals holds contact data harvested directly from page markup before
// the HTML structure is flattened to text. Order is discovery order,
// deduplicated.
type Signals struct {
	Emails []string
	Phones []string
}

// Merge folds another page's signals into this one, keeping first-seen
// order across pages.
func (s *Signals) Merge(other Signals) {
	for _, e := range other.Emails {
		s.addEmail(e)
	}
	for _, p := range other.Phones {
		s.addPhone(p)
	}
}

func (s *Signals) addEmail(email string) {
	for _, existing := range s.Emails {
		if existing == email {
			return
		}
	}
	s.Emails = append(s.Emails, email)
}

func (s *Signals) addPhone(phone string) {
	for _, existing := range s.Phones {
		if existing == phone {
			return
		}
	}
	s.Phones = append(s.Phones, phone)
}

// DirectSignals scans anchor elements for mailto: and tel: targets.
// These are stronger evidence than anything the oracle infers from prose,
// so they are handed to extraction as hints. No secondary crawling.
func DirectSignals(rawHTML string) Signals {
	var out Signals

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return out
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case strings.HasPrefix(href, "mailto:"):
			email := strings.TrimPrefix(href, "mailto:")
			// Drop ?subject=... and friends.
			if idx := strings.Index(email, "?"); idx >= 0 {
				email = email[:idx]
			}
			if email = strings.TrimSpace(email); email != "" {
				out.addEmail(email)
			}
		case strings.HasPrefix(href, "tel:"):
			if phone := strings.TrimSpace(strings.TrimPrefix(href, "tel:")); phone != "" {
				out.addPhone(phone)
			}
		}
	})
	return out
}
