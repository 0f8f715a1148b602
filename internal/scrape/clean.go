package scrape

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseRules strip recognized boilerplate from page text before it is
// handed to the extraction oracle. Order matters: each rule runs once,
// left to right, on the cumulative result of the prior rules.
var noiseRules = []*regexp.Regexp{
	// Cookie consent blocks.
	regexp.MustCompile(`(?is)(?:Cookies? verwalten|Cookie[- ]?(?:Einstellungen|Settings|Richtlinie|Policy)).*?` +
		`(?:Einstellungen speichern|Akzeptieren|Accept|Ablehnen|Deny|Hide Toolbar)`),
	// Accessibility toolbar.
	regexp.MustCompile(`(?is)Accessibility Adjustments.*?Reset Settings`),
	// Language selector blocks (long lists of flags/languages).
	regexp.MustCompile(`(?is)(?:English|Deutsch|Select your (?:language|accessibility)).*?` +
		`(?:Srpski|Українська|Hide Toolbar)`),
	// Repeated navigation menus.
	regexp.MustCompile(`(?i)(?:Gehe zu \.\.\.|Toggle Navigation)\n(?:.*?\n){2,20}`),
	// Image-only lines with no useful text.
	regexp.MustCompile(`(?im)^!\[(?:flag|Symbol|toggle).*?\]\(.*?\)$`),
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// ToText converts HTML to plain text. Script, style, and other
// non-rendered elements are dropped; each text node becomes its own line
// so the block structure of the page survives.
func ToText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	for _, root := range doc.Nodes {
		collectText(root, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*lines = append(*lines, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}

// Clean removes recognized boilerplate blocks and collapses runs of three
// or more blank lines into a single blank line.
func Clean(text string) string {
	for _, rule := range noiseRules {
		text = rule.ReplaceAllString(text, "")
	}
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Truncate bounds page text to at most max bytes to cap downstream
// oracle cost, backing off to a rune boundary so a multibyte character
// is never cut in half. Non-positive max means unlimited.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}
