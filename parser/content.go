package parser

import (
	"regexp"
	"strings"
)

var (
	topHeadingRe = regexp.MustCompile(`^#\s+(.+)$`)
	anyHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	imageLinkRe  = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)
)

// FirstHeading returns the first top-level markdown heading, falling
// back to the first heading of any level. Empty when none exists.
func FirstHeading(markdown string) string {
	fallback := ""
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if m := topHeadingRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		if fallback == "" {
			if m := anyHeadingRe.FindStringSubmatch(line); m != nil {
				fallback = strings.TrimSpace(m[1])
			}
		}
	}
	return fallback
}

// FirstParagraph returns the first non-empty prose line, skipping
// headings, list items, blockquotes, tables, images, and fenced code.
func FirstParagraph(markdown string) string {
	inCode := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			continue
		}
		if inCode || trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, ">"),
			strings.HasPrefix(trimmed, "|"),
			strings.HasPrefix(trimmed, "!["),
			bulletRe.MatchString(trimmed):
			continue
		}
		return trimmed
	}
	return ""
}

// ImageLinks collects markdown image URLs in document order, de-duplicated.
func ImageLinks(markdown string, limit int) []string {
	matches := imageLinkRe.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		link := m[1]
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
		if limit > 0 && len(links) >= limit {
			break
		}
	}
	return links
}

// categoryRules are checked in order; the first rule with any keyword
// present wins.
var categoryRules = []struct {
	name     string
	keywords []string
}{
	{"course", []string{"course", "curriculum", "lesson", "masterclass", "bootcamp"}},
	{"template", []string{"template", "theme", "boilerplate", "starter kit"}},
	{"design-asset", []string{"icon", "font", "mockup", "illustration", "ui kit", "texture"}},
	{"software", []string{"plugin", "extension", "saas", "software", "app"}},
	{"ebook", []string{"ebook", "e-book", "handbook", "guide"}},
}

// GuessCategory returns a coarse product category derived from keyword
// presence in the given text fragments, or empty when nothing matches.
func GuessCategory(parts ...string) string {
	text := strings.ToLower(strings.Join(parts, " "))
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.name
			}
		}
	}
	return ""
}
