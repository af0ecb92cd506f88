package parser

import (
	"regexp"
	"strings"
)

// MaxFeatures bounds how many list items a single extraction collects.
const MaxFeatures = 20

var bulletRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)

// ExtractFeatures collects the first contiguous run of bullet-list items
// (-, *, + or numbered) from markdown, wherever it appears. Items are
// trimmed but otherwise verbatim, order and case preserved. The run ends
// at the first blank line, heading, or prose line; limit caps the item
// count (MaxFeatures when <= 0). No list yields an empty slice.
func ExtractFeatures(markdown string, limit int) []string {
	if limit <= 0 {
		limit = MaxFeatures
	}

	features := []string{}
	inList := false
	for _, line := range strings.Split(markdown, "\n") {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			features = append(features, strings.TrimSpace(m[1]))
			if len(features) >= limit {
				break
			}
			inList = true
			continue
		}
		if inList {
			break
		}
	}
	return features
}
