package linkage

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeTitle canonicalizes a raw title for comparison: everything from
// the first ':' or '(' onward is dropped (subtitles and parenthetical
// edition notes), the remainder is case-folded and trimmed. Empty input
// yields the empty string. Scores are only meaningful when both sides of a
// comparison pass through this same canonicalization.
func NormalizeTitle(title string) string {
	if i := strings.IndexAny(title, ":("); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(cases.Fold().String(title))
}
