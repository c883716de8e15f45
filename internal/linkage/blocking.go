package linkage

import (
	"strings"

	"golang.org/x/text/cases"
)

// surnamePrefixLen is the number of leading runes of the surname used as the
// secondary blocking key. The prefix tolerates suffix typos and
// transliteration variants at the cost of a wider candidate set.
const surnamePrefixLen = 5

// BlockingKeys narrow the catalog to rows plausibly sharing an author with a
// source record before any title scoring happens. They are derived per query
// and never persisted.
type BlockingKeys struct {
	Surname string
	Prefix  string
}

// NewBlockingKeys derives blocking keys from a free-text author string: the
// surname is the case-folded last whitespace-delimited token, the prefix its
// first five runes. The second return value is false when the author string
// has no tokens; such records skip blocked matching entirely and go straight
// to the fallback stage.
func NewBlockingKeys(author string) (BlockingKeys, bool) {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return BlockingKeys{}, false
	}
	surname := cases.Fold().String(fields[len(fields)-1])
	prefix := surname
	if runes := []rune(surname); len(runes) > surnamePrefixLen {
		prefix = string(runes[:surnamePrefixLen])
	}
	return BlockingKeys{Surname: surname, Prefix: prefix}, true
}
