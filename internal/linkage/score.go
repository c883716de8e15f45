package linkage

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Similarity ratios live in [0, 100]. They are computed on normalized
// titles; callers must pass both sides through NormalizeTitle first. Each
// scorer additionally scrubs punctuation to whitespace before comparing, so
// "King, the Return of" and "Return of the King" are the same token bag.
//
// TokenSortRatio is the stage-1 scorer: word order inside the title is
// irrelevant, so reordered or reformatted editions of the same work score
// 100. WeightedRatio is the stage-2 scorer: a composite taking the best of
// several sub-metrics, conservative enough to survive catalog-wide
// comparison without author evidence.

// TokenSortRatio scores two titles after sorting their tokens, making the
// comparison invariant to word order.
func TokenSortRatio(a, b string) int {
	return round(indelRatio(sortTokens(a), sortTokens(b)))
}

// WeightedRatio returns the best of several similarity heuristics: the plain
// ratio, token-sort and token-set ratios (scaled by 0.95), and, when the
// strings differ substantially in length, a partial-substring ratio scaled
// by how lopsided the lengths are.
func WeightedRatio(a, b string) int {
	a = scrub(a)
	b = scrub(b)
	lenA := len([]rune(a))
	lenB := len([]rune(b))
	if lenA == 0 || lenB == 0 {
		return round(indelRatio(a, b))
	}

	const tokenScale = 0.95
	best := indelRatio(a, b)
	if v := indelRatio(sortTokens(a), sortTokens(b)) * tokenScale; v > best {
		best = v
	}
	if v := tokenSetRatio(a, b) * tokenScale; v > best {
		best = v
	}

	lenRatio := float64(max(lenA, lenB)) / float64(min(lenA, lenB))
	if lenRatio >= 1.5 {
		partialScale := 0.9
		if lenRatio > 8 {
			partialScale = 0.6
		}
		if v := partialRatio(a, b) * partialScale; v > best {
			best = v
		}
		if v := partialRatio(sortTokens(a), sortTokens(b)) * tokenScale * partialScale; v > best {
			best = v
		}
	}
	return round(best)
}

// indelRatio is the normalized insert/delete similarity: 200*LCS/(|a|+|b|).
// Two empty strings are identical (100); one empty string shares nothing (0).
func indelRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	lcs := lcsLength(ra, rb)
	return 200 * float64(lcs) / float64(len(ra)+len(rb))
}

// partialRatio slides the shorter string across the longer one and returns
// the best window ratio, rewarding titles embedded in longer variants.
func partialRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return indelRatio(a, b)
	}
	if len(ra) == len(rb) {
		return indelRatio(string(ra), string(rb))
	}
	best := 0.0
	for start := 0; start+len(ra) <= len(rb); start++ {
		window := rb[start : start+len(ra)]
		lcs := lcsLength(ra, window)
		score := 200 * float64(lcs) / float64(len(ra)+len(window))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// tokenSetRatio compares the shared-token core of both strings against each
// side's full token set, so duplicated words and one-sided extras cost
// nothing when the overlap is complete.
func tokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return indelRatio(a, b)
	}

	var inter, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(inter, " ")
	combinedA := joinSections(core, strings.Join(onlyA, " "))
	combinedB := joinSections(core, strings.Join(onlyB, " "))

	best := indelRatio(core, combinedA)
	if v := indelRatio(core, combinedB); v > best {
		best = v
	}
	if v := indelRatio(combinedA, combinedB); v > best {
		best = v
	}
	return best
}

// scrub maps every non-letter, non-digit rune to a space and collapses the
// result to single-spaced tokens.
func scrub(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func tokenize(s string) []string {
	return strings.Fields(scrub(s))
}

func sortTokens(s string) string {
	tokens := tokenize(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	tokens := tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func joinSections(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// lcsLength computes the longest common subsequence length with a rolling
// single-row table. Titles are short, so the quadratic cost is irrelevant.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			saved := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prevDiag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prevDiag = saved
		}
	}
	return row[len(b)]
}

func round(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
