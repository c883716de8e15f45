package linkage

import "testing"

func TestTokenSortRatioOrderInsensitive(t *testing.T) {
	a := TokenSortRatio("return of the king", "king, the return of")
	if a != 100 {
		t.Fatalf("reordered title should score 100, got %d", a)
	}
	b := TokenSortRatio("return of the king", "return of the king")
	if a != b {
		t.Fatalf("reordering changed the score: %d vs %d", a, b)
	}
}

func TestTokenSortRatioIdentical(t *testing.T) {
	if got := TokenSortRatio("the road", "the road"); got != 100 {
		t.Fatalf("identical titles should score 100, got %d", got)
	}
}

func TestTokenSortRatioDissimilar(t *testing.T) {
	if got := TokenSortRatio("the road", "wuthering heights"); got >= 85 {
		t.Fatalf("unrelated titles scored %d, want below stage-1 threshold", got)
	}
}

func TestTokenSortRatioEmpty(t *testing.T) {
	if got := TokenSortRatio("", ""); got != 100 {
		t.Fatalf("two empty strings should score 100, got %d", got)
	}
	if got := TokenSortRatio("the road", ""); got != 0 {
		t.Fatalf("one empty string should score 0, got %d", got)
	}
}

func TestWeightedRatioExact(t *testing.T) {
	if got := WeightedRatio("the hobbit", "the hobbit"); got != 100 {
		t.Fatalf("identical titles should score 100, got %d", got)
	}
}

func TestWeightedRatioSubstring(t *testing.T) {
	// Complete token overlap on one side: the token-set heuristic wins at 95.
	got := WeightedRatio("the road", "the road less traveled")
	if got != 95 {
		t.Fatalf("substring composite score = %d, want 95", got)
	}
}

func TestWeightedRatioConservative(t *testing.T) {
	if got := WeightedRatio("untitled work", "the road"); got >= 94 {
		t.Fatalf("unrelated titles scored %d, want below stage-2 threshold", got)
	}
}

func TestScorersBounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"the silmarillion", "il silmarillion"},
		{"x", "a very much longer title entirely"},
		{"", "nonempty"},
	}
	for _, p := range pairs {
		for _, score := range []int{TokenSortRatio(p[0], p[1]), WeightedRatio(p[0], p[1])} {
			if score < 0 || score > 100 {
				t.Fatalf("score out of range for %q vs %q: %d", p[0], p[1], score)
			}
		}
	}
}

func TestScorersDeterministic(t *testing.T) {
	a, b := "a storm of swords", "a storm of swords: blood and gold"
	first := WeightedRatio(a, b)
	for i := 0; i < 10; i++ {
		if got := WeightedRatio(a, b); got != first {
			t.Fatalf("WeightedRatio not deterministic: %d then %d", first, got)
		}
	}
}
