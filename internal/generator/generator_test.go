package generator

import "testing"

func TestDigitInRange(t *testing.T) {
	g := NewSeeded(1)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		d := g.Digit()
		if d < 0 || d > 9 {
			t.Fatalf("digit out of range: %d", d)
		}
		seen[d] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected every digit to appear, got %d", len(seen))
	}
}

func TestWeightedDigitFavorsWeak(t *testing.T) {
	g := NewSeeded(42)
	weak := map[int]struct{}{3: {}}
	counts := map[int]int{}
	const draws = 5000
	for i := 0; i < draws; i++ {
		counts[g.WeightedDigit(weak, 9)]++
	}
	// Digit 3 weighs 10 out of 19.
	if counts[3] < draws/3 {
		t.Fatalf("expected weak digit to dominate, got %d of %d", counts[3], draws)
	}
	for d := 0; d < 10; d++ {
		if d != 3 && counts[d] > counts[3] {
			t.Fatalf("digit %d drawn more than weak digit", d)
		}
	}
}

func TestWeightedDigitWithoutWeakIsUniform(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 20; i++ {
		if a.WeightedDigit(nil, 5) != b.Digit() {
			t.Fatalf("expected fallback to uniform draw")
		}
	}
}
