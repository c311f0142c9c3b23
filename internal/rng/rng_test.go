package rng

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 256; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d diverged: %d != %d", i, x, y)
		}
	}
	if New(42).Uint64() == New(43).Uint64() {
		t.Fatalf("different seeds produced the same first draw")
	}
}

func TestForkDependsOnlyOnForkPoint(t *testing.T) {
	a := New(7)
	b := New(7)
	a.IntRange(0, 10)
	b.IntRange(0, 10)

	childA := a.Fork()
	childB := b.Fork()

	// Draws on the parent after the fork must not affect the child.
	for i := 0; i < 10; i++ {
		a.Uint64()
	}
	for i := 0; i < 32; i++ {
		if x, y := childA.Uint64(), childB.Uint64(); x != y {
			t.Fatalf("child draw %d diverged", i)
		}
	}
}

func TestForkConsumesOneDraw(t *testing.T) {
	a := New(99)
	b := New(99)
	a.Fork()
	b.Uint64()
	if a.Uint64() != b.Uint64() {
		t.Fatalf("Fork consumed a different number of draws than one Uint64")
	}
}

func TestRangesStayInBounds(t *testing.T) {
	g := New(1)
	for i := 0; i < 2000; i++ {
		if v := g.IntRange(-3, 3); v < -3 || v > 3 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
		if v := g.Float64Range(0.5, 0.75); v < 0.5 || v >= 0.75 {
			t.Fatalf("Float64Range out of bounds: %f", v)
		}
		if s := g.Seed8(); s < 1 || s >= 8192 {
			t.Fatalf("Seed8 out of bounds: %d", s)
		}
		if s := g.Sign(); s != 1 && s != -1 {
			t.Fatalf("Sign = %d", s)
		}
		if d := g.D20(); d < 1 || d > 20 {
			t.Fatalf("D20 = %d", d)
		}
	}
}

func TestSelectNNeverRepeats(t *testing.T) {
	g := New(5)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	for round := 0; round < 200; round++ {
		picked := SelectN(g, 6, items)
		if len(picked) != 6 {
			t.Fatalf("picked %d items, want 6", len(picked))
		}
		seen := map[int]bool{}
		for _, v := range picked {
			if seen[v] {
				t.Fatalf("round %d picked %d twice: %v", round, v, picked)
			}
			seen[v] = true
		}
	}
	if got := SelectN(g, 20, items); len(got) != len(items) {
		t.Fatalf("oversized request returned %d items", len(got))
	}
}

func TestSelectWeightedHonoursZeroWeights(t *testing.T) {
	g := New(11)
	items := []Weighted[string]{W(0, "never"), W(3, "often"), W(1, "sometimes")}
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[SelectWeighted(g, items)]++
	}
	if counts["never"] != 0 {
		t.Fatalf("zero-weight entry selected %d times", counts["never"])
	}
	if counts["often"] <= counts["sometimes"] {
		t.Fatalf("weights ignored: %v", counts)
	}
}

func TestSelectFnDoesNotShiftParent(t *testing.T) {
	a := New(3)
	b := New(3)
	pick := SelectFn(a, []string{"x", "y", "z"})
	b.Fork()
	for i := 0; i < 50; i++ {
		pick()
	}
	if a.Uint64() != b.Uint64() {
		t.Fatalf("picker draws leaked into the parent stream")
	}
}

func TestNoiseNormalisedAndDeterministic(t *testing.T) {
	n1 := New(8).OpenSimplex().Scale(0.25).Build()
	n2 := New(8).OpenSimplex().Scale(0.25).Build()
	for i := 0; i < 100; i++ {
		u := float64(i) * 0.37
		v := float64(i) * -0.11
		a := n1.Gen2D(u, v)
		if a < 0 || a > 1 {
			t.Fatalf("Gen2D out of [0,1]: %f", a)
		}
		if b := n2.Gen2D(u, v); a != b {
			t.Fatalf("noise fields with the same seed differ at %d", i)
		}
		if w := n1.Gen3D(u, v, u+v); w < 0 || w > 1 {
			t.Fatalf("Gen3D out of [0,1]: %f", w)
		}
	}
}
