package engine

import "testing"

func TestCanonicalKey(t *testing.T) {
	a := StartingPosition()
	b := StartingPosition()
	if CanonicalKey(a) != CanonicalKey(b) {
		t.Error("equal boards must have equal keys")
	}
	b[7] = Point{Count: 1, Owner: SideB}
	b[8].Count--
	if CanonicalKey(a) == CanonicalKey(b) {
		t.Error("different boards must have different keys")
	}
	if got := CanonicalKey(a).String(); got != a.String() {
		t.Errorf("key = %s, want %s", got, a.String())
	}
}

func TestGroupByKey(t *testing.T) {
	ml := GenerateMoves(StartingPosition(), SideB, Dice{4, 3})
	groups := GroupByKey(ml.Sequences)

	t.Logf("%d sequences, %d distinct positions", len(ml.Sequences), len(groups))
	if len(groups) >= len(ml.Sequences) {
		t.Errorf("expected transpositions to collapse: %d groups for %d sequences", len(groups), len(ml.Sequences))
	}

	total := 0
	seen := make(map[string]bool)
	for i, g := range groups {
		total += 1 + len(g.Alternatives)
		if seen[g.Key.String()] {
			t.Errorf("group %d: duplicate key %s", i, g.Key)
		}
		seen[g.Key.String()] = true
		if g.Representative.Key() != g.Key {
			t.Errorf("group %d: representative has another key", i)
		}
		for _, alt := range g.Alternatives {
			if alt.Key() != g.Key {
				t.Errorf("group %d: alternative %v has another key", i, alt.Legs)
			}
		}
	}
	if total != len(ml.Sequences) {
		t.Errorf("groups hold %d sequences, want %d", total, len(ml.Sequences))
	}

	// First-seen order: the first sequence represents the first group
	if groups[0].Representative.legKey() != ml.Sequences[0].legKey() {
		t.Error("first group is not represented by the first sequence")
	}

	distinct := DistinctResults(ml.Sequences)
	if len(distinct) != len(groups) {
		t.Fatalf("DistinctResults = %d, want %d", len(distinct), len(groups))
	}
	for i := range distinct {
		if distinct[i].legKey() != groups[i].Representative.legKey() {
			t.Errorf("representative %d differs", i)
		}
	}
}
