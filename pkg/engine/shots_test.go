package engine

import (
	"math"
	"testing"
)

func TestHitProbabilityDistances(t *testing.T) {
	// Standard shot counts for a single shooter with no blocking points
	shots := map[int]int{
		1: 11, 2: 12, 3: 14, 4: 15, 5: 15, 6: 17,
		7: 6, 8: 6, 9: 5, 10: 3, 11: 2, 12: 3,
		13: 0, 14: 0, 15: 1, 16: 1, 18: 1, 20: 1,
	}
	for dist, want := range shots {
		var b Board
		b[24] = Point{Count: 1, Owner: SideB}
		b[24-dist] = Point{Count: 1, Owner: SideA}

		got := HitProbability(b, 24, SideA)
		if math.Abs(got-float64(want)/36) > 1e-12 {
			t.Errorf("distance %d: %.0f/36 shots, want %d/36", dist, got*36, want)
		}
	}
}

func TestHitProbabilityBlocked(t *testing.T) {
	var b Board
	b[12] = Point{Count: 1, Owner: SideB}
	b[4] = Point{Count: 1, Owner: SideA}
	// B's point 4 pips in front of the shooter stops 4-4 and 2-2
	b[8] = Point{Count: 2, Owner: SideB}

	got := HitProbability(b, 12, SideA) * 36
	if math.Abs(got-4) > 1e-9 {
		t.Errorf("got %.0f shots, want 4 (6-2, 5-3)", got)
	}
}

func TestHitProbabilityFromBar(t *testing.T) {
	var b Board
	b[BarA] = Point{Count: 2, Owner: SideA}
	b[3] = Point{Count: 1, Owner: SideB}

	// Every 3 enters onto the blot, 1-1 enters and continues, 3-3 enters on it
	got := HitProbability(b, 3, SideA) * 36
	if math.Abs(got-12) > 1e-9 {
		t.Errorf("got %.0f shots, want 12", got)
	}

	// With two on the bar only doubles free a board checker
	b[1] = Point{Count: 1, Owner: SideA}
	b[3] = Point{}
	b[7] = Point{Count: 1, Owner: SideB}
	got = HitProbability(b, 7, SideA) * 36
	// Non-doubles are used up entering. 6-6 and 3-3 leave two dice for
	// the checker on 1.
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("got %.0f shots, want 2", got)
	}
}

func TestBlotExposure(t *testing.T) {
	if e := BlotExposure(StartingPosition(), SideB); e != 0 {
		t.Errorf("starting position has no blots, exposure %v", e)
	}

	b := StartingPosition()
	b[8].Count--
	b[7] = Point{Count: 1, Owner: SideB}
	// A's back checkers on 1 are 6 pips away from the blot on 7
	e := BlotExposure(b, SideB)
	t.Logf("exposure of 8/7: %.3f", e)
	if e <= 0 || e > 1 {
		t.Errorf("exposure = %v, want within (0, 1]", e)
	}
}

// generatedShots counts the rolls for which some legal play of shooter
// hits the checker on target.
func generatedShots(b Board, target int, shooter Side) int {
	rolls, weights := AllRolls()
	shots := 0
	for i, r := range rolls {
		ml := GenerateMoves(b, shooter, r)
	search:
		for _, seq := range ml.Sequences {
			for _, leg := range seq.Legs {
				if int(leg.To) == target && leg.Hit {
					shots += weights[i]
					break search
				}
			}
		}
	}
	return shots
}

func TestHitProbabilityLargerDieRule(t *testing.T) {
	// B's checker on 14 hits the blot on 9 with a 5, but with 6-5 it
	// cannot play the 6 afterwards and must play 14/8 instead
	b := mustBoard(t, "-Eaba--a-a-aa-Aa--a--abb--")

	got := HitProbability(b, 9, SideB) * 36
	if math.Abs(got-13) > 1e-9 {
		t.Errorf("got %.0f shots, want 13", got)
	}
	if gen := generatedShots(b, 9, SideB); math.Abs(got-float64(gen)) > 1e-9 {
		t.Errorf("shot count %.0f, legal plays hit with %d/36", got, gen)
	}
}

func TestHitProbabilityMatchesGenerator(t *testing.T) {
	split := StartingPosition()
	split[8].Count--
	split[7] = Point{Count: 1, Owner: SideB}

	tests := []struct {
		name    string
		board   Board
		target  int
		shooter Side
	}{
		{"split from the 8 point", split, 7, SideA},
		{"larger die forced", mustBoard(t, "-Eaba--a-a-aa-Aa--a--abb--"), 9, SideB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HitProbability(tt.board, tt.target, tt.shooter) * 36
			want := generatedShots(tt.board, tt.target, tt.shooter)
			t.Logf("%s: %.0f/36 shots", tt.name, got)
			if math.Abs(got-float64(want)) > 1e-9 {
				t.Errorf("got %.0f shots, legal plays give %d", got, want)
			}
		})
	}
}
