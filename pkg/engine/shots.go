package engine

// Shot counting: for a blot of one side, how many of the 36 rolls let the
// other side hit it on its next turn. Direct and combination shots are
// counted, intermediate landing points must be open, and checkers on the
// shooter's bar must enter before anything else moves. A hit with one die
// of a non-double only counts when it belongs to a legal play of the whole
// roll. Doubles are not checked against the maximum-dice rule.

// HitProbability returns the probability that shooter hits the checker on
// slot target with its next roll.
func HitProbability(b Board, target int, shooter Side) float64 {
	if target < 1 || target > NumPoints {
		return 0
	}
	sources := shooterSources(b, target, shooter)
	if len(sources) == 0 && b.OnBar(shooter) == 0 {
		return 0
	}

	rolls, weights := AllRolls()
	shots := 0
	for i, r := range rolls {
		if canHit(b, target, shooter, r, sources) {
			shots += weights[i]
		}
	}
	return float64(shots) / 36
}

// BlotExposure sums, over side's blots on the board, the probability that
// the opponent hits them.
func BlotExposure(b Board, side Side) float64 {
	exposure := 0.0
	shooter := side.Opponent()
	for p := 1; p <= NumPoints; p++ {
		if b.CountOf(p, side) == 1 {
			exposure += HitProbability(b, p, shooter)
		}
	}
	return exposure
}

// shooterSources returns the distances from each of shooter's board
// checkers that are behind target, one entry per occupied point.
func shooterSources(b Board, target int, shooter Side) []int {
	tp := shooter.PipsFrom(target)
	var dists []int
	for p := 1; p <= NumPoints; p++ {
		if b.CountOf(p, shooter) == 0 {
			continue
		}
		if d := shooter.PipsFrom(p) - tp; d > 0 {
			dists = append(dists, d)
		}
	}
	return dists
}

// canHit reports whether shooter can land on target with roll r.
func canHit(b Board, target int, shooter Side, r Dice, sources []int) bool {
	tp := shooter.PipsFrom(target)
	open := func(pips int) bool {
		return !b.IsBlocked(slotAt(shooter, pips), shooter)
	}
	onBar := b.OnBar(shooter)

	if r.IsDouble() {
		die := r[0]
		free := 4
		dists := sources
		if onBar > 0 {
			entry := 25 - die
			if !open(entry) {
				return false
			}
			if entry == tp {
				return true
			}
			free -= onBar
			if free <= 0 {
				return false
			}
			dists = append(append([]int(nil), sources...), 25-die-tp)
		}
		for _, d := range dists {
			if d <= 0 || d%die != 0 || d/die > free {
				continue
			}
			clear := true
			for j := 1; j < d/die; j++ {
				if !open(tp + d - j*die) {
					clear = false
					break
				}
			}
			if clear {
				return true
			}
		}
		return false
	}

	d1, d2 := r[0], r[1]
	switch {
	case onBar >= 2:
		// Both dice are used to enter
		for _, o := range [2][2]int{{d1, d2}, {d2, d1}} {
			if 25-o[0] == tp && singleHitLegal(b, shooter, shooter.Bar(), target, o[0], o[1]) {
				return true
			}
		}
		return false
	case onBar == 1:
		for _, o := range [2][2]int{{d1, d2}, {d2, d1}} {
			entry := 25 - o[0]
			if !open(entry) {
				continue
			}
			if entry == tp && singleHitLegal(b, shooter, shooter.Bar(), target, o[0], o[1]) {
				return true
			}
			if entry-o[1] == tp {
				return true
			}
			for _, d := range sources {
				if d == o[1] {
					return true
				}
			}
		}
		return false
	}

	for _, d := range sources {
		from := slotAt(shooter, tp+d)
		if d == d1 && singleHitLegal(b, shooter, from, target, d1, d2) {
			return true
		}
		if d == d2 && singleHitLegal(b, shooter, from, target, d2, d1) {
			return true
		}
		if d == d1+d2 && (open(tp+d-d1) || open(tp+d-d2)) {
			return true
		}
	}
	return false
}

// singleHitLegal reports whether hitting target from slot from with die x
// is part of a legal play of the non-double x, y. Either y can still be
// played after the hit, or no play uses both dice and the larger-die rule
// does not force y instead.
func singleHitLegal(b Board, shooter Side, from, target, x, y int) bool {
	after, _, err := b.ApplyLeg(shooter, Leg{From: int8(from), To: int8(target), Die: int8(x)})
	if err != nil {
		return false
	}
	if canPlay(after, shooter, y) {
		return true
	}
	if x < y && canPlay(b, shooter, y) {
		return false
	}
	return !playsBoth(b, shooter, x, y)
}

// canPlay reports whether side has a legal leg for die.
func canPlay(b Board, side Side, die int) bool {
	for _, p := range origins(b, side) {
		if _, ok := b.legalDestination(p, die, side); ok {
			return true
		}
	}
	return false
}

// playsBoth reports whether side can play both dice of the non-double x, y.
func playsBoth(b Board, side Side, x, y int) bool {
	for _, o := range [2][2]int{{x, y}, {y, x}} {
		for _, p := range origins(b, side) {
			to, ok := b.legalDestination(p, o[0], side)
			if !ok {
				continue
			}
			next, _, err := b.ApplyLeg(side, Leg{From: int8(p), To: int8(to), Die: int8(o[0])})
			if err == nil && canPlay(next, side, o[1]) {
				return true
			}
		}
	}
	return false
}
