// Package engine provides the backgammon move analysis core: board model,
// legal move generation, position canonicalization, heuristic evaluation,
// Monte Carlo rollouts, hybrid ranking and move notation.
package engine

import (
	"fmt"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// Side identifies a player.
// Side A travels upward (enters on points 1-6, home is 19-24),
// side B travels downward (enters on points 24-19, home is 1-6).
type Side int8

const (
	None Side = iota
	SideA
	SideB
)

// Board slot indexes
const (
	BarA      = 0  // Side A's bar
	BarB      = 25 // Side B's bar
	Off       = 26 // Destination of a borne off checker
	NumSlots  = 26
	NumPoints = 24
	// MaxCheckers is the number of checkers per side
	MaxCheckers = 15
)

// String returns "A", "B" or "-".
func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return "-"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return None
}

// Bar returns the index of the side's bar.
func (s Side) Bar() int {
	if s == SideA {
		return BarA
	}
	return BarB
}

// PipsFrom returns the distance a checker of this side on slot p
// still has to travel to bear off. The bar is 25 pips away.
func (s Side) PipsFrom(p int) int {
	if s == SideA {
		return 25 - p
	}
	return p
}

// PointNumber returns the point number of slot p as seen by this side
// (1 is the last point before bearing off, 25 is the bar).
func (s Side) PointNumber(p int) int {
	return s.PipsFrom(p)
}

// InHome reports whether slot p is in this side's home quadrant.
func (s Side) InHome(p int) bool {
	if p < 1 || p > NumPoints {
		return false
	}
	return s.PipsFrom(p) <= 6
}

// ParseSide parses "a"/"A"/"b"/"B". An empty string returns None.
func ParseSide(s string) (Side, error) {
	switch s {
	case "a", "A":
		return SideA, nil
	case "b", "B":
		return SideB, nil
	case "":
		return None, nil
	}
	return None, fmt.Errorf("invalid side %q", s)
}

// Point is a board slot.
type Point struct {
	Count uint8
	Owner Side
}

// Board holds the checkers of both sides. It is a value type: every
// transformation returns a new Board and leaves the receiver untouched.
type Board [NumSlots]Point

// StartingPosition returns the standard backgammon starting position.
func StartingPosition() Board {
	b, err := BoardFromXPID(positionid.StartingBoard)
	if err != nil {
		panic(err)
	}
	return b
}

// BoardFromXPID parses an XPID board field or full record.
func BoardFromXPID(s string) (Board, error) {
	pos, err := positionid.Parse(s)
	if err != nil {
		return Board{}, err
	}
	return FromPositionID(pos.Board), nil
}

// FromPositionID converts the signed codec board into a Board.
func FromPositionID(pb positionid.Board) Board {
	var b Board
	for i, n := range pb {
		switch {
		case n > 0:
			b[i] = Point{Count: uint8(n), Owner: SideA}
		case n < 0:
			b[i] = Point{Count: uint8(-n), Owner: SideB}
		}
	}
	return b
}

// PositionID converts the board into the signed codec board.
func (b Board) PositionID() positionid.Board {
	var pb positionid.Board
	for i, pt := range b {
		switch pt.Owner {
		case SideA:
			pb[i] = int8(pt.Count)
		case SideB:
			pb[i] = -int8(pt.Count)
		}
	}
	return pb
}

// String returns the XPID board field.
func (b Board) String() string {
	return positionid.FormatBoard(b.PositionID())
}

// CountOf returns the number of checkers side has on slot p.
func (b Board) CountOf(p int, side Side) int {
	if p < 0 || p >= NumSlots || b[p].Owner != side {
		return 0
	}
	return int(b[p].Count)
}

// IsBlocked reports whether point p holds two or more checkers of
// side's opponent.
func (b Board) IsBlocked(p int, side Side) bool {
	if p < 1 || p > NumPoints {
		return false
	}
	return b[p].Owner == side.Opponent() && b[p].Count >= 2
}

// OnBar returns the number of side's checkers on its bar.
func (b Board) OnBar(side Side) int {
	return b.CountOf(side.Bar(), side)
}

// Checkers returns the number of side's checkers still on the board,
// the bar included.
func (b Board) Checkers(side Side) int {
	n := 0
	for _, pt := range b {
		if pt.Owner == side {
			n += int(pt.Count)
		}
	}
	return n
}

// BorneOff returns the number of side's checkers already borne off.
func (b Board) BorneOff(side Side) int {
	return MaxCheckers - b.Checkers(side)
}

// PipCount returns the total number of pips side needs to bear off.
func (b Board) PipCount(side Side) int {
	pips := 0
	for p, pt := range b {
		if pt.Owner == side {
			pips += int(pt.Count) * side.PipsFrom(p)
		}
	}
	return pips
}

// rearmost returns the pips-to-go of side's furthest checker, 0 if none.
func (b Board) rearmost(side Side) int {
	back := 0
	for p, pt := range b {
		if pt.Owner == side && pt.Count > 0 {
			if d := side.PipsFrom(p); d > back {
				back = d
			}
		}
	}
	return back
}

// CanBearOff reports whether side has no checker on the bar and none
// outside its home quadrant.
func (b Board) CanBearOff(side Side) bool {
	return b.rearmost(side) <= 6
}

// Destination returns where a checker of side on slot p lands with die,
// or Off when the move carries it past the last point.
func Destination(p, die int, side Side) int {
	var to int
	if side == SideA {
		to = p + die
	} else {
		to = p - die
	}
	if to < 1 || to > NumPoints {
		return Off
	}
	return to
}

// legalDestination returns the destination of a checker of side moved
// from p with die, and whether the move is legal on this board.
// It does not apply the bar-entry precedence rule.
func (b Board) legalDestination(p, die int, side Side) (int, bool) {
	if b.CountOf(p, side) == 0 {
		return 0, false
	}
	to := Destination(p, die, side)
	if to != Off {
		return to, !b.IsBlocked(to, side)
	}
	if !b.CanBearOff(side) {
		return Off, false
	}
	// Exact bear-off, or over-shoot from the rearmost checker
	pips := side.PipsFrom(p)
	return Off, pips == die || (die > pips && pips == b.rearmost(side))
}

// ApplyLeg plays one leg for side and returns the new board.
// The returned leg has Hit set when an opponent blot was sent to the bar.
func (b Board) ApplyLeg(side Side, leg Leg) (Board, Leg, error) {
	from, to, die := int(leg.From), int(leg.To), int(leg.Die)
	if die < 1 || die > 6 {
		return b, leg, &IllegalMoveError{Side: side, Leg: leg, Reason: "die out of range"}
	}
	if from < 0 || from >= NumSlots {
		return b, leg, &IllegalMoveError{Side: side, Leg: leg, Reason: "origin out of range"}
	}
	if b.CountOf(from, side) == 0 {
		return b, leg, &IllegalMoveError{Side: side, Leg: leg, Reason: "no checker on origin"}
	}
	want, ok := b.legalDestination(from, die, side)
	if want != to {
		return b, leg, &IllegalMoveError{Side: side, Leg: leg, Reason: fmt.Sprintf("die %d from %d reaches %d", die, from, want)}
	}
	if !ok {
		reason := "destination blocked"
		if to == Off {
			reason = "cannot bear off"
		}
		return b, leg, &IllegalMoveError{Side: side, Leg: leg, Reason: reason}
	}

	next := b
	next[from].Count--
	if next[from].Count == 0 {
		next[from].Owner = None
	}

	leg.Hit = false
	if to == Off {
		return next, leg, nil
	}

	opp := side.Opponent()
	if next[to].Owner == opp {
		// Blot hit: exactly one checker, otherwise the point was blocked
		next[to] = Point{}
		bar := opp.Bar()
		next[bar].Count++
		next[bar].Owner = opp
		leg.Hit = true
	}
	next[to].Count++
	next[to].Owner = side

	return next, leg, nil
}

// Winner returns the side that has borne off all its checkers, or None.
func (b Board) Winner() Side {
	if b.Checkers(SideA) == 0 {
		return SideA
	}
	if b.Checkers(SideB) == 0 {
		return SideB
	}
	return None
}

// WinKind returns 1 for a single game, 2 for a gammon and 3 for a
// backgammon won by winner. It returns 0 if winner has not won.
func (b Board) WinKind(winner Side) int {
	if winner == None || b.Checkers(winner) != 0 {
		return 0
	}
	loser := winner.Opponent()
	if b.BorneOff(loser) > 0 {
		return 1
	}
	if b.OnBar(loser) > 0 {
		return 3
	}
	// Loser checkers left in the winner's home board
	for p := 1; p <= NumPoints; p++ {
		if winner.InHome(p) && b.CountOf(p, loser) > 0 {
			return 3
		}
	}
	return 2
}

// Validate checks the board invariants.
func (b Board) Validate() error {
	for p, pt := range b {
		if pt.Count == 0 && pt.Owner != None {
			return fmt.Errorf("slot %d: empty point owned by %s", p, pt.Owner)
		}
		if pt.Count > 0 && pt.Owner == None {
			return fmt.Errorf("slot %d: %d checkers without owner", p, pt.Count)
		}
	}
	if b[BarA].Owner == SideB || b[BarB].Owner == SideA {
		return fmt.Errorf("checkers on the opponent's bar")
	}
	for _, side := range []Side{SideA, SideB} {
		if n := b.Checkers(side); n > MaxCheckers {
			return fmt.Errorf("side %s has %d checkers", side, n)
		}
	}
	return nil
}
