package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// Leg is one checker movement consuming one die.
// From and To are board slots; To is Off for a borne off checker.
type Leg struct {
	From int8
	To   int8
	Die  int8
	Hit  bool
}

// HitEvents accumulates the hits made while a sequence is played.
// It is the only sequence dependent input of the evaluator.
type HitEvents struct {
	Count int // Opponent checkers sent to the bar
}

// Add records the hit of leg, if any.
func (h HitEvents) Add(leg Leg) HitEvents {
	if leg.Hit {
		h.Count++
	}
	return h
}

// MoveSequence is an ordered list of legs played with one roll,
// together with the board it produces.
type MoveSequence struct {
	Side   Side
	Legs   []Leg
	Hits   HitEvents
	Result Board
}

// Pips returns the number of pips played.
func (s MoveSequence) Pips() int {
	n := 0
	for _, l := range s.Legs {
		n += int(l.Die)
	}
	return n
}

// Key returns the canonical key of the resulting position.
func (s MoveSequence) Key() positionid.PositionKey {
	return CanonicalKey(s.Result)
}

// legKey identifies the exact legs of a sequence, in order.
func (s MoveSequence) legKey() string {
	buf := make([]byte, 0, 3*len(s.Legs))
	for _, l := range s.Legs {
		buf = append(buf, byte(l.From), byte(l.To), byte(l.Die))
	}
	return string(buf)
}

// MoveList contains all legal move sequences for a roll.
type MoveList struct {
	Side      Side
	Dice      Dice
	Origin    Board
	Sequences []MoveSequence
	MaxDice   int // Number of dice every sequence plays
}

// NoLegalMoves reports whether the side has to pass.
func (ml *MoveList) NoLegalMoves() bool {
	return len(ml.Sequences) == 0
}

// genState is one state of the move generation state machine: a board,
// the dice still to play and the legs played so far.
type genState struct {
	board     Board
	remaining []int
	legs      []Leg
	hits      HitEvents
	maxPips   int // doubles only: pips-to-go limit for the next origin
}

// GenerateMoves enumerates every maximal legal way for side to play dice.
//
// Every remaining die is tried at every step, so both orders of a
// non-double roll are explored. A side with checkers on the bar must
// enter them before any other leg. When not all dice can be played, only
// the sequences playing the most dice are kept, and if only one die of a
// non-double can be played the larger one must be used when possible.
// For doubles the legs are generated with origins in non-increasing
// pips-to-go order so that permutations of the same legs appear once.
func GenerateMoves(board Board, side Side, dice Dice) *MoveList {
	ml := &MoveList{
		Side:      side,
		Dice:      dice,
		Origin:    board,
		Sequences: make([]MoveSequence, 0, 32),
	}
	if _, err := NewDice(dice[0], dice[1]); err != nil {
		return ml
	}

	seen := make(map[string]struct{})
	stack := []genState{{board: board, remaining: dice.Values(), maxPips: 25}}
	doubles := dice.IsDouble()

	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := expand(st, side, doubles)
		if len(children) == 0 {
			ml.save(st, seen)
			continue
		}
		// Push in reverse so children are visited in generation order
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	ml.enforceMaximum()
	return ml
}

// expand returns the states reachable by playing one more leg.
func expand(st genState, side Side, doubles bool) []genState {
	if len(st.remaining) == 0 {
		return nil
	}

	var children []genState
	tried := [7]bool{}
	for di, die := range st.remaining {
		if tried[die] {
			continue
		}
		tried[die] = true

		for _, from := range origins(st.board, side) {
			if doubles && side.PipsFrom(from) > st.maxPips {
				continue
			}
			to, ok := st.board.legalDestination(from, die, side)
			if !ok {
				continue
			}

			next, leg, err := st.board.ApplyLeg(side, Leg{From: int8(from), To: int8(to), Die: int8(die)})
			if err != nil {
				log.Error().Err(err).Str("board", st.board.String()).Msg("move-generator-defect")
				continue
			}

			remaining := make([]int, 0, len(st.remaining)-1)
			remaining = append(remaining, st.remaining[:di]...)
			remaining = append(remaining, st.remaining[di+1:]...)

			legs := make([]Leg, len(st.legs), len(st.legs)+1)
			copy(legs, st.legs)

			children = append(children, genState{
				board:     next,
				remaining: remaining,
				legs:      append(legs, leg),
				hits:      st.hits.Add(leg),
				maxPips:   side.PipsFrom(from),
			})
		}
	}
	return children
}

// origins lists the slots side may move from, rearmost first.
// While checkers are on the bar, the bar is the only origin.
func origins(b Board, side Side) []int {
	if b.OnBar(side) > 0 {
		return []int{side.Bar()}
	}
	slots := make([]int, 0, 15)
	for pips := NumPoints; pips >= 1; pips-- {
		p := slotAt(side, pips)
		if b.CountOf(p, side) > 0 {
			slots = append(slots, p)
		}
	}
	return slots
}

// slotAt returns the slot that is pips away from bearing off for side.
func slotAt(side Side, pips int) int {
	if side == SideA {
		return 25 - pips
	}
	return pips
}

// save records a terminal state.
func (ml *MoveList) save(st genState, seen map[string]struct{}) {
	if len(st.legs) == 0 {
		return
	}
	seq := MoveSequence{
		Side:   ml.Side,
		Legs:   st.legs,
		Hits:   st.hits,
		Result: st.board,
	}
	k := seq.legKey()
	if _, dup := seen[k]; dup {
		return
	}
	seen[k] = struct{}{}

	if len(seq.Legs) > ml.MaxDice {
		ml.MaxDice = len(seq.Legs)
	}
	ml.Sequences = append(ml.Sequences, seq)
}

// enforceMaximum drops sequences that do not play as many dice as possible.
func (ml *MoveList) enforceMaximum() {
	kept := ml.Sequences[:0]
	for _, seq := range ml.Sequences {
		if len(seq.Legs) == ml.MaxDice {
			kept = append(kept, seq)
		}
	}
	ml.Sequences = kept

	if ml.Dice.IsDouble() || ml.MaxDice != 1 {
		return
	}

	high := ml.Dice[0]
	if ml.Dice[1] > high {
		high = ml.Dice[1]
	}
	larger := ml.Sequences[:0:0]
	for _, seq := range ml.Sequences {
		if int(seq.Legs[0].Die) == high {
			larger = append(larger, seq)
		}
	}
	if len(larger) > 0 {
		ml.Sequences = larger
	}
}

// ApplyLegs plays legs in order for side, returning the final board and
// the hits made. It fails on the first illegal leg.
func ApplyLegs(board Board, side Side, legs []Leg) (Board, HitEvents, []Leg, error) {
	var hits HitEvents
	played := make([]Leg, 0, len(legs))
	for _, l := range legs {
		next, leg, err := board.ApplyLeg(side, l)
		if err != nil {
			return board, hits, played, err
		}
		board = next
		hits = hits.Add(leg)
		played = append(played, leg)
	}
	return board, hits, played, nil
}
