package engine

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// MalformedPositionError reports a position string that cannot be parsed.
type MalformedPositionError = positionid.MalformedPositionError

var (
	// ErrInvalidDice is returned for dice outside 1-6.
	ErrInvalidDice = errors.New("invalid dice")
	// ErrInvalidOptions is returned for negative or inconsistent analysis options.
	ErrInvalidOptions = errors.New("invalid analysis options")
	// ErrSimulationBudgetExceeded is returned when
	// simulations x top moves x ply cap is above the configured ceiling.
	ErrSimulationBudgetExceeded = errors.New("simulation budget exceeded")
)

// IllegalMoveError reports a leg that cannot be played on a board.
// The move generator only produces legal legs, so seeing one of these
// from the generator indicates a defect.
type IllegalMoveError struct {
	Side   Side
	Leg    Leg
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move for side %s %d->%d (die %d): %s",
		e.Side, e.Leg.From, e.Leg.To, e.Leg.Die, e.Reason)
}
