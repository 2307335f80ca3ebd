package engine

import "fmt"

// Weights are the coefficients of the heuristic evaluator.
// Positive factors are rewarded, exposure and bar checkers are penalised.
type Weights struct {
	PipCount     float64 `yaml:"pip_count" json:"pip_count"`
	PointsMade   float64 `yaml:"points_made" json:"points_made"`
	BlotExposure float64 `yaml:"blot_exposure" json:"blot_exposure"`
	HomeBoard    float64 `yaml:"home_board" json:"home_board"`
	Bar          float64 `yaml:"bar" json:"bar"`
	Hit          float64 `yaml:"hit" json:"hit"`
	BorneOff     float64 `yaml:"borne_off" json:"borne_off"`
}

// DefaultWeights returns weights tuned for reasonable checker play.
func DefaultWeights() Weights {
	return Weights{
		PipCount:     0.05,
		PointsMade:   0.5,
		BlotExposure: 2.0,
		HomeBoard:    0.75,
		Bar:          2.5,
		Hit:          1.5,
		BorneOff:     0.3,
	}
}

// Factors are the board-only inputs of the evaluator, seen from one side.
type Factors struct {
	PipDiff      float64 // Opponent's pip count minus own pip count
	PointsMade   float64 // Own points holding two or more checkers
	BlotExposure float64 // Sum of hit probabilities of own blots
	HomeBoard    float64 // Made points in the home quadrant
	Bar          float64 // Own checkers on the bar
	BorneOff     float64 // Own checkers borne off
}

// BoardFactors computes the evaluator factors of board for side.
// It depends only on the board, never on how the board was reached.
func BoardFactors(b Board, side Side) Factors {
	var f Factors
	f.PipDiff = float64(b.PipCount(side.Opponent()) - b.PipCount(side))
	for p := 1; p <= NumPoints; p++ {
		if b.CountOf(p, side) >= 2 {
			f.PointsMade++
			if side.InHome(p) {
				f.HomeBoard++
			}
		}
	}
	f.BlotExposure = BlotExposure(b, side)
	f.Bar = float64(b.OnBar(side))
	f.BorneOff = float64(b.BorneOff(side))
	return f
}

// Score combines the board factors and the hits of a sequence.
func (w Weights) Score(f Factors, hits HitEvents) float64 {
	return w.PipCount*f.PipDiff +
		w.PointsMade*f.PointsMade -
		w.BlotExposure*f.BlotExposure +
		w.HomeBoard*f.HomeBoard -
		w.Bar*f.Bar +
		w.BorneOff*f.BorneOff +
		w.Hit*float64(hits.Count)
}

// Evaluate scores the result of seq for the side that played it.
func (w Weights) Evaluate(seq MoveSequence) (float64, Factors) {
	f := BoardFactors(seq.Result, seq.Side)
	return w.Score(f, seq.Hits), f
}

// Validate rejects weights that are not finite numbers.
func (w Weights) Validate() error {
	for i, v := range []float64{w.PipCount, w.PointsMade, w.BlotExposure, w.HomeBoard, w.Bar, w.Hit, w.BorneOff} {
		if v != v || v > maxWeight || v < -maxWeight {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidOptions, i, v)
		}
	}
	return nil
}

const maxWeight = 1e6
