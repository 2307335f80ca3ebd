package engine

import "fmt"

// Dice is a roll of two dice.
type Dice [2]int

// NewDice validates and returns a roll.
func NewDice(d1, d2 int) (Dice, error) {
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return Dice{}, fmt.Errorf("%w: %d-%d", ErrInvalidDice, d1, d2)
	}
	return Dice{d1, d2}, nil
}

// IsDouble reports whether both dice show the same number.
func (d Dice) IsDouble() bool {
	return d[0] == d[1]
}

// Values returns the die values to play: two values, or four for doubles.
func (d Dice) Values() []int {
	if d.IsDouble() {
		return []int{d[0], d[0], d[0], d[0]}
	}
	return []int{d[0], d[1]}
}

// String returns the roll as two digits, larger die first.
func (d Dice) String() string {
	if d[1] > d[0] {
		return fmt.Sprintf("%d%d", d[1], d[0])
	}
	return fmt.Sprintf("%d%d", d[0], d[1])
}

// AllRolls returns the 21 distinct rolls and how many of the 36
// permutations each stands for.
func AllRolls() ([]Dice, []int) {
	rolls := make([]Dice, 0, 21)
	weights := make([]int, 0, 21)
	for d1 := 1; d1 <= 6; d1++ {
		for d2 := 1; d2 <= d1; d2++ {
			rolls = append(rolls, Dice{d1, d2})
			if d1 == d2 {
				weights = append(weights, 1)
			} else {
				weights = append(weights, 2)
			}
		}
	}
	return rolls, weights
}
