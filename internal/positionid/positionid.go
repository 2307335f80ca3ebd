// Package positionid implements the extended position identifier (XPID)
// used to exchange backgammon positions with callers.
//
// An XPID is a colon separated record. The first field is a 26 character
// board string mapped to [bar A, point 1 .. point 24, bar B]:
//
//	'-'      empty slot
//	'a'..'z' 1..26 checkers of side A
//	'A'..'Z' 1..26 checkers of side B
//
// The following fields carry match context. Only the turn (field 4) and the
// dice (field 5) are interpreted here, everything else is kept verbatim.
package positionid

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// BoardLength is the length of the board field of an XPID
	BoardLength = 26
	// MaxCheckers is the number of checkers each side plays with
	MaxCheckers = 15
	// Prefix is the optional record prefix accepted by Parse
	Prefix = "XGID="
)

// Field indexes of the colon separated record
const (
	fieldBoard = 0
	fieldTurn  = 3
	fieldDice  = 4
)

// StartingBoard is the board field of the standard starting position
const StartingBoard = "-b----E-C---eE---c-e----B-"

// Board holds signed checker counts per slot: positive for side A,
// negative for side B. Index 0 is side A's bar, 25 is side B's bar.
type Board [BoardLength]int8

// Position is a parsed XPID record.
type Position struct {
	Board Board
	Turn  int      // 1 = side B on roll, -1 = side A on roll, 0 = unknown
	Dice  [2]int   // 0,0 if not rolled
	Aux   []string // remaining fields, verbatim, starting with field 2
}

// MalformedPositionError reports an XPID that cannot be parsed.
type MalformedPositionError struct {
	Input  string
	Field  int
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position %q (field %d): %s", e.Input, e.Field+1, e.Reason)
}

func malformed(input string, field int, format string, args ...interface{}) error {
	return &MalformedPositionError{Input: input, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Parse decodes an XPID record. A bare 26 character board is accepted.
func Parse(s string) (*Position, error) {
	input := s
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), Prefix))
	if s == "" {
		return nil, malformed(input, fieldBoard, "empty position")
	}

	fields := strings.Split(s, ":")
	board, err := ParseBoard(fields[fieldBoard])
	if err != nil {
		if me, ok := err.(*MalformedPositionError); ok {
			me.Input = input
		}
		return nil, err
	}

	pos := &Position{Board: board}
	if len(fields) > 1 {
		pos.Aux = append([]string(nil), fields[1:]...)
	}

	if len(fields) > fieldTurn && fields[fieldTurn] != "" {
		turn, err := strconv.Atoi(fields[fieldTurn])
		if err != nil || (turn != 1 && turn != -1 && turn != 0) {
			return nil, malformed(input, fieldTurn, "turn must be 1, -1 or 0, got %q", fields[fieldTurn])
		}
		pos.Turn = turn
	}

	if len(fields) > fieldDice && fields[fieldDice] != "" {
		dice, err := ParseDice(fields[fieldDice])
		if err != nil {
			return nil, malformed(input, fieldDice, "%v", err)
		}
		pos.Dice = dice
	}

	return pos, nil
}

// ParseBoard decodes the 26 character board field.
func ParseBoard(field string) (Board, error) {
	var board Board
	if len(field) != BoardLength {
		return board, malformed(field, fieldBoard, "board must be %d characters, got %d", BoardLength, len(field))
	}

	var totalA, totalB int
	for i := 0; i < BoardLength; i++ {
		ch := field[i]
		switch {
		case ch == '-':
		case ch >= 'a' && ch <= 'z':
			n := int(ch-'a') + 1
			board[i] = int8(n)
			totalA += n
		case ch >= 'A' && ch <= 'Z':
			n := int(ch-'A') + 1
			board[i] = -int8(n)
			totalB += n
		default:
			return board, malformed(field, fieldBoard, "invalid character %q at slot %d", ch, i)
		}
	}

	// Bars only ever hold their own side's checkers
	if board[0] < 0 {
		return board, malformed(field, fieldBoard, "side B checkers on side A's bar")
	}
	if board[25] > 0 {
		return board, malformed(field, fieldBoard, "side A checkers on side B's bar")
	}
	if totalA > MaxCheckers {
		return board, malformed(field, fieldBoard, "side A has %d checkers", totalA)
	}
	if totalB > MaxCheckers {
		return board, malformed(field, fieldBoard, "side B has %d checkers", totalB)
	}

	return board, nil
}

// ParseDice decodes a two digit dice field such as "43". "00" means
// the dice have not been rolled.
func ParseDice(s string) ([2]int, error) {
	var dice [2]int
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return dice, fmt.Errorf("dice must be two digits, got %q", s)
	}
	for i := 0; i < 2; i++ {
		if s[i] < '0' || s[i] > '6' {
			return dice, fmt.Errorf("die %d out of range in %q", i+1, s)
		}
		dice[i] = int(s[i] - '0')
	}
	if (dice[0] == 0) != (dice[1] == 0) {
		return dice, fmt.Errorf("dice %q are half rolled", s)
	}
	return dice, nil
}

// FormatBoard encodes a board as the 26 character board field.
func FormatBoard(board Board) string {
	key := MakePositionKey(board)
	return string(key[:])
}

// Format encodes a full record. Aux fields are emitted after the board,
// with turn and dice taken from the position.
func Format(pos *Position) string {
	fields := []string{FormatBoard(pos.Board)}
	fields = append(fields, pos.Aux...)
	for len(fields) <= fieldDice {
		fields = append(fields, "0")
	}
	fields[fieldTurn] = strconv.Itoa(pos.Turn)
	fields[fieldDice] = fmt.Sprintf("%d%d", pos.Dice[0], pos.Dice[1])
	return strings.Join(fields, ":")
}

// SwapSides mirrors a board so that side A and side B exchange roles.
func SwapSides(board Board) Board {
	var result Board
	for i := 0; i < BoardLength; i++ {
		result[BoardLength-1-i] = -board[i]
	}
	return result
}
