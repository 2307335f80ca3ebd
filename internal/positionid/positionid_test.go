package positionid

import (
	"errors"
	"testing"
)

func TestParseStartingPosition(t *testing.T) {
	pos, err := Parse("XGID=" + StartingBoard + ":0:0:1:43:0:0:0:0:10")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := map[int]int8{1: 2, 6: -5, 8: -3, 12: 5, 13: -5, 17: 3, 19: 5, 24: -2}
	for i, n := range pos.Board {
		if n != want[i] {
			t.Errorf("slot %d = %d, want %d", i, n, want[i])
		}
	}

	if pos.Turn != 1 {
		t.Errorf("Turn = %d, want 1", pos.Turn)
	}
	if pos.Dice != [2]int{4, 3} {
		t.Errorf("Dice = %v, want [4 3]", pos.Dice)
	}
	if len(pos.Aux) != 9 {
		t.Errorf("Aux has %d fields, want 9", len(pos.Aux))
	}
}

func TestParseBareBoard(t *testing.T) {
	pos, err := Parse(StartingBoard)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pos.Turn != 0 || pos.Dice != [2]int{} {
		t.Errorf("bare board should have no turn or dice, got %d %v", pos.Turn, pos.Dice)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short board", "-b----E-C---eE---c-e----B"},
		{"bad character", "-b----E-C---eE---c-e----B!"},
		{"too many A", "-o----E-C---eE---c-e----B-"},
		{"too many B", "-b----O-C---eE---c-e----B-"},
		{"B on A bar", "Ab----E-C---eE---c-e----A-"},
		{"A on B bar", "-a----E-C---eE---c-e----Ba"},
		{"bad turn", StartingBoard + ":0:0:2:43"},
		{"bad dice", StartingBoard + ":0:0:1:47"},
		{"half rolled", StartingBoard + ":0:0:1:40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			var me *MalformedPositionError
			if !errors.As(err, &me) {
				t.Errorf("error %v is not a MalformedPositionError", err)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	input := StartingBoard + ":0:0:-1:61:2:1:0:7:10"
	pos, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := Format(pos); got != input {
		t.Errorf("Format = %q, want %q", got, input)
	}
}

func TestPositionKey(t *testing.T) {
	board, err := ParseBoard(StartingBoard)
	if err != nil {
		t.Fatalf("ParseBoard failed: %v", err)
	}

	key := MakePositionKey(board)
	if key.String() != StartingBoard {
		t.Errorf("key = %s, want %s", key, StartingBoard)
	}

	back, err := BoardFromKey(key)
	if err != nil {
		t.Fatalf("BoardFromKey failed: %v", err)
	}
	if back != board {
		t.Errorf("key round trip changed the board")
	}
}

func TestSwapSides(t *testing.T) {
	board, _ := ParseBoard(StartingBoard)
	swapped := SwapSides(board)

	// The starting position is symmetric
	if swapped != board {
		t.Errorf("swapped start = %s, want %s", FormatBoard(swapped), StartingBoard)
	}

	board[0] = 1
	board[1] = 1
	swapped = SwapSides(board)
	if swapped[25] != -1 || swapped[24] != -1 {
		t.Errorf("SwapSides did not mirror the bar: %s", FormatBoard(swapped))
	}
	if SwapSides(swapped) != board {
		t.Errorf("SwapSides is not an involution")
	}
}

func TestParseDice(t *testing.T) {
	tests := []struct {
		in   string
		want [2]int
		ok   bool
	}{
		{"43", [2]int{4, 3}, true},
		{"66", [2]int{6, 6}, true},
		{"00", [2]int{0, 0}, true},
		{"7", [2]int{}, false},
		{"4a", [2]int{}, false},
		{"07", [2]int{}, false},
	}
	for _, tt := range tests {
		got, err := ParseDice(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDice(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseDice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
