package main

import (
	"flag"
	"testing"

	"github.com/yourusername/bgadvisor/pkg/engine"
)

func TestParseDice(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]int
		wantErr bool
	}{
		{"31", [2]int{3, 1}, false},
		{"3-1", [2]int{3, 1}, false},
		{" 6,6 ", [2]int{6, 6}, false},
		{"71", [2]int{}, true},
		{"3", [2]int{}, true},
		{"a-b", [2]int{}, true},
	}
	for _, tt := range tests {
		got, err := parseDice(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDice(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestCommonFlagsPosition(t *testing.T) {
	tests := []struct {
		name string
		args []string
		side engine.Side
		dice [2]int
	}{
		{"turn and dice from the record", []string{"-p", "-b----E-C---eE---c-e----B-:0:0:1:52:0:0:0:0:10"}, engine.SideB, [2]int{5, 2}},
		{"flags override the record", []string{"-p", "-b----E-C---eE---c-e----B-:0:0:1:52:0:0:0:0:10", "-side", "a", "-d", "6-4"}, engine.SideA, [2]int{6, 4}},
		{"bare board", []string{"-side", "b", "-d", "31"}, engine.SideB, [2]int{3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			cf := addCommonFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			board, side, dice := cf.position()
			if side != tt.side || dice != tt.dice {
				t.Errorf("side %s dice %v, want %s %v", side, dice, tt.side, tt.dice)
			}
			if board != engine.StartingPosition() {
				t.Errorf("board = %s", board)
			}
		})
	}
}
