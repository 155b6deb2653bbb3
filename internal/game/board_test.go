package game

import (
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		winner   Mark
		terminal bool
	}{
		{
			name:  "ongoing - empty board",
			board: Board{},
		},
		{
			name: "ongoing - partial board",
			board: Board{
				{MarkX, None, None},
				{None, MarkO, None},
				{None, None, None},
			},
		},
		{
			name: "X wins - first row",
			board: Board{
				{MarkX, MarkX, MarkX},
				{None, MarkO, None},
				{None, None, MarkO},
			},
			winner:   MarkX,
			terminal: true,
		},
		{
			name: "X wins - third row",
			board: Board{
				{None, MarkO, None},
				{None, MarkO, None},
				{MarkX, MarkX, MarkX},
			},
			winner:   MarkX,
			terminal: true,
		},
		{
			name: "O wins - second column",
			board: Board{
				{MarkX, MarkO, None},
				{MarkX, MarkO, None},
				{None, MarkO, None},
			},
			winner:   MarkO,
			terminal: true,
		},
		{
			name: "X wins - main diagonal",
			board: Board{
				{MarkX, None, None},
				{None, MarkX, None},
				{None, None, MarkX},
			},
			winner:   MarkX,
			terminal: true,
		},
		{
			name: "O wins - anti-diagonal",
			board: Board{
				{None, None, MarkO},
				{None, MarkO, None},
				{MarkO, None, None},
			},
			winner:   MarkO,
			terminal: true,
		},
		{
			name: "draw - full board without winner",
			board: Board{
				{MarkX, MarkO, MarkX},
				{MarkX, MarkO, MarkO},
				{MarkO, MarkX, MarkX},
			},
			winner:   None,
			terminal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, terminal := Evaluate(tt.board)
			if winner != tt.winner {
				t.Errorf("Evaluate() winner = %v, want %v", winner, tt.winner)
			}
			if terminal != tt.terminal {
				t.Errorf("Evaluate() terminal = %v, want %v", terminal, tt.terminal)
			}
		})
	}
}

func TestApply(t *testing.T) {
	base := Board{
		{MarkX, None, None},
		{None, MarkO, None},
		{None, None, None},
	}

	t.Run("places mark in empty cell", func(t *testing.T) {
		got, err := base.Apply(2, 2, MarkX)
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		if got[2][2] != MarkX {
			t.Errorf("Apply() cell (2,2) = %v, want %v", got[2][2], MarkX)
		}
		if base[2][2] != None {
			t.Errorf("Apply() mutated the receiver board")
		}
	})

	t.Run("rejects occupied cell", func(t *testing.T) {
		got, err := base.Apply(1, 1, MarkX)
		if err != ErrCellOccupied {
			t.Fatalf("Apply() error = %v, want %v", err, ErrCellOccupied)
		}
		if got != base {
			t.Errorf("Apply() changed the board on a rejected move")
		}
	})

	t.Run("rejects out of range indices", func(t *testing.T) {
		for _, pos := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {3, 3}} {
			if _, err := base.Apply(pos[0], pos[1], MarkO); err != ErrOutOfRange {
				t.Errorf("Apply(%d, %d) error = %v, want %v", pos[0], pos[1], err, ErrOutOfRange)
			}
		}
	})
}

func TestFull(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  bool
	}{
		{
			name:  "empty board is not full",
			board: Board{},
			want:  false,
		},
		{
			name: "partial board is not full",
			board: Board{
				{MarkX, None, None},
				{None, MarkO, None},
				{None, None, None},
			},
			want: false,
		},
		{
			name: "full board is full",
			board: Board{
				{MarkX, MarkO, MarkX},
				{MarkX, MarkO, MarkO},
				{MarkO, MarkX, MarkX},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Full(tt.board); got != tt.want {
				t.Errorf("Full() got = %v, want %v", got, tt.want)
			}
		})
	}
}
