package game

import "errors"

// Mark represents the mark of a player (X, O) or an empty cell.
type Mark string

const (
	None  Mark = ""
	MarkX Mark = "X"
	MarkO Mark = "O"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
)

var (
	ErrOutOfRange   = errors.New("cell index out of range")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Board is a 3x3 grid of cells. The zero value is an empty board.
type Board [3][3]Mark

// Other returns the opposing mark. X and O strictly alternate.
func (m Mark) Other() Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// Apply places mark at (row, col) and returns the resulting board. The
// receiver is left untouched so a rejected move never mutates state.
func (b Board) Apply(row, col int, mark Mark) (Board, error) {
	if row < BorderMin || row > BorderMax || col < BorderMin || col > BorderMax {
		return b, ErrOutOfRange
	}
	if b[row][col] != None {
		return b, ErrCellOccupied
	}
	b[row][col] = mark
	return b, nil
}

// Evaluate checks the board for a terminal position. It returns the winning
// mark and true for a win, None and true for a draw, and None and false while
// the game is still ongoing.
func Evaluate(b Board) (Mark, bool) {
	// Rows
	for i := range [3]int{} {
		if b[i][0] != None && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return b[i][0], true
		}
	}

	// Columns
	for i := range [3]int{} {
		if b[0][i] != None && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return b[0][i], true
		}
	}

	// Diagonals
	if b[0][0] != None && b[0][0] == b[1][1] && b[1][1] == b[2][2] {
		return b[0][0], true
	}
	if b[0][2] != None && b[0][2] == b[1][1] && b[1][1] == b[2][0] {
		return b[0][2], true
	}

	if Full(b) {
		return None, true
	}

	return None, false
}

// Full reports whether every cell of the board is occupied.
func Full(b Board) bool {
	for r := range [3]int{} {
		for c := range [3]int{} {
			if b[r][c] == None {
				return false
			}
		}
	}
	return true
}
