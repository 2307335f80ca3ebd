package positionid

// PositionKey is the canonical key of a board: the XPID symbol of every
// slot in fixed index order. It is comparable and can be used as a map key.
type PositionKey [BoardLength]byte

// MakePositionKey creates the canonical key of a board.
func MakePositionKey(board Board) PositionKey {
	var key PositionKey
	for i, n := range board {
		switch {
		case n == 0:
			key[i] = '-'
		case n > 0:
			key[i] = 'a' + byte(n-1)
		default:
			key[i] = 'A' + byte(-n-1)
		}
	}
	return key
}

// BoardFromKey reconstructs a board from its key.
func BoardFromKey(key PositionKey) (Board, error) {
	return ParseBoard(string(key[:]))
}

// String returns the key as its 26 character board field.
func (k PositionKey) String() string {
	return string(k[:])
}
