package engine

import (
	"github.com/samber/lo"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// CanonicalKey returns the key identifying a board regardless of how it
// was reached. Two boards have the same key iff they are identical.
func CanonicalKey(b Board) positionid.PositionKey {
	return positionid.MakePositionKey(b.PositionID())
}

// Group is a set of move sequences that reach the same position.
type Group struct {
	Key            positionid.PositionKey
	Representative MoveSequence
	Alternatives   []MoveSequence // Other sequences reaching Key, kept for display
}

// GroupByKey collapses sequences reaching the same final position.
// Groups appear in the order their key is first seen and the first
// sequence of each group is its representative.
func GroupByKey(seqs []MoveSequence) []Group {
	keyed := lo.Map(seqs, func(s MoveSequence, _ int) lo.Tuple2[positionid.PositionKey, MoveSequence] {
		return lo.T2(s.Key(), s)
	})
	members := lo.GroupBy(keyed, func(t lo.Tuple2[positionid.PositionKey, MoveSequence]) positionid.PositionKey {
		return t.A
	})
	order := lo.Uniq(lo.Map(keyed, func(t lo.Tuple2[positionid.PositionKey, MoveSequence], _ int) positionid.PositionKey {
		return t.A
	}))

	return lo.Map(order, func(k positionid.PositionKey, _ int) Group {
		seqs := lo.Map(members[k], func(t lo.Tuple2[positionid.PositionKey, MoveSequence], _ int) MoveSequence {
			return t.B
		})
		return Group{
			Key:            k,
			Representative: seqs[0],
			Alternatives:   seqs[1:],
		}
	})
}

// DistinctResults returns the representative of every group, in order.
func DistinctResults(seqs []MoveSequence) []MoveSequence {
	return lo.UniqBy(seqs, func(s MoveSequence) positionid.PositionKey {
		return s.Key()
	})
}
