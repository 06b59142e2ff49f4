package pruning

import "sort"

// TopNPruner is the final post-filter stage (spec 4.5): given the
// surviving blocks and a sort order, it conservatively keeps the `limit`
// blocks whose ordering-column range could contain the top-N rows. The
// result is a safe superset of the true top-N rows; the scan stage cuts
// it exactly.
type TopNPruner struct {
	orderBy []OrderByKey
	limit   uint64
}

// NewTopNPruner builds a TopNPruner for the given sort keys and limit.
func NewTopNPruner(orderBy []OrderByKey, limit uint64) *TopNPruner {
	return &TopNPruner{orderBy: orderBy, limit: limit}
}

// Prune sorts blocks by their sort-key extremum (per spec 4.5: the
// block's Min under an ascending key, Max under a descending one),
// breaking ties by (segmentIdx, blockIdx), and keeps the first `limit`.
//
// Only the first OrderBy key is used to pick the extremum column and
// direction; later keys are ignored, and ties on the first key break by
// (segmentIdx, blockIdx) alone.
func (p *TopNPruner) Prune(blocks []PrunedBlock) []PrunedBlock {
	if len(p.orderBy) == 0 || len(blocks) == 0 {
		return blocks
	}
	key := p.orderBy[0]

	ordered := make([]PrunedBlock, len(blocks))
	copy(ordered, blocks)

	sort.SliceStable(ordered, func(i, j int) bool {
		a := extremum(ordered[i].Block, key)
		b := extremum(ordered[j].Block, key)
		cmp := a.Compare(b)
		if key.Direction == Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		if ordered[i].SegmentIdx != ordered[j].SegmentIdx {
			return ordered[i].SegmentIdx < ordered[j].SegmentIdx
		}
		return ordered[i].BlockIdx < ordered[j].BlockIdx
	})

	if uint64(len(ordered)) > p.limit {
		ordered = ordered[:p.limit]
	}
	return ordered
}

func extremum(b BlockMeta, key OrderByKey) Scalar {
	stats := b.ColStats[key.Column]
	if key.Direction == Descending {
		return stats.Max
	}
	return stats.Min
}
