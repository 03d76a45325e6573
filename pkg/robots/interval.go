package robots

import (
	"slices"
)

// intervalTree is a static centered interval tree over half-open ranges.
// Each node keeps the ranges that contain its center twice: sorted by First
// ascending and by Last descending. Ranges entirely below the center go left,
// ranges entirely above go right.
type intervalTree struct {
	ranges []Range
	root   *intervalNode
}

type intervalNode struct {
	center  Address
	byFirst []int
	byLast  []int
	left    *intervalNode
	right   *intervalNode
}

// newIntervalTree indexes ranges by position. Empty ranges are skipped since
// they contain no point.
func newIntervalTree(ranges []Range) *intervalTree {
	idx := make([]int, 0, len(ranges))
	for i, r := range ranges {
		if !r.Empty() {
			idx = append(idx, i)
		}
	}
	t := &intervalTree{ranges: ranges}
	t.root = t.build(idx)
	return t
}

func (t *intervalTree) build(idx []int) *intervalNode {
	if len(idx) == 0 {
		return nil
	}

	firsts := make([]Address, len(idx))
	for i, ri := range idx {
		firsts[i] = t.ranges[ri].First
	}
	slices.SortFunc(firsts, Address.Compare)
	// The median First belongs to a non-empty range, which therefore contains
	// the center and lands in this node. Every level makes progress.
	center := firsts[len(firsts)/2]

	n := &intervalNode{center: center}
	var left, right []int
	for _, ri := range idx {
		r := t.ranges[ri]
		switch {
		case !r.endsAfter(center):
			left = append(left, ri)
		case center.Less(r.First):
			right = append(right, ri)
		default:
			n.byFirst = append(n.byFirst, ri)
		}
	}

	n.byLast = slices.Clone(n.byFirst)
	slices.SortStableFunc(n.byFirst, func(a, b int) int {
		return t.ranges[a].First.Compare(t.ranges[b].First)
	})
	slices.SortStableFunc(n.byLast, func(a, b int) int {
		return t.ranges[b].compareEnd(t.ranges[a])
	})

	n.left = t.build(left)
	n.right = t.build(right)
	return n
}

// query appends to dst the indices of all ranges containing p.
func (t *intervalTree) query(dst []int, p Address) []int {
	for n := t.root; n != nil; {
		switch c := p.Compare(n.center); {
		case c < 0:
			// Node ranges end after the center, so First <= p is enough.
			for _, ri := range n.byFirst {
				if p.Less(t.ranges[ri].First) {
					break
				}
				dst = append(dst, ri)
			}
			n = n.left
		case c > 0:
			// Node ranges start at or before the center, so p < Last is enough.
			for _, ri := range n.byLast {
				if !t.ranges[ri].endsAfter(p) {
					break
				}
				dst = append(dst, ri)
			}
			n = n.right
		default:
			dst = append(dst, n.byFirst...)
			return dst
		}
	}
	return dst
}

// size returns the number of indexed ranges, including empty ones.
func (t *intervalTree) size() int {
	return len(t.ranges)
}
