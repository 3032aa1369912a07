package bih

import "github.com/achilleasa/go-sightline/types"

// PointCallback receives one candidate object whose leaf region contains the
// query point. Accumulation and filtering belong to the callback.
type PointCallback func(p types.Vec3, id uint32)

// IntersectPoint reports every object in every leaf whose region contains
// the point. There is no early termination; points outside the global bounds
// report nothing. Interior tests are plain plane comparisons on the split
// axis, so a point sitting exactly on both clip planes descends both sides.
func (t *Tree) IntersectPoint(p types.Vec3, cb PointCallback) {
	if cb == nil || len(t.nodes) == 0 || !t.bounds.Contains(p) {
		return
	}

	var stack [maxStackDepth]stackEntry
	sp := 0
	cur := uint32(0)

	for {
	descend:
		for {
			n := &t.nodes[cur]

			if n.kind == leafNode {
				end := n.offset + n.count
				for slot := n.offset; slot < end; slot++ {
					id := t.remap.lookup(t.objects[slot])
					if id == InvalidObjectIndex {
						continue
					}
					cb(p, id)
				}
				break descend
			}

			v := p[n.kind]

			if n.emptyCut {
				if v < n.clip[0] || v > n.clip[1] {
					break descend
				}
				cur = n.offset
				continue
			}

			inLeft := v <= n.clip[0]
			inRight := v >= n.clip[1]
			switch {
			case inLeft && inRight:
				if sp == maxStackDepth {
					return
				}
				stack[sp] = stackEntry{node: n.offset + 1}
				sp++
				cur = n.offset
			case inLeft:
				cur = n.offset
			case inRight:
				cur = n.offset + 1
			default:
				// The point lies in the gap between the clip regions.
				break descend
			}
		}

		if sp == 0 {
			return
		}
		sp--
		cur = stack[sp].node
	}
}
