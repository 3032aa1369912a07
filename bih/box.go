package bih

import "github.com/achilleasa/go-sightline/geom"

// IntersectBox collects the ids of every object whose leaf region overlaps
// the query box, writing them into out and returning the number written plus
// whether anything was found. The buffer length is the capacity: once it
// fills, the query returns the partial result immediately. A nil/empty
// buffer, an invalid box, a box that misses the global bounds, or an empty
// index all report (0, false).
//
// This is a broad phase: results have overlapping containers, not
// necessarily overlapping geometry. Exact testing is the caller's job.
func (t *Tree) IntersectBox(q geom.AABB, out []uint32) (int, bool) {
	if len(out) == 0 || len(t.nodes) == 0 {
		return 0, false
	}
	if !q.IsValid() || !q.Intersects(t.bounds) {
		return 0, false
	}

	var stack [maxStackDepth]stackEntry
	sp := 0
	cur := uint32(0)
	count := 0
	found := false

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
					out[count] = id
					count++
					found = true
					if count == len(out) {
						return count, true
					}
				}
				break descend
			}

			lo := q.Min[n.kind]
			hi := q.Max[n.kind]

			if n.emptyCut {
				if hi < n.clip[0] || lo > n.clip[1] {
					break descend
				}
				cur = n.offset
				continue
			}

			overlapsLeft := lo <= n.clip[0]
			overlapsRight := hi >= n.clip[1]
			switch {
			case overlapsLeft && overlapsRight:
				if sp == maxStackDepth {
					return count, found
				}
				stack[sp] = stackEntry{node: n.offset + 1}
				sp++
				cur = n.offset
			case overlapsLeft:
				cur = n.offset
			case overlapsRight:
				cur = n.offset + 1
			default:
				// Neither side claims the span. Happens with degenerate
				// clip ordering; descend both rather than risk pruning a
				// valid candidate.
				if sp == maxStackDepth {
					return count, found
				}
				stack[sp] = stackEntry{node: n.offset + 1}
				sp++
				cur = n.offset
			}
		}

		if sp == 0 {
			return count, found
		}
		sp--
		cur = stack[sp].node
	}
}
