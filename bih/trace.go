package bih

import "github.com/achilleasa/go-sightline/geom"

// Traversal uses a fixed-capacity call-local stack instead of recursion so
// resource use stays bounded and predictable. A descent that would push past
// this depth aborts and under-reports instead of growing; balanced builders
// never get close to it.
const maxStackDepth = 64

// stackEntry is one deferred subtree. Ray descent records the tightened
// parametric interval alongside the node; point and box descent use only the
// node field.
type stackEntry struct {
	node  uint32
	tnear float32
	tfar  float32
}

// RayCallback performs exact geometric testing for one candidate object and
// reports whether it was hit. maxDist is shared with the traversal: lowering
// it narrows the remaining search, which is how "closest hit so far"
// propagates across leaves. The stopAtFirst and ignoreDynamic query flags
// are forwarded untouched.
type RayCallback func(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool

// IntersectRay walks every leaf whose region the ray crosses within
// *maxDist, invoking the callback for each valid candidate id in front-to-
// back node order. With stopAtFirst set the walk ends at the first candidate
// the callback reports as hit. Degenerate inputs (nil callback or distance,
// non-positive clip distance, empty index) report nothing.
func (t *Tree) IntersectRay(r geom.Ray, cb RayCallback, maxDist *float32, stopAtFirst, ignoreDynamic bool) {
	if cb == nil || maxDist == nil || len(t.nodes) == 0 || *maxDist <= 0 {
		return
	}

	intervalMin, intervalMax, ok := r.IntersectAABB(t.bounds)
	if !ok || intervalMin >= *maxDist {
		return
	}
	if intervalMax > *maxDist {
		intervalMax = *maxDist
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
					if cb(r, id, maxDist, stopAtFirst, ignoreDynamic) && stopAtFirst {
						return
					}
				}
				break descend
			}

			axis := int(n.kind)
			org := r.Origin[axis]
			inv := r.InvDir[axis]
			sign := r.Sign[axis]

			if n.emptyCut {
				// Single child: clamp the interval to the kept region.
				tNear := (n.clip[sign] - org) * inv
				tFar := (n.clip[sign^1] - org) * inv
				cur = n.offset
				if tNear > intervalMin {
					intervalMin = tNear
				}
				if tFar < intervalMax {
					intervalMax = tFar
				}
				if intervalMin > intervalMax {
					break descend
				}
				continue
			}

			// Crossing distance out of the near child and into the far
			// child, ordered by the direction sign on the split axis.
			tNear := (n.clip[sign] - org) * inv
			tFar := (n.clip[sign^1] - org) * inv
			near := n.offset + sign
			far := n.offset + (sign ^ 1)

			// The ray threads the gap between both clip regions.
			if tNear < intervalMin && tFar > intervalMax {
				break descend
			}

			// Far child only.
			if tNear < intervalMin {
				cur = far
				if tFar > intervalMin {
					intervalMin = tFar
				}
				continue
			}

			// Near child only.
			if tFar > intervalMax {
				cur = near
				if tNear < intervalMax {
					intervalMax = tNear
				}
				continue
			}

			// Both children: defer the far one with a tightened interval.
			if sp == maxStackDepth {
				return
			}
			entry := tFar
			if intervalMin > entry {
				entry = intervalMin
			}
			stack[sp] = stackEntry{node: far, tnear: entry, tfar: intervalMax}
			sp++
			cur = near
			if tNear < intervalMax {
				intervalMax = tNear
			}
		}

		// Unwind to the nearest deferred subtree still inside the (possibly
		// narrowed) clip distance.
		for {
			if sp == 0 {
				return
			}
			sp--
			if *maxDist < stack[sp].tnear {
				continue
			}
			cur = stack[sp].node
			intervalMin = stack[sp].tnear
			intervalMax = stack[sp].tfar
			break
		}
	}
}
