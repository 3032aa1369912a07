package geom

import (
	"math"

	"github.com/achilleasa/go-sightline/types"
)

// Near-parallel direction components fall back to slab membership tests.
const rayEpsilon = 1e-6

// Ray is an origin plus direction with the per-axis inverse direction and
// direction sign bits precomputed, so traversal plane tests need no division
// or branching on orientation.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	// InvDir[axis] = 1/Dir[axis]; infinite on zero components.
	InvDir types.Vec3

	// Sign[axis] is the IEEE sign bit of Dir[axis] (1 for negative,
	// including negative zero). Used to pick near/far planes.
	Sign [3]uint32
}

// NewRay builds a ray. The direction is used as given; callers that need
// unit parametric distances must pass a normalized direction.
func NewRay(origin, dir types.Vec3) Ray {
	r := Ray{Origin: origin, Dir: dir}
	for axis := 0; axis < 3; axis++ {
		r.InvDir[axis] = 1.0 / dir[axis]
		r.Sign[axis] = math.Float32bits(dir[axis]) >> 31
	}
	return r
}

// NewSegment builds a normalized ray from one point towards another and
// returns the distance between them, suitable as a clip distance.
func NewSegment(from, to types.Vec3) (Ray, float32) {
	diff := to.Sub(from)
	dist := diff.Len()
	return NewRay(from, diff.Normalize()), dist
}

// Point returns the position at parametric distance t along the ray.
func (r Ray) Point(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectAABB runs the per-axis slab test and returns the parametric
// interval [tmin, tmax] where the ray overlaps the box. Intervals entirely
// behind the origin report no intersection; intervals straddling the origin
// are clamped to start at 0.
func (r Ray) IntersectAABB(box AABB) (float32, float32, bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if abs32(r.Dir[axis]) < rayEpsilon {
			// Parallel to the slab: either always inside it or never.
			if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
				return 0, 0, false
			}
			continue
		}

		t1 := (box.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
		t2 := (box.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, 0, false
		}
	}

	if tmax < 0 {
		return 0, 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, tmax, true
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
