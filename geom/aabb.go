// Package geom provides the bounding-volume and ray primitives consumed by
// the index traversal code.
package geom

import "github.com/achilleasa/go-sightline/types"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min types.Vec3 `json:"min"`
	Max types.Vec3 `json:"max"`
}

// Contains checks if the point is inside the box. Boundary points count as
// inside.
func (b AABB) Contains(point types.Vec3) bool {
	return point[0] >= b.Min[0] && point[0] <= b.Max[0] &&
		point[1] >= b.Min[1] && point[1] <= b.Max[1] &&
		point[2] >= b.Min[2] && point[2] <= b.Max[2]
}

// Intersects checks if the box overlaps another box. Touching faces count as
// overlapping.
func (b AABB) Intersects(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Center returns the center of the box.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent per axis.
func (b AABB) Size() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// IsValid reports whether Min <= Max on every axis. Zero-extent boxes are
// valid; they behave as points.
func (b AABB) IsValid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Union returns the smallest box enclosing both inputs.
func Union(a, b AABB) AABB {
	return AABB{
		Min: types.MinVec3(a.Min, b.Min),
		Max: types.MaxVec3(a.Max, b.Max),
	}
}
