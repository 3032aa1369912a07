// Package nav layers gameplay-style spatial queries on top of a loaded
// index: line of sight, ground probing and occupancy lookups. The index
// only narrows candidates; exact geometric testing is delegated to a
// Collider supplied by the caller.
package nav

import (
	"fmt"
	"time"

	"github.com/achilleasa/go-sightline/asset"
	"github.com/achilleasa/go-sightline/bih"
	"github.com/achilleasa/go-sightline/geom"
	"github.com/achilleasa/go-sightline/log"
	"github.com/achilleasa/go-sightline/types"
)

var logger = log.New("nav")

// Collider performs the exact intersection test for one candidate object
// and reports whether the ray hits it. A collider that registers a hit
// closer than *maxDist must lower *maxDist to the hit distance; that is how
// closest-hit queries converge. The stopAtFirst and ignoreDynamic flags
// describe the running query so colliders can skip work or objects.
type Collider interface {
	IntersectRay(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool
}

// Map couples a loaded index with the collider that understands its
// objects. Maps are immutable after Load and safe for concurrent queries.
type Map struct {
	name     string
	tree     *bih.Tree
	collider Collider
}

// Load opens an index from a local path or http/https URL and decodes it. A
// nil collider is allowed and yields a conservative map: candidate bounding
// regions count as solid, which suits broad-phase-only uses (LineOfSight,
// ObjectsAt, ObjectsInBox) but disables the distance-producing queries.
func Load(pathToIndex string, c Collider) (*Map, error) {
	res, err := asset.NewResource(pathToIndex, nil)
	if err != nil {
		return nil, fmt.Errorf("nav: could not open index: %s", err)
	}
	defer res.Close()

	logger.Noticef(`loading index from "%s"`, res.Path())
	start := time.Now()

	tree, err := bih.ReadTree(res)
	if err != nil {
		return nil, fmt.Errorf("nav: could not decode index '%s': %s", res.Path(), err)
	}
	logger.Noticef("loaded %d primitives in %d ms", tree.PrimitiveCount(), time.Since(start).Nanoseconds()/1e6)

	return &Map{
		name:     res.RemotePath(),
		tree:     tree,
		collider: c,
	}, nil
}

// Name returns the base name of the location the map was loaded from.
func (m *Map) Name() string {
	return m.name
}

// Bounds returns the box enclosing every indexed object.
func (m *Map) Bounds() geom.AABB {
	return m.tree.Bounds()
}

// PrimitiveCount returns the size of the map's dense object id space.
func (m *Map) PrimitiveCount() uint32 {
	return m.tree.PrimitiveCount()
}

// UsesRemap reports whether the index translates stored ids through a table.
func (m *Map) UsesRemap() bool {
	return m.tree.UsesRemap()
}

// Stats renders index statistics as a table.
func (m *Map) Stats() string {
	return m.tree.Stats()
}

// exactTest routes one candidate through the collider; without one every
// candidate counts as a hit.
func (m *Map) exactTest(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool {
	if m.collider == nil {
		return true
	}
	return m.collider.IntersectRay(r, id, maxDist, stopAtFirst, ignoreDynamic)
}

// LineOfSight reports whether the segment between two points is free of
// obstructions. Identical points see each other.
func (m *Map) LineOfSight(from, to types.Vec3, ignoreDynamic bool) bool {
	r, dist := geom.NewSegment(from, to)

	blocked := false
	m.tree.IntersectRay(r, func(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool {
		if m.exactTest(r, id, maxDist, stopAtFirst, ignoreDynamic) {
			blocked = true
			return true
		}
		return false
	}, &dist, true, ignoreDynamic)

	return !blocked
}

// ClosestHit casts a ray and returns the distance to the nearest hit within
// maxDist. It requires a collider able to narrow hit distances.
func (m *Map) ClosestHit(origin, dir types.Vec3, maxDist float32, ignoreDynamic bool) (float32, bool) {
	if m.collider == nil || maxDist <= 0 {
		return 0, false
	}

	r := geom.NewRay(origin, dir)
	dist := maxDist
	hit := false
	m.tree.IntersectRay(r, func(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool {
		if m.collider.IntersectRay(r, id, maxDist, stopAtFirst, ignoreDynamic) {
			hit = true
			return true
		}
		return false
	}, &dist, false, ignoreDynamic)

	if !hit {
		return 0, false
	}
	return dist, true
}

// RayCandidates casts a ray and collects the ids the collider confirms, in
// front-to-back traversal order. Without a collider every candidate along
// the ray is reported, making this a broad-phase enumeration. With first
// set, collection stops at the first confirmed id.
func (m *Map) RayCandidates(origin, dir types.Vec3, maxDist float32, first, ignoreDynamic bool) []uint32 {
	if maxDist <= 0 {
		return nil
	}

	r := geom.NewRay(origin, dir)
	dist := maxDist
	var ids []uint32
	m.tree.IntersectRay(r, func(r geom.Ray, id uint32, maxDist *float32, stopAtFirst, ignoreDynamic bool) bool {
		if !m.exactTest(r, id, maxDist, stopAtFirst, ignoreDynamic) {
			return false
		}
		ids = append(ids, id)
		return true
	}, &dist, first, ignoreDynamic)
	return ids
}

// GroundHeight probes straight down from pos and returns the height of the
// closest surface within maxSearch below it.
func (m *Map) GroundHeight(pos types.Vec3, maxSearch float32) (float32, bool) {
	dist, ok := m.ClosestHit(pos, types.XYZ(0, -1, 0), maxSearch, false)
	if !ok {
		return 0, false
	}
	return pos[1] - dist, true
}

// ObjectsAt accumulates the ids of every object whose bounding region
// contains the point.
func (m *Map) ObjectsAt(p types.Vec3) []uint32 {
	var ids []uint32
	m.tree.IntersectPoint(p, func(_ types.Vec3, id uint32) {
		ids = append(ids, id)
	})
	return ids
}

// ObjectsInBox collects ids of objects whose bounding regions overlap the
// box into out, returning the number written and whether anything matched.
// This is a broad phase; results are candidates, not exact overlaps.
func (m *Map) ObjectsInBox(box geom.AABB, out []uint32) (int, bool) {
	return m.tree.IntersectBox(box, out)
}
