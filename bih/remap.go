package bih

// InvalidObjectIndex is reported for raw ids that fall outside the mapped
// id space. Traversals drop such ids before they reach a callback.
const InvalidObjectIndex = ^uint32(0)

// remapTable converts the raw ids stored in leaves into the dense id space
// handed to callbacks. It is a tagged choice between two modes:
//
//   - disabled: raw ids are already dense; lookups bounds-check against the
//     primitive count and pass the id through.
//   - enabled: raw ids come from a sparse space; lookups go through an
//     explicit translation table.
//
// The default binary format stores dense ids, so the reader always builds
// the disabled form. The seam keeps id-space policy out of the traversal
// algorithms: they call lookup and skip invalid results, nothing more.
type remapTable struct {
	enabled bool

	// Size of the dense id space; the pass-through bound when disabled.
	count uint32

	// Raw id to dense id, sized to the maximum raw id plus one.
	table []uint32
}

// identityRemap builds the disabled pass-through form covering raw ids
// [0, maxRaw]. hasObjects distinguishes an empty id space from one holding
// the single id 0.
func identityRemap(maxRaw uint32, hasObjects bool) remapTable {
	if !hasObjects {
		return remapTable{}
	}
	table := make([]uint32, maxRaw+1)
	for i := range table {
		table[i] = uint32(i)
	}
	return remapTable{count: maxRaw + 1, table: table}
}

// lookup resolves a raw id or returns InvalidObjectIndex.
func (m *remapTable) lookup(raw uint32) uint32 {
	if !m.enabled {
		if raw >= m.count {
			return InvalidObjectIndex
		}
		return raw
	}
	if raw >= uint32(len(m.table)) {
		return InvalidObjectIndex
	}
	return m.table[raw]
}
