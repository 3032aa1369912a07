// Package bih implements a bounding interval hierarchy: a spatial index
// answering ray, point and box queries against a pre-built set of bounded
// primitives. Indexes are produced by an external builder and consumed here
// through a fixed little-endian binary layout.
package bih

import "math"

// Node kinds. The numeric values of the split kinds match the axis they
// partition (0 = x, 1 = y, 2 = z) as well as the on-disk axis selector, so
// traversal code can index vectors with the kind directly.
type nodeKind uint32

const (
	splitX nodeKind = iota
	splitY
	splitZ
	leafNode
)

// On disk every node is a group of three 32-bit words:
//
//	word 0: bits[31:30] axis selector (0/1/2 split axis, 3 leaf)
//	        bit[29]     empty-space-cut flag
//	        bits[28:0]  offset
//	word 1: left clip plane as raw float bits, or the leaf object count
//	word 2: right clip plane as raw float bits, or unused for a leaf
//
// For interior nodes the offset addresses the first word of the left child
// (the right child follows three words later); an empty-space-cut node has a
// single child there and its two planes delimit the kept interval. For a
// leaf the offset is the first slot in the object array.
//
// In memory the same information is held unpacked. Interior offsets are
// node indices rather than word offsets; the reader and writer convert
// between the two forms so no traversal code touches word arithmetic.
type node struct {
	kind     nodeKind
	emptyCut bool
	offset   uint32

	// Clip planes for interior nodes: clip[0] bounds the left child from
	// above, clip[1] bounds the right child from below. Indexing with the
	// ray's direction sign picks the near plane.
	clip [2]float32

	// Object count for leaves.
	count uint32
}

const (
	axisShift    = 30
	emptyCutFlag = uint32(1) << 29
	offsetMask   = uint32(1)<<29 - 1

	// Words per serialized node.
	nodeWordLen = 3
)

// unpackNode decodes one raw word group. Offsets are returned exactly as
// stored (word offsets for interior nodes); the caller converts and
// validates them.
func unpackNode(w0, w1, w2 uint32) node {
	n := node{
		kind:     nodeKind(w0 >> axisShift),
		emptyCut: w0&emptyCutFlag != 0,
		offset:   w0 & offsetMask,
	}
	if n.kind == leafNode {
		n.count = w1
	} else {
		n.clip[0] = math.Float32frombits(w1)
		n.clip[1] = math.Float32frombits(w2)
	}
	return n
}

// packNode is the inverse of unpackNode. The offset must already be in its
// on-disk form (a word offset for interior nodes). Leaves have no second
// companion value; the padding word is emitted as zero.
func packNode(n node) (uint32, uint32, uint32) {
	w0 := uint32(n.kind)<<axisShift | n.offset&offsetMask
	if n.emptyCut {
		w0 |= emptyCutFlag
	}
	if n.kind == leafNode {
		return w0, n.count, 0
	}
	return w0, math.Float32bits(n.clip[0]), math.Float32bits(n.clip[1])
}
