package bih

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/achilleasa/go-sightline/geom"
	"github.com/achilleasa/go-sightline/types"
)

// ReadTree decodes an index from its fixed little-endian layout: six bounds
// floats, a node-word count plus that many raw node words, and an object
// count plus that many raw ids. Either a fully usable tree or an error is
// returned; a tree is never partially populated.
//
// Structural invariants (child references in range and pointing forward,
// leaf spans inside the object array) are verified here once so traversal
// code never re-checks them.
func ReadTree(r io.Reader) (*Tree, error) {
	var rawBounds [6]float32
	if err := binary.Read(r, binary.LittleEndian, &rawBounds); err != nil {
		return nil, fmt.Errorf("bih: failed to read bounds: %v", err)
	}

	var wordCount uint32
	if err := binary.Read(r, binary.LittleEndian, &wordCount); err != nil {
		return nil, fmt.Errorf("bih: failed to read node-word count: %v", err)
	}
	if wordCount%nodeWordLen != 0 {
		return nil, fmt.Errorf("bih: node-word count %d is not a multiple of %d", wordCount, nodeWordLen)
	}
	words, err := readWordSection(r, wordCount, "node words")
	if err != nil {
		return nil, err
	}

	var objCount uint32
	if err := binary.Read(r, binary.LittleEndian, &objCount); err != nil {
		return nil, fmt.Errorf("bih: failed to read object count: %v", err)
	}
	objects, err := readWordSection(r, objCount, "object ids")
	if err != nil {
		return nil, err
	}

	t := &Tree{
		bounds: geom.AABB{
			Min: types.Vec3{rawBounds[0], rawBounds[1], rawBounds[2]},
			Max: types.Vec3{rawBounds[3], rawBounds[4], rawBounds[5]},
		},
		nodes:   make([]node, 0, wordCount/nodeWordLen),
		objects: objects,
	}
	for w := uint32(0); w < wordCount; w += nodeWordLen {
		t.nodes = append(t.nodes, unpackNode(words[w], words[w+1], words[w+2]))
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	// Interior child references become node indices now that alignment is
	// verified; the writer converts them back.
	for i := range t.nodes {
		if t.nodes[i].kind != leafNode {
			t.nodes[i].offset /= nodeWordLen
		}
	}

	t.remap = identityRemap(maxRawID(objects))
	return t, nil
}

// Word sections are read in bounded chunks; count fields never size an
// allocation directly.
const maxSectionChunk = 1 << 16

// readWordSection decodes count little-endian words from r. The count is a
// claim made by the stream, so the result grows as data actually arrives and
// an overstated count on a truncated stream fails with a read error instead
// of one huge up-front allocation.
func readWordSection(r io.Reader, count uint32, section string) ([]uint32, error) {
	chunk := count
	if chunk > maxSectionChunk {
		chunk = maxSectionChunk
	}
	out := make([]uint32, 0, chunk)
	buf := make([]uint32, chunk)
	for remaining := count; remaining > 0; remaining -= uint32(len(buf)) {
		if remaining < uint32(len(buf)) {
			buf = buf[:remaining]
		}
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			// A section that ends between chunks is still truncated
			// mid-section.
			if err == io.EOF && len(out) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("bih: failed to read %s: %v", section, err)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// validate checks the structural invariants of freshly unpacked nodes, whose
// interior offsets are still in on-disk word form.
func (t *Tree) validate() error {
	nodeCount := uint32(len(t.nodes))
	objCount := uint32(len(t.objects))

	for i := range t.nodes {
		n := &t.nodes[i]

		if n.kind == leafNode {
			if n.emptyCut {
				return fmt.Errorf("bih: node %d is a leaf with the empty-space-cut flag set", i)
			}
			if n.offset > objCount || n.count > objCount-n.offset {
				return fmt.Errorf("bih: node %d has an out-of-range leaf span [%d, %d) with %d objects",
					i, n.offset, uint64(n.offset)+uint64(n.count), objCount)
			}
			continue
		}

		if n.offset%nodeWordLen != 0 {
			return fmt.Errorf("bih: node %d has a misaligned child offset %d", i, n.offset)
		}
		child := n.offset / nodeWordLen
		// Builders allocate children after their parent; a reference that
		// does not point forward would make descent loop.
		if child <= uint32(i) {
			return fmt.Errorf("bih: node %d has a non-forward child reference %d", i, child)
		}
		width := uint32(1)
		if !n.emptyCut {
			width = 2
		}
		if child+width > nodeCount {
			return fmt.Errorf("bih: node %d has an out-of-range child index %d with %d nodes", i, child, nodeCount)
		}
	}
	return nil
}

// maxRawID scans the object array for the largest stored id.
func maxRawID(objects []uint32) (uint32, bool) {
	if len(objects) == 0 {
		return 0, false
	}
	max := uint32(0)
	for _, id := range objects {
		if id > max {
			max = id
		}
	}
	return max, true
}
