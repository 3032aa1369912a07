package bih

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteTo serializes the index in the same fixed little-endian layout the
// reader consumes, implementing io.WriterTo. Writing a tree and reloading it
// reproduces the tree exactly; leaf padding words are emitted as zero.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	rawBounds := [6]float32{
		t.bounds.Min[0], t.bounds.Min[1], t.bounds.Min[2],
		t.bounds.Max[0], t.bounds.Max[1], t.bounds.Max[2],
	}
	if err := binary.Write(cw, binary.LittleEndian, rawBounds); err != nil {
		return cw.n, fmt.Errorf("bih: failed to write bounds: %v", err)
	}

	words := make([]uint32, 0, len(t.nodes)*nodeWordLen)
	for i := range t.nodes {
		n := t.nodes[i]
		if n.kind != leafNode {
			// Child references go back to on-disk word offsets.
			n.offset *= nodeWordLen
		}
		w0, w1, w2 := packNode(n)
		words = append(words, w0, w1, w2)
	}

	if err := binary.Write(cw, binary.LittleEndian, uint32(len(words))); err != nil {
		return cw.n, fmt.Errorf("bih: failed to write node-word count: %v", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, words); err != nil {
		return cw.n, fmt.Errorf("bih: failed to write node words: %v", err)
	}

	if err := binary.Write(cw, binary.LittleEndian, uint32(len(t.objects))); err != nil {
		return cw.n, fmt.Errorf("bih: failed to write object count: %v", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, t.objects); err != nil {
		return cw.n, fmt.Errorf("bih: failed to write object ids: %v", err)
	}

	return cw.n, nil
}

// countingWriter tracks bytes written so WriteTo can honor the io.WriterTo
// contract on partial failures.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
