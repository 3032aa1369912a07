package bih

import (
	"math"
	"testing"
)

func TestUnpackInteriorNode(t *testing.T) {
	// Split on y, children at word offset 9, planes 2.5 / 7.25.
	w0 := uint32(1)<<30 | 9
	w1 := math.Float32bits(2.5)
	w2 := math.Float32bits(7.25)

	n := unpackNode(w0, w1, w2)
	if n.kind != splitY {
		t.Fatalf("expected kind %d; got %d", splitY, n.kind)
	}
	if n.emptyCut {
		t.Fatal("expected empty-space-cut flag to be clear")
	}
	if n.offset != 9 {
		t.Fatalf("expected offset 9; got %d", n.offset)
	}
	if n.clip[0] != 2.5 || n.clip[1] != 7.25 {
		t.Fatalf("expected clip planes [2.5 7.25]; got %v", n.clip)
	}
}

func TestUnpackEmptyCutNode(t *testing.T) {
	w0 := uint32(2)<<30 | uint32(1)<<29 | 12
	n := unpackNode(w0, math.Float32bits(-1), math.Float32bits(4))
	if n.kind != splitZ {
		t.Fatalf("expected kind %d; got %d", splitZ, n.kind)
	}
	if !n.emptyCut {
		t.Fatal("expected empty-space-cut flag to be set")
	}
	if n.offset != 12 {
		t.Fatalf("expected offset 12; got %d", n.offset)
	}
	if n.clip[0] != -1 || n.clip[1] != 4 {
		t.Fatalf("expected clip planes [-1 4]; got %v", n.clip)
	}
}

func TestUnpackLeafNode(t *testing.T) {
	w0 := uint32(3)<<30 | 17
	n := unpackNode(w0, 5, 0xdeadbeef)
	if n.kind != leafNode {
		t.Fatalf("expected kind %d; got %d", leafNode, n.kind)
	}
	if n.offset != 17 {
		t.Fatalf("expected offset 17; got %d", n.offset)
	}
	if n.count != 5 {
		t.Fatalf("expected count 5; got %d", n.count)
	}
}

func TestPackNodeMatchesBitLayout(t *testing.T) {
	interior := node{kind: splitX, offset: 6, clip: [2]float32{1, 2}}
	w0, w1, w2 := packNode(interior)
	if w0 != 6 {
		t.Fatalf("expected interior word 0x%08x; got 0x%08x", 6, w0)
	}
	if w1 != math.Float32bits(1) || w2 != math.Float32bits(2) {
		t.Fatalf("expected raw plane bits; got 0x%08x 0x%08x", w1, w2)
	}

	cut := node{kind: splitY, emptyCut: true, offset: 3, clip: [2]float32{0, 0}}
	w0, _, _ = packNode(cut)
	want := uint32(1)<<30 | uint32(1)<<29 | 3
	if w0 != want {
		t.Fatalf("expected cut word 0x%08x; got 0x%08x", want, w0)
	}

	lf := node{kind: leafNode, offset: 8, count: 4}
	w0, w1, w2 = packNode(lf)
	if w0 != uint32(3)<<30|8 {
		t.Fatalf("expected leaf word 0x%08x; got 0x%08x", uint32(3)<<30|8, w0)
	}
	if w1 != 4 {
		t.Fatalf("expected leaf count word 4; got %d", w1)
	}
	if w2 != 0 {
		t.Fatalf("expected zero padding word; got 0x%08x", w2)
	}
}

func TestNodeCodecRoundTrip(t *testing.T) {
	nodes := []node{
		{kind: splitX, offset: 3, clip: [2]float32{-10.5, 3.25}},
		{kind: splitZ, emptyCut: true, offset: 21, clip: [2]float32{0, 0.125}},
		{kind: leafNode, offset: 1023, count: 9},
	}
	for i, n := range nodes {
		w0, w1, w2 := packNode(n)
		got := unpackNode(w0, w1, w2)
		if got != n {
			t.Fatalf("node %d: expected %+v after round trip; got %+v", i, n, got)
		}
	}
}

func TestPackNodeMasksOffset(t *testing.T) {
	// Offsets wider than 29 bits must not leak into the axis/flag bits.
	n := node{kind: splitX, offset: offsetMask + 1, clip: [2]float32{0, 0}}
	w0, _, _ := packNode(n)
	if w0>>29 != 0 {
		t.Fatalf("expected masked offset to leave tag bits clear; got 0x%08x", w0)
	}
}
