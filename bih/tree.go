package bih

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/achilleasa/go-sightline/geom"
	"github.com/olekukonko/tablewriter"
)

// Tree is a loaded bounding interval hierarchy. It is populated exactly once
// by the reader and immutable afterwards, so any number of goroutines may
// query it concurrently without locking.
type Tree struct {
	bounds  geom.AABB
	nodes   []node
	objects []uint32
	remap   remapTable
}

// Bounds returns the box enclosing every indexed primitive.
func (t *Tree) Bounds() geom.AABB {
	return t.bounds
}

// PrimitiveCount returns the size of the dense id space reported to
// callbacks.
func (t *Tree) PrimitiveCount() uint32 {
	return t.remap.count
}

// UsesRemap reports whether leaf ids go through a translation table rather
// than the bounds-checked pass-through.
func (t *Tree) UsesRemap() bool {
	return t.remap.enabled
}

// MapObjectIndex resolves a raw leaf-stored id into the dense id space,
// returning InvalidObjectIndex for ids outside it. All traversals route leaf
// ids through this exact mapping.
func (t *Tree) MapObjectIndex(raw uint32) uint32 {
	return t.remap.lookup(raw)
}

// treeCensus aggregates the per-kind node counts reported by Stats.
type treeCensus struct {
	splits     [3]int
	emptyCuts  int
	leaves     int
	emptyLeafs int
	maxLeaf    uint32
	depth      int
}

func (t *Tree) census() treeCensus {
	var c treeCensus
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.kind == leafNode {
			c.leaves++
			if n.count == 0 {
				c.emptyLeafs++
			}
			if n.count > c.maxLeaf {
				c.maxLeaf = n.count
			}
			continue
		}
		c.splits[n.kind]++
		if n.emptyCut {
			c.emptyCuts++
		}
	}
	c.depth = t.reachableDepth()
	return c
}

// reachableDepth walks the tree from the root and returns the deepest level
// visited. Decode-time validation guarantees child references point forward,
// so the walk terminates.
func (t *Tree) reachableDepth() int {
	if len(t.nodes) == 0 {
		return 0
	}

	type visit struct {
		node  uint32
		depth int
	}
	pending := []visit{{node: 0, depth: 1}}
	max := 0
	for len(pending) > 0 {
		v := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if v.depth > max {
			max = v.depth
		}
		n := &t.nodes[v.node]
		if n.kind == leafNode {
			continue
		}
		pending = append(pending, visit{node: n.offset, depth: v.depth + 1})
		if !n.emptyCut {
			pending = append(pending, visit{node: n.offset + 1, depth: v.depth + 1})
		}
	}
	return max
}

// Stats builds a tabular representation of index statistics.
func (t *Tree) Stats() string {
	c := t.census()
	remapMode := "pass-through"
	if t.remap.enabled {
		remapMode = "table"
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Section", "Detail", "Value"})
	table.Append([]string{"Nodes", "total", fmt.Sprintf("%d (%s)", len(t.nodes), fmtSize(t.nodes))})
	table.Append([]string{"", "x splits", fmt.Sprintf("%d", c.splits[splitX])})
	table.Append([]string{"", "y splits", fmt.Sprintf("%d", c.splits[splitY])})
	table.Append([]string{"", "z splits", fmt.Sprintf("%d", c.splits[splitZ])})
	table.Append([]string{"", "empty-space cuts", fmt.Sprintf("%d", c.emptyCuts)})
	table.Append([]string{"", "leaves", fmt.Sprintf("%d (%d empty)", c.leaves, c.emptyLeafs)})
	table.Append([]string{"", "reachable depth", fmt.Sprintf("%d", c.depth)})
	table.Append([]string{"Objects", "leaf slots", fmt.Sprintf("%d (%s)", len(t.objects), fmtSize(t.objects))})
	table.Append([]string{"", "largest leaf", fmt.Sprintf("%d", c.maxLeaf)})
	table.Append([]string{"Primitives", "dense ids", fmt.Sprintf("%d", t.remap.count)})
	table.Append([]string{"", "remap", remapMode})
	table.Append([]string{"Bounds", "min", fmt.Sprintf("%.3f %.3f %.3f", t.bounds.Min[0], t.bounds.Min[1], t.bounds.Min[2])})
	table.Append([]string{"", "max", fmt.Sprintf("%.3f %.3f %.3f", t.bounds.Max[0], t.bounds.Max[1], t.bounds.Max[2])})
	table.Render()
	return buf.String()
}

// Sum the space used by a set of slices and format it with the appropriate
// byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%3.1f mb", totalBytes/1e6)
}
