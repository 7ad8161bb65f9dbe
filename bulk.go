// Copyright 2014-2022 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rtree

import (
	"cmp"
	"math"
	"slices"
)

type bulkEntry[T comparable, S Scalar] struct {
	item   T
	env    Rect[S]
	cx, cy float64
}

// BulkLoad creates a tree holding items, packed with the sort-tile-recursive
// algorithm. This is considerably faster than inserting the items one by one
// and yields a tree with less overlap between nodes.
//
// It panics if params are invalid.
func BulkLoad[T comparable, S Scalar](params Params, envelope EnvelopeFunc[T, S], items []T) *RTree[T, S] {
	t := NewWithParams(params, envelope)
	if len(items) == 0 {
		return t
	}
	entries := make([]bulkEntry[T, S], len(items))
	for i, item := range items {
		env := envelope(item)
		cx, cy := env.Center()
		entries[i] = bulkEntry[T, S]{item: item, env: env, cx: cx, cy: cy}
	}
	depth := 1
	for capacity := params.MaxChildren; capacity < len(items); capacity *= params.MaxChildren {
		depth++
	}
	t.freeNode(t.root)
	t.root = t.bulkLoad(entries, depth)
	t.length = len(items)
	return t
}

// BulkLoadPoints creates a tree holding the given points with DefaultParams.
func BulkLoadPoints[S Scalar](points []Point[S]) *RTree[Point[S], S] {
	return BulkLoad(DefaultParams, PointEnvelope[S], points)
}

// bulkLoad builds a subtree of the given depth over entries, which must not
// hold more than MaxChildren^depth of them.
func (t *RTree[T, S]) bulkLoad(entries []bulkEntry[T, S], depth int) *node[T, S] {
	n := t.newNode()
	if depth == 1 {
		for _, e := range entries {
			n.children.push(leafChild[T, S](e.item))
			n.envelope = n.envelope.Merge(e.env)
		}
		return n
	}
	perChild := 1
	for i := 1; i < depth; i++ {
		perChild *= t.params.MaxChildren
	}
	numChildren := (len(entries) + perChild - 1) / perChild
	numSlabs := int(math.Ceil(math.Sqrt(float64(numChildren))))
	slabSize := perChild * ((numChildren + numSlabs - 1) / numSlabs)

	slices.SortFunc(entries, func(a, b bulkEntry[T, S]) int { return cmp.Compare(a.cx, b.cx) })
	for len(entries) > 0 {
		slab := entries[:min(slabSize, len(entries))]
		entries = entries[len(slab):]
		slices.SortFunc(slab, func(a, b bulkEntry[T, S]) int { return cmp.Compare(a.cy, b.cy) })
		for len(slab) > 0 {
			chunk := slab[:min(perChild, len(slab))]
			slab = slab[len(chunk):]
			c := t.bulkLoad(chunk, depth-1)
			n.children.push(interiorChild(c))
			n.envelope = n.envelope.Merge(c.envelope)
		}
	}
	return n
}
