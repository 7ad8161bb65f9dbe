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

import "container/heap"

// locate calls iter for every element below n selected by sel. It returns
// false if iter asked to stop.
func (n *node[T, S]) locate(sel SelectionFunc[T, S], iter ItemIterator[T]) bool {
	if !sel.AcceptsRegion(n.envelope) {
		return true
	}
	for _, c := range n.children {
		if c.isLeaf() {
			if sel.AcceptsLeaf(c.item) && !iter(c.item) {
				return false
			}
			continue
		}
		if !c.interior.locate(sel, iter) {
			return false
		}
	}
	return true
}

// LocateWith calls the iterator for every element selected by sel, until
// iterator returns false.
func (t *RTree[T, S]) LocateWith(sel SelectionFunc[T, S], iterator ItemIterator[T]) {
	t.root.locate(sel, iterator)
}

// Iterate calls the iterator for every element in the tree, until iterator
// returns false. The order is unspecified.
func (t *RTree[T, S]) Iterate(iterator ItemIterator[T]) {
	t.LocateWith(SelectAll[T, S]{}, iterator)
}

// LocateInEnvelope calls the iterator for every element whose envelope lies
// fully inside env, until iterator returns false.
func (t *RTree[T, S]) LocateInEnvelope(env Rect[S], iterator ItemIterator[T]) {
	t.LocateWith(SelectInEnvelope[T, S]{Envelope: env, Of: t.envelope}, iterator)
}

// LocateInEnvelopeIntersecting calls the iterator for every element whose
// envelope intersects env, until iterator returns false.
func (t *RTree[T, S]) LocateInEnvelopeIntersecting(env Rect[S], iterator ItemIterator[T]) {
	t.LocateWith(SelectInEnvelopeIntersecting[T, S]{Envelope: env, Of: t.envelope}, iterator)
}

// LocateAtPoint returns an element whose envelope contains p, or
// (zeroValue, false) if there is none.
func (t *RTree[T, S]) LocateAtPoint(p Point[S]) (out T, found bool) {
	t.LocateWith(SelectAtPoint[T, S]{Point: p, Of: t.envelope}, func(item T) bool {
		out, found = item, true
		return false
	})
	return out, found
}

// Get looks for an element equal to key in the tree, returning it. It
// returns (zeroValue, false) if unable to find that element.
func (t *RTree[T, S]) Get(key T) (out T, found bool) {
	t.LocateWith(NewSelectEqual(key, t.envelope), func(item T) bool {
		out, found = item, true
		return false
	})
	return out, found
}

// Contains returns true if an element equal to item is in the tree.
func (t *RTree[T, S]) Contains(item T) bool {
	_, ok := t.Get(item)
	return ok
}

// Nearest returns the element whose envelope is closest to p, or
// (zeroValue, false) if the tree is empty. Ties are broken arbitrarily.
func (t *RTree[T, S]) Nearest(p Point[S]) (_ T, _ bool) {
	queue := nearestQueue[T, S]{}
	enqueue := func(n *node[T, S]) {
		for _, c := range n.children {
			heap.Push(&queue, nearestEntry[T, S]{c: c, dist: c.envelope(t.envelope).MinDistance2(p)})
		}
	}
	enqueue(t.root)
	for queue.Len() > 0 {
		nearest := heap.Pop(&queue).(nearestEntry[T, S])
		if nearest.c.isLeaf() {
			return nearest.c.item, true
		}
		enqueue(nearest.c.interior)
	}
	return
}

type nearestEntry[T comparable, S Scalar] struct {
	c    child[T, S]
	dist float64
}

// nearestQueue orders children by their distance from the query point.
type nearestQueue[T comparable, S Scalar] []nearestEntry[T, S]

func (q nearestQueue[T, S]) Len() int           { return len(q) }
func (q nearestQueue[T, S]) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q nearestQueue[T, S]) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *nearestQueue[T, S]) Push(x any) {
	*q = append(*q, x.(nearestEntry[T, S]))
}

func (q *nearestQueue[T, S]) Pop() any {
	old := *q
	e := old[len(old)-1]
	old[len(old)-1] = nearestEntry[T, S]{}
	*q = old[:len(old)-1]
	return e
}
