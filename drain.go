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

import "iter"

// drainFrame is a node detached from the tree while a DrainIterator works
// below it.
type drainFrame[T comparable, S Scalar] struct {
	*node[T, S]
	pos     int // next child to examine
	removed int // elements removed from this subtree so far
}

const drainStackDepth = 6

// drainStack is a stack of frames. Stacks no deeper than drainStackDepth
// live in a fixed array and need no allocation.
type drainStack[T comparable, S Scalar] struct {
	a    [drainStackDepth]drainFrame[T, S]
	aLen int // -1 when using s
	s    []drainFrame[T, S]
}

func (ds *drainStack[T, S]) push(f drainFrame[T, S]) {
	if ds.aLen == -1 {
		ds.s = append(ds.s, f)
	} else if ds.aLen == len(ds.a) {
		ds.s = make([]drainFrame[T, S], ds.aLen+1, 2*ds.aLen)
		copy(ds.s, ds.a[:])
		ds.s[ds.aLen] = f
		ds.a = [drainStackDepth]drainFrame[T, S]{}
		ds.aLen = -1
	} else {
		ds.a[ds.aLen] = f
		ds.aLen++
	}
}

func (ds *drainStack[T, S]) pop() drainFrame[T, S] {
	if ds.aLen == -1 {
		f := ds.s[len(ds.s)-1]
		ds.s[len(ds.s)-1] = drainFrame[T, S]{}
		ds.s = ds.s[:len(ds.s)-1]
		return f
	}
	ds.aLen--
	f := ds.a[ds.aLen]
	ds.a[ds.aLen] = drainFrame[T, S]{}
	return f
}

// top returns the topmost frame, or nil if the stack is empty. The pointer
// is invalidated by the next push.
func (ds *drainStack[T, S]) top() *drainFrame[T, S] {
	if ds.aLen == -1 {
		if len(ds.s) == 0 {
			return nil
		}
		return &ds.s[len(ds.s)-1]
	}
	if ds.aLen == 0 {
		return nil
	}
	return &ds.a[ds.aLen-1]
}

func (ds *drainStack[T, S]) len() int {
	if ds.aLen == -1 {
		return len(ds.s)
	}
	return ds.aLen
}

// DrainIterator removes selected elements from an RTree one at a time as
// they are pulled with Next.
//
// While a DrainIterator is open it owns the tree: the tree reports no
// elements and any modification panics. Close hands the tree back holding
// exactly the elements that were not returned by Next, with envelopes
// recomputed and emptied nodes pruned. Close must be called unless Next has
// already reported exhaustion; calling it again is a no-op.
type DrainIterator[T comparable, S Scalar] struct {
	t           *RTree[T, S]
	sel         SelectionFunc[T, S]
	s           drainStack[T, S]
	originalLen int
}

// DrainWith returns a DrainIterator removing the elements selected by sel.
// It panics if another DrainIterator on t is still open.
func (t *RTree[T, S]) DrainWith(sel SelectionFunc[T, S]) *DrainIterator[T, S] {
	t.mustNotDrain()
	d := &DrainIterator[T, S]{
		t:           t,
		sel:         sel,
		originalLen: t.length,
	}
	d.s.push(drainFrame[T, S]{node: t.root})
	// The tree is left holding an empty root until the drain is over.
	t.root, t.length = t.newNode(), 0
	t.draining = true
	return d
}

// Drain returns a DrainIterator removing every element of the tree.
func (t *RTree[T, S]) Drain() *DrainIterator[T, S] {
	return t.DrainWith(SelectAll[T, S]{})
}

// DrainInEnvelope returns a DrainIterator removing every element whose
// envelope lies fully inside env.
func (t *RTree[T, S]) DrainInEnvelope(env Rect[S]) *DrainIterator[T, S] {
	return t.DrainWith(SelectInEnvelope[T, S]{Envelope: env, Of: t.envelope})
}

// DrainInEnvelopeIntersecting returns a DrainIterator removing every element
// whose envelope intersects env.
func (t *RTree[T, S]) DrainInEnvelopeIntersecting(env Rect[S]) *DrainIterator[T, S] {
	return t.DrainWith(SelectInEnvelopeIntersecting[T, S]{Envelope: env, Of: t.envelope})
}

// Next removes the next selected element from the tree and returns it. Once
// no selected element remains it hands the tree back and returns
// (zeroValue, false), as it does on every later call.
func (d *DrainIterator[T, S]) Next() (_ T, _ bool) {
	for {
		f := d.s.top()
		if f == nil {
			return
		}
		descended := false
		// A frame already scanned past its first slot had its region accepted.
		if f.pos > 0 || d.sel.AcceptsRegion(f.envelope) {
			for f.pos < len(f.children) {
				c := f.children[f.pos]
				if !c.isLeaf() {
					// The last child moves into pos; it is examined once the
					// detached child is handed back.
					f.children.swapRemove(f.pos)
					d.s.push(drainFrame[T, S]{node: c.interior})
					descended = true
					break
				}
				if d.sel.AcceptsLeaf(c.item) {
					f.children.swapRemove(f.pos)
					f.removed++
					return c.item, true
				}
				f.pos++
			}
		}
		if descended {
			continue
		}
		if root, removed, ok := d.popFrame(true); ok {
			d.finish(root, removed)
			return
		}
	}
}

// popFrame pops the top frame, recomputes its envelope if anything was
// removed below it and hands it back to its parent frame, or drops it if it
// has no children left. When the popped frame is the root, it is returned
// with the total number of removed elements and ok set.
//
// With advance set, the handed back node is swapped into the parent's scan
// position and the scan moves past it; Close skips that since it does not
// scan again.
func (d *DrainIterator[T, S]) popFrame(advance bool) (root *node[T, S], removed int, ok bool) {
	f := d.s.pop()
	if f.removed > 0 {
		f.recalculateEnvelope(d.t.envelope)
	}
	parent := d.s.top()
	if parent == nil {
		return f.node, f.removed, true
	}
	parent.removed += f.removed
	if len(f.children) == 0 {
		d.t.freeNode(f.node)
		return nil, 0, false
	}
	parent.children.push(interiorChild(f.node))
	if advance {
		last := len(parent.children) - 1
		// pos may equal last, making the swap a no-op.
		parent.children[parent.pos], parent.children[last] = parent.children[last], parent.children[parent.pos]
		parent.pos++
	}
	return nil, 0, false
}

func (d *DrainIterator[T, S]) finish(root *node[T, S], removed int) {
	d.t.freeNode(d.t.root)
	d.t.root = root
	d.t.length = d.originalLen - removed
	d.t.draining = false
}

// Close stops the drain and hands the tree back. Elements not yet returned
// by Next stay in the tree.
func (d *DrainIterator[T, S]) Close() {
	for d.s.len() > 0 {
		if root, removed, ok := d.popFrame(false); ok {
			d.finish(root, removed)
		}
	}
}

// All returns an iterator over the remaining selected elements, removing
// each as it is yielded. The drain is closed when the loop ends, whether by
// exhaustion or by break.
func (d *DrainIterator[T, S]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer d.Close()
		for {
			item, ok := d.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// Each calls iterator with each remaining selected element, removing it from
// the tree first, until iterator returns false or the selection is
// exhausted. The drain is closed before Each returns.
func (d *DrainIterator[T, S]) Each(iterator ItemIterator[T]) {
	defer d.Close()
	for item, ok := d.Next(); ok; item, ok = d.Next() {
		if !iterator(item) {
			return
		}
	}
}
