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

// toRemove details how many elements a node.remove call takes out.
type toRemove int

const (
	removeFirst toRemove = iota // removes the first selected element found
	removeAll                   // removes every selected element
)

// remove removes selected elements from the subtree rooted at this node,
// appending them to out in the order they are found. Children left empty are
// pruned and returned to the freelist, and the envelope of every node that
// lost an element is recomputed on the way back up.
func (n *node[T, S]) remove(t *RTree[T, S], sel SelectionFunc[T, S], typ toRemove, out []T) []T {
	before := len(out)
	if !sel.AcceptsRegion(n.envelope) {
		return out
	}
	for i := 0; i < len(n.children); {
		c := n.children[i]
		if c.isLeaf() {
			if !sel.AcceptsLeaf(c.item) {
				i++
				continue
			}
			// The last child moves into slot i and is examined next.
			n.children.swapRemove(i)
			out = append(out, c.item)
			if typ == removeFirst {
				break
			}
			continue
		}
		found := len(out)
		out = c.interior.remove(t, sel, typ, out)
		if len(out) == found {
			i++
			continue
		}
		if len(c.interior.children) == 0 {
			n.children.swapRemove(i)
			t.freeNode(c.interior)
		} else {
			i++
		}
		if typ == removeFirst {
			break
		}
	}
	if len(out) > before {
		n.recalculateEnvelope(t.envelope)
	}
	return out
}

func (t *RTree[T, S]) removeItems(sel SelectionFunc[T, S], typ toRemove) []T {
	t.mustNotDrain()
	out := t.root.remove(t, sel, typ, nil)
	t.length -= len(out)
	return out
}

// RemoveWith removes the first element selected by sel, returning it. If no
// element is selected, returns (zeroValue, false) and leaves the tree as it
// was.
func (t *RTree[T, S]) RemoveWith(sel SelectionFunc[T, S]) (_ T, _ bool) {
	out := t.removeItems(sel, removeFirst)
	if len(out) == 0 {
		return
	}
	return out[0], true
}

// RemoveAllWith removes every element selected by sel and returns them in the
// order they were found.
func (t *RTree[T, S]) RemoveAllWith(sel SelectionFunc[T, S]) []T {
	return t.removeItems(sel, removeAll)
}

// Remove removes an element equal to the passed in item from the tree,
// returning it. If no such element exists, returns (zeroValue, false).
func (t *RTree[T, S]) Remove(item T) (T, bool) {
	return t.RemoveWith(NewSelectEqual(item, t.envelope))
}

// RemoveAtPoint removes an element whose envelope contains p, returning it.
// If no such element exists, returns (zeroValue, false).
func (t *RTree[T, S]) RemoveAtPoint(p Point[S]) (T, bool) {
	return t.RemoveWith(SelectAtPoint[T, S]{Point: p, Of: t.envelope})
}

// RemoveInEnvelope removes every element whose envelope lies fully inside
// env.
func (t *RTree[T, S]) RemoveInEnvelope(env Rect[S]) []T {
	return t.RemoveAllWith(SelectInEnvelope[T, S]{Envelope: env, Of: t.envelope})
}

// RemoveInEnvelopeIntersecting removes every element whose envelope
// intersects env.
func (t *RTree[T, S]) RemoveInEnvelopeIntersecting(env Rect[S]) []T {
	return t.RemoveAllWith(SelectInEnvelopeIntersecting[T, S]{Envelope: env, Of: t.envelope})
}
