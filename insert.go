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

import "math"

// Insert adds the given element to the tree. Equal elements may be inserted
// more than once; each copy is a separate element.
func (t *RTree[T, S]) Insert(item T) {
	t.mustNotDrain()
	if second := t.root.insert(t, item, t.envelope(item)); second != nil {
		oldroot := t.root
		t.root = t.newNode()
		t.root.children.push(interiorChild(oldroot))
		t.root.children.push(interiorChild(second))
		t.root.envelope = oldroot.envelope.Merge(second.envelope)
	}
	t.length++
}

// insert inserts an element into the subtree rooted at this node. If the node
// overflows it is split and the new sibling, which the caller must adopt, is
// returned.
func (n *node[T, S]) insert(t *RTree[T, S], item T, env Rect[S]) *node[T, S] {
	n.envelope = n.envelope.Merge(env)
	if n.leafLevel() {
		n.children.push(leafChild[T, S](item))
	} else {
		i := n.chooseSubtree(env)
		if second := n.children[i].interior.insert(t, item, env); second != nil {
			n.children.push(interiorChild(second))
		}
	}
	if len(n.children) <= t.params.MaxChildren {
		return nil
	}
	return n.split(t)
}

// chooseSubtree picks the child whose envelope needs the least enlargement
// to cover env. Area is used as a tie breaker.
func (n *node[T, S]) chooseSubtree(env Rect[S]) int {
	best := 0
	bestDelta := n.children[0].interior.envelope.Enlargement(env)
	for i := 1; i < len(n.children); i++ {
		childEnv := n.children[i].interior.envelope
		delta := childEnv.Enlargement(env)
		if delta < bestDelta ||
			(delta == bestDelta && childEnv.Area() < n.children[best].interior.envelope.Area()) {
			best, bestDelta = i, delta
		}
	}
	return best
}

// splitEntry pairs a child with its envelope while a node is being split.
type splitEntry[T comparable, S Scalar] struct {
	c   child[T, S]
	env Rect[S]
}

// split divides the children of n between n and a new sibling using the
// quadratic split, keeping at least MinChildren in each. The sibling is
// returned; both envelopes are updated.
func (n *node[T, S]) split(t *RTree[T, S]) *node[T, S] {
	rest := make([]splitEntry[T, S], len(n.children))
	for i, c := range n.children {
		rest[i] = splitEntry[T, S]{c: c, env: c.envelope(t.envelope)}
	}
	n.children.truncate(0)
	second := t.newNode()

	a, b := pickSeeds(rest)
	// Remove the later index first so the earlier one stays put.
	seedB := swapRemoveEntry(&rest, b)
	seedA := swapRemoveEntry(&rest, a)
	n.children.push(seedA.c)
	second.children.push(seedB.c)
	envA, envB := seedA.env, seedB.env

	minChildren := t.params.MinChildren
	for len(rest) > 0 {
		if len(n.children)+len(rest) <= minChildren {
			for _, e := range rest {
				n.children.push(e.c)
				envA = envA.Merge(e.env)
			}
			break
		}
		if len(second.children)+len(rest) <= minChildren {
			for _, e := range rest {
				second.children.push(e.c)
				envB = envB.Merge(e.env)
			}
			break
		}
		i, toA := pickNext(rest, envA, envB, len(n.children), len(second.children))
		e := swapRemoveEntry(&rest, i)
		if toA {
			n.children.push(e.c)
			envA = envA.Merge(e.env)
		} else {
			second.children.push(e.c)
			envB = envB.Merge(e.env)
		}
	}
	n.envelope, second.envelope = envA, envB
	return second
}

func swapRemoveEntry[T comparable, S Scalar](s *[]splitEntry[T, S], index int) splitEntry[T, S] {
	last := len(*s) - 1
	out := (*s)[index]
	(*s)[index] = (*s)[last]
	*s = (*s)[:last]
	return out
}

// pickSeeds returns the pair of entries that would waste the most area if
// they were put in the same node, with a < b.
func pickSeeds[T comparable, S Scalar](entries []splitEntry[T, S]) (a, b int) {
	a, b = 0, 1
	worst := math.Inf(-1)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			waste := entries[i].env.Merge(entries[j].env).Area() -
				entries[i].env.Area() - entries[j].env.Area()
			if waste > worst {
				worst, a, b = waste, i, j
			}
		}
	}
	return a, b
}

// pickNext returns the entry with the strongest preference for one of the two
// groups, and whether that group is the first.
func pickNext[T comparable, S Scalar](entries []splitEntry[T, S], envA, envB Rect[S], lenA, lenB int) (int, bool) {
	best := 0
	bestDiff := math.Inf(-1)
	var bestA, bestB float64
	for i, e := range entries {
		dA := envA.Enlargement(e.env)
		dB := envB.Enlargement(e.env)
		if diff := math.Abs(dA - dB); diff > bestDiff {
			best, bestDiff, bestA, bestB = i, diff, dA, dB
		}
	}
	switch {
	case bestA != bestB:
		return best, bestA < bestB
	case envA.Area() != envB.Area():
		return best, envA.Area() < envB.Area()
	}
	return best, lenA <= lenB
}
