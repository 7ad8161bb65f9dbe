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

// Package rtree implements an in-memory R-Tree, a balanced spatial index over
// elements that each occupy an axis-aligned envelope.
//
// The tree is made of interior nodes, each holding a slice of children and a
// cached envelope equal to the union of its children's envelopes. A child is
// either another interior node or a leaf wrapping exactly one element. The
// mapping from element to envelope is supplied by the caller as an
// EnvelopeFunc, in the same way a B-Tree is handed its ordering function.
//
// Removal is driven by a SelectionFunc, which decides both whether the subtree
// below an interior node's envelope needs to be examined and whether a single
// element matches. RemoveWith removes the first match, RemoveAllWith removes
// every match, and DrainWith returns a DrainIterator that removes matches one
// at a time as the caller pulls them and can be abandoned at any point.
//
// Deletion never reinserts the children of underfull nodes. A node emptied by
// a removal is pruned from its parent, while a node that merely drops below
// MinChildren stays where it is. Repeated heavy deletion can therefore leave
// the tree less tightly packed than a classical R-Tree would, in exchange for
// removals that touch only the nodes on their search path.
//
// The order of children within a node carries no meaning, which lets every
// removal detach a child in constant time by swapping it with the last one.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
package rtree

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	DefaultFreeListSize = 32
)

// Params controls the fan-out of interior nodes.
type Params struct {
	// MinChildren is the fill insertion keeps every split node at. Removal
	// may leave nodes below it.
	MinChildren int
	// MaxChildren is the number of children above which a node is split.
	MaxChildren int
}

// DefaultParams are used by New.
var DefaultParams = Params{MinChildren: 3, MaxChildren: 6}

func (p Params) validate() {
	if p.MaxChildren < 2 {
		panic("rtree: MaxChildren must be at least 2")
	}
	if p.MinChildren < 1 || p.MinChildren > p.MaxChildren/2 {
		panic("rtree: MinChildren must be between 1 and MaxChildren/2")
	}
}

// FreeList represents a free list of interior nodes. By default each RTree
// has its own FreeList, but multiple RTrees can share the same FreeList.
// Two RTrees using the same freelist are safe for concurrent write access.
type FreeList[T comparable, S Scalar] struct {
	mu       sync.Mutex
	freelist []*node[T, S]
}

// NewFreeList creates a new free list.
// size is the maximum size of the returned free list.
func NewFreeList[T comparable, S Scalar](size int) *FreeList[T, S] {
	return &FreeList[T, S]{freelist: make([]*node[T, S], 0, size)}
}

func (f *FreeList[T, S]) newNode() (n *node[T, S]) {
	f.mu.Lock()
	index := len(f.freelist) - 1
	if index < 0 {
		f.mu.Unlock()
		return new(node[T, S])
	}
	n = f.freelist[index]
	f.freelist[index] = nil
	f.freelist = f.freelist[:index]
	f.mu.Unlock()
	return
}

func (f *FreeList[T, S]) freeNode(n *node[T, S]) (out bool) {
	f.mu.Lock()
	if len(f.freelist) < cap(f.freelist) {
		f.freelist = append(f.freelist, n)
		out = true
	}
	f.mu.Unlock()
	return
}

// ItemIterator allows callers of LocateWith and friends to iterate over the
// tree. When this function returns false, iteration will stop and the
// associated call will immediately return.
type ItemIterator[T any] func(item T) bool

// child is an entry of an interior node: either another interior node or a
// leaf holding one element.
type child[T comparable, S Scalar] struct {
	interior *node[T, S] // nil for leaves
	item     T
}

func leafChild[T comparable, S Scalar](item T) child[T, S] {
	return child[T, S]{item: item}
}

func interiorChild[T comparable, S Scalar](n *node[T, S]) child[T, S] {
	return child[T, S]{interior: n}
}

func (c child[T, S]) isLeaf() bool {
	return c.interior == nil
}

func (c child[T, S]) envelope(f EnvelopeFunc[T, S]) Rect[S] {
	if c.interior != nil {
		return c.interior.envelope
	}
	return f(c.item)
}

// children stores the children of an interior node.
type children[T comparable, S Scalar] []child[T, S]

// push appends a child.
func (s *children[T, S]) push(c child[T, S]) {
	*s = append(*s, c)
}

// swapRemove removes the child at index by moving the last child into its
// place. It does not preserve order.
func (s *children[T, S]) swapRemove(index int) child[T, S] {
	last := len(*s) - 1
	out := (*s)[index]
	(*s)[index] = (*s)[last]
	(*s)[last] = child[T, S]{}
	*s = (*s)[:last]
	return out
}

// truncate truncates this instance at index so that it contains only the
// first index children. index must be less than or equal to length.
func (s *children[T, S]) truncate(index int) {
	var toClear children[T, S]
	*s, toClear = (*s)[:index], (*s)[index:]
	for i := range toClear {
		toClear[i] = child[T, S]{}
	}
}

// node is an interior node in a tree.
//
// Once an operation completes, envelope equals the union of the envelopes of
// children, and children is empty only for the root of an empty tree.
type node[T comparable, S Scalar] struct {
	envelope Rect[S]
	children children[T, S]
}

// leafLevel reports whether n's children are leaves. An empty node counts as
// leaf level; only an empty root can be one.
func (n *node[T, S]) leafLevel() bool {
	return len(n.children) == 0 || n.children[0].isLeaf()
}

// recalculateEnvelope recomputes the cached envelope from the current
// children.
func (n *node[T, S]) recalculateEnvelope(f EnvelopeFunc[T, S]) {
	n.envelope = envelopeForChildren(n.children, f)
}

func envelopeForChildren[T comparable, S Scalar](cs children[T, S], f EnvelopeFunc[T, S]) Rect[S] {
	r := EmptyRect[S]()
	for _, c := range cs {
		r = r.Merge(c.envelope(f))
	}
	return r
}

// height returns the number of node levels below and including n.
func (n *node[T, S]) height() int {
	h := 1
	for !n.leafLevel() {
		n = n.children[0].interior
		h++
	}
	return h
}

// print is used for testing/debugging purposes.
func (n *node[T, S]) print(w io.Writer, level int) {
	fmt.Fprintf(w, "%sNODE:%v\n", strings.Repeat("  ", level), n.envelope)
	for _, c := range n.children {
		if c.isLeaf() {
			fmt.Fprintf(w, "%sLEAF:%v\n", strings.Repeat("  ", level+1), c.item)
			continue
		}
		c.interior.print(w, level+1)
	}
}

// RTree is a generic implementation of an R-Tree.
//
// RTree stores elements of type T, each occupying the envelope its
// EnvelopeFunc reports, and supports insertion, spatial queries and
// predicate-driven removal. Elements are identified by value: two equal
// elements are interchangeable for Contains and Remove.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type RTree[T comparable, S Scalar] struct {
	params   Params
	length   int
	root     *node[T, S]
	envelope EnvelopeFunc[T, S]
	freelist *FreeList[T, S]
	// draining is set while a DrainIterator owns root and length.
	draining bool
}

// New creates a new, empty R-Tree with DefaultParams.
func New[T comparable, S Scalar](envelope EnvelopeFunc[T, S]) *RTree[T, S] {
	return NewWithParams(DefaultParams, envelope)
}

// NewPoints creates a new, empty R-Tree storing bare points.
func NewPoints[S Scalar]() *RTree[Point[S], S] {
	return New[Point[S], S](PointEnvelope[S])
}

// NewWithParams creates a new, empty R-Tree with the given node fan-out.
//
// It panics if params are invalid.
func NewWithParams[T comparable, S Scalar](params Params, envelope EnvelopeFunc[T, S]) *RTree[T, S] {
	return NewWithFreeList(params, envelope, NewFreeList[T, S](DefaultFreeListSize))
}

// NewWithFreeList creates a new, empty R-Tree that uses the given node free
// list.
func NewWithFreeList[T comparable, S Scalar](params Params, envelope EnvelopeFunc[T, S], f *FreeList[T, S]) *RTree[T, S] {
	params.validate()
	if envelope == nil {
		panic("rtree: nil EnvelopeFunc")
	}
	t := &RTree[T, S]{
		params:   params,
		envelope: envelope,
		freelist: f,
	}
	t.root = t.newNode()
	return t
}

func (t *RTree[T, S]) newNode() (n *node[T, S]) {
	n = t.freelist.newNode()
	n.envelope = EmptyRect[S]()
	return
}

func (t *RTree[T, S]) freeNode(n *node[T, S]) {
	// clear to allow GC
	n.children.truncate(0)
	n.envelope = Rect[S]{}
	t.freelist.freeNode(n)
}

// mustNotDrain guards every mutation: a live DrainIterator owns the tree.
func (t *RTree[T, S]) mustNotDrain() {
	if t.draining {
		panic("rtree: tree modified while a DrainIterator is open")
	}
}

// Params returns the fan-out configuration of the tree.
func (t *RTree[T, S]) Params() Params {
	return t.params
}

// Len returns the number of elements currently in the tree.
func (t *RTree[T, S]) Len() int {
	return t.length
}

// Height returns the number of interior node levels in the tree. An empty
// tree has height 1.
func (t *RTree[T, S]) Height() int {
	return t.root.height()
}

// Envelope returns the envelope enclosing every element in the tree, or the
// empty envelope if there are none.
func (t *RTree[T, S]) Envelope() Rect[S] {
	return t.root.envelope
}

// Clear removes all elements from the tree. If addNodesToFreelist is true,
// t's nodes are added to its freelist as part of this call, until the
// freelist is full. Otherwise, the root node is simply dereferenced and the
// subtree left to Go's normal GC processes.
func (t *RTree[T, S]) Clear(addNodesToFreelist bool) {
	t.mustNotDrain()
	old := t.root
	t.root, t.length = t.newNode(), 0
	if addNodesToFreelist {
		t.reset(old)
	}
}

// reset returns a subtree to the freelist. It breaks out immediately if the
// freelist is full, since the only benefit of iterating is to fill that
// freelist up. Returns true if parent reset call should continue.
func (t *RTree[T, S]) reset(n *node[T, S]) bool {
	for _, c := range n.children {
		if c.isLeaf() {
			break
		}
		if !t.reset(c.interior) {
			return false
		}
	}
	n.children.truncate(0)
	n.envelope = Rect[S]{}
	return t.freelist.freeNode(n)
}

// print writes the structure of the tree for debugging.
func (t *RTree[T, S]) print(w io.Writer) {
	t.root.print(w, 0)
}
