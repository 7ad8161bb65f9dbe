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

// SelectionFunc picks elements out of a tree for location or removal.
//
// AcceptsRegion is asked about the envelope of an interior node before its
// subtree is examined; returning false skips the whole subtree. AcceptsLeaf
// is asked about each element reached. An element is selected only if every
// enclosing region was accepted and AcceptsLeaf returns true, so AcceptsRegion
// must return true for any envelope that may contain a selected element.
type SelectionFunc[T any, S Scalar] interface {
	AcceptsRegion(envelope Rect[S]) bool
	AcceptsLeaf(item T) bool
}

// SelectAll selects every element in the tree.
type SelectAll[T any, S Scalar] struct{}

func (SelectAll[T, S]) AcceptsRegion(Rect[S]) bool { return true }
func (SelectAll[T, S]) AcceptsLeaf(T) bool         { return true }

// SelectByFunc adapts a pair of functions to a SelectionFunc. A nil Region
// accepts every region; a nil Leaf accepts every element.
type SelectByFunc[T any, S Scalar] struct {
	Region func(envelope Rect[S]) bool
	Leaf   func(item T) bool
}

func (f SelectByFunc[T, S]) AcceptsRegion(envelope Rect[S]) bool {
	return f.Region == nil || f.Region(envelope)
}

func (f SelectByFunc[T, S]) AcceptsLeaf(item T) bool {
	return f.Leaf == nil || f.Leaf(item)
}

// SelectInEnvelope selects elements whose envelope lies fully inside Envelope.
type SelectInEnvelope[T any, S Scalar] struct {
	Envelope Rect[S]
	Of       EnvelopeFunc[T, S]
}

func (f SelectInEnvelope[T, S]) AcceptsRegion(envelope Rect[S]) bool {
	return f.Envelope.Intersects(envelope)
}

func (f SelectInEnvelope[T, S]) AcceptsLeaf(item T) bool {
	return f.Envelope.Contains(f.Of(item))
}

// SelectInEnvelopeIntersecting selects elements whose envelope intersects
// Envelope.
type SelectInEnvelopeIntersecting[T any, S Scalar] struct {
	Envelope Rect[S]
	Of       EnvelopeFunc[T, S]
}

func (f SelectInEnvelopeIntersecting[T, S]) AcceptsRegion(envelope Rect[S]) bool {
	return f.Envelope.Intersects(envelope)
}

func (f SelectInEnvelopeIntersecting[T, S]) AcceptsLeaf(item T) bool {
	return f.Envelope.Intersects(f.Of(item))
}

// SelectAtPoint selects elements whose envelope contains Point.
type SelectAtPoint[T any, S Scalar] struct {
	Point Point[S]
	Of    EnvelopeFunc[T, S]
}

func (f SelectAtPoint[T, S]) AcceptsRegion(envelope Rect[S]) bool {
	return envelope.ContainsPoint(f.Point)
}

func (f SelectAtPoint[T, S]) AcceptsLeaf(item T) bool {
	return f.Of(item).ContainsPoint(f.Point)
}

// SelectEqual selects elements equal to Item, only descending into regions
// that contain Item's envelope.
type SelectEqual[T comparable, S Scalar] struct {
	Item T
	Of   EnvelopeFunc[T, S]

	env    Rect[S]
	hasEnv bool
}

// NewSelectEqual returns a SelectEqual with the envelope of item computed
// once up front.
func NewSelectEqual[T comparable, S Scalar](item T, of EnvelopeFunc[T, S]) SelectEqual[T, S] {
	return SelectEqual[T, S]{Item: item, Of: of, env: of(item), hasEnv: true}
}

func (f SelectEqual[T, S]) itemEnvelope() Rect[S] {
	if f.hasEnv {
		return f.env
	}
	return f.Of(f.Item)
}

func (f SelectEqual[T, S]) AcceptsRegion(envelope Rect[S]) bool {
	return envelope.Contains(f.itemEnvelope())
}

func (f SelectEqual[T, S]) AcceptsLeaf(item T) bool {
	return item == f.Item
}
