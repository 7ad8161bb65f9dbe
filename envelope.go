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
	"fmt"

	"golang.org/x/exp/constraints"
)

// Scalar is the coordinate type of points and envelopes.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Point is a two dimensional point.
type Point[S Scalar] struct {
	X, Y S
}

// Pt is shorthand for Point[S]{x, y}.
func Pt[S Scalar](x, y S) Point[S] {
	return Point[S]{X: x, Y: y}
}

func (p Point[S]) String() string {
	return fmt.Sprintf("(%v %v)", p.X, p.Y)
}

// Rect is an axis-aligned bounding envelope. A Rect whose Min lies beyond its
// Max on either axis is empty; EmptyRect returns the canonical one.
type Rect[S Scalar] struct {
	Min, Max Point[S]
}

// EmptyRect returns the envelope of nothing. It is the identity of Merge and
// intersects nothing.
func EmptyRect[S Scalar]() Rect[S] {
	return Rect[S]{Min: Point[S]{1, 1}, Max: Point[S]{0, 0}}
}

// RectFromPoint returns the degenerate envelope covering a single point.
func RectFromPoint[S Scalar](p Point[S]) Rect[S] {
	return Rect[S]{Min: p, Max: p}
}

// RectFromCorners returns the smallest envelope containing both corners,
// which may be given in any order.
func RectFromCorners[S Scalar](a, b Point[S]) Rect[S] {
	return Rect[S]{
		Min: Point[S]{min(a.X, b.X), min(a.Y, b.Y)},
		Max: Point[S]{max(a.X, b.X), max(a.Y, b.Y)},
	}
}

// IsEmpty reports whether r covers no point at all.
func (r Rect[S]) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Merge returns the smallest envelope containing both r and o.
func (r Rect[S]) Merge(o Rect[S]) Rect[S] {
	switch {
	case r.IsEmpty():
		return o
	case o.IsEmpty():
		return r
	}
	return Rect[S]{
		Min: Point[S]{min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)},
		Max: Point[S]{max(r.Max.X, o.Max.X), max(r.Max.Y, o.Max.Y)},
	}
}

// Intersects reports whether r and o share at least one point. Touching
// borders count as intersecting.
func (r Rect[S]) Intersects(o Rect[S]) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Contains reports whether o lies fully inside r. The empty envelope is
// contained in nothing.
func (r Rect[S]) Contains(o Rect[S]) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Min.X <= o.Min.X && o.Max.X <= r.Max.X &&
		r.Min.Y <= o.Min.Y && o.Max.Y <= r.Max.Y
}

// ContainsPoint reports whether p lies inside r or on its border.
func (r Rect[S]) ContainsPoint(p Point[S]) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X &&
		r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

// Area returns the area of r, 0 for the empty envelope.
func (r Rect[S]) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return (float64(r.Max.X) - float64(r.Min.X)) * (float64(r.Max.Y) - float64(r.Min.Y))
}

// Margin returns half the perimeter of r.
func (r Rect[S]) Margin() float64 {
	if r.IsEmpty() {
		return 0
	}
	return (float64(r.Max.X) - float64(r.Min.X)) + (float64(r.Max.Y) - float64(r.Min.Y))
}

// Enlargement returns how much r's area would grow if it were merged with o.
func (r Rect[S]) Enlargement(o Rect[S]) float64 {
	return r.Merge(o).Area() - r.Area()
}

// Center returns the center of r in float64 coordinates.
func (r Rect[S]) Center() (x, y float64) {
	return (float64(r.Min.X) + float64(r.Max.X)) / 2, (float64(r.Min.Y) + float64(r.Max.Y)) / 2
}

// MinDistance2 returns the squared euclidean distance between p and the
// closest point of r, 0 when p is inside r.
func (r Rect[S]) MinDistance2(p Point[S]) float64 {
	if r.IsEmpty() {
		return 0
	}
	dx := axisDistance(float64(p.X), float64(r.Min.X), float64(r.Max.X))
	dy := axisDistance(float64(p.Y), float64(r.Min.Y), float64(r.Max.Y))
	return dx*dx + dy*dy
}

func axisDistance(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}

func (r Rect[S]) String() string {
	if r.IsEmpty() {
		return "EMPTY"
	}
	return fmt.Sprintf("[%v %v]", r.Min, r.Max)
}

// EnvelopeFunc maps an element to the envelope it occupies. It must be a pure
// function: the tree caches its results in interior nodes.
type EnvelopeFunc[T any, S Scalar] func(item T) Rect[S]

// PointEnvelope is the EnvelopeFunc of trees storing bare points.
func PointEnvelope[S Scalar](p Point[S]) Rect[S] {
	return RectFromPoint(p)
}
