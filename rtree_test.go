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
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var maxChildren = flag.Int("max-children", 6, "R-Tree maximum node fan-out")

const (
	seed1 = 1
	seed2 = 2
)

func testParams() Params {
	return Params{MinChildren: *maxChildren / 2, MaxChildren: *maxChildren}
}

func randomPoints(n int, seed int64) []Point[float64] {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]Point[float64], n)
	for i := range out {
		out[i] = Pt(rnd.Float64()*2-1, rnd.Float64()*2-1)
	}
	return out
}

func randomRects(n int, seed int64) []Rect[float64] {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]Rect[float64], n)
	for i := range out {
		corner := Pt(rnd.Float64()*2-1, rnd.Float64()*2-1)
		size := Pt(rnd.Float64()*0.1, rnd.Float64()*0.1)
		out[i] = RectFromCorners(corner, Pt(corner.X+size.X, corner.Y+size.Y))
	}
	return out
}

func rectEnvelope(r Rect[float64]) Rect[float64] { return r }

func bulkLoadPoints(points []Point[float64]) *RTree[Point[float64], float64] {
	return BulkLoad(testParams(), PointEnvelope[float64], points)
}

func allItems[T comparable, S Scalar](tr *RTree[T, S]) (out []T) {
	tr.Iterate(func(item T) bool {
		out = append(out, item)
		return true
	})
	return
}

func dump[T comparable, S Scalar](tr *RTree[T, S]) string {
	var b strings.Builder
	tr.print(&b)
	return b.String()
}

// checkInvariants verifies that every interior node caches the union of its
// children's envelopes, that only an empty root has no children, that all
// leaves sit at the same depth and that Len matches the number of leaves.
func checkInvariants[T comparable, S Scalar](t *testing.T, tr *RTree[T, S]) {
	t.Helper()
	require.False(t, tr.draining, "tree is still owned by a drain")
	require.NotNil(t, tr.root)
	leaves := 0
	leafDepth := -1
	var check func(n *node[T, S], depth int)
	check = func(n *node[T, S], depth int) {
		if n != tr.root {
			require.NotEmpty(t, n.children, "empty interior node below the root:\n%s", dump(tr))
		}
		require.Equal(t, envelopeForChildren(n.children, tr.envelope), n.envelope,
			"stale envelope at depth %d:\n%s", depth, dump(tr))
		for _, c := range n.children {
			if c.isLeaf() {
				if leafDepth == -1 {
					leafDepth = depth
				}
				require.Equal(t, leafDepth, depth, "inconsistent leaf depth")
				leaves++
				continue
			}
			check(c.interior, depth+1)
		}
	}
	check(tr.root, 0)
	require.Equal(t, leaves, tr.Len(), "length does not match number of leaves")
	if tr.Len() == 0 {
		require.True(t, tr.Envelope().IsEmpty())
	}
}

func TestNewWithParamsPanics(t *testing.T) {
	for _, p := range []Params{
		{MinChildren: 1, MaxChildren: 1},
		{MinChildren: 0, MaxChildren: 4},
		{MinChildren: 3, MaxChildren: 5},
	} {
		t.Run(fmt.Sprintf("%d-%d", p.MinChildren, p.MaxChildren), func(t *testing.T) {
			require.Panics(t, func() { NewWithParams(p, PointEnvelope[float64]) })
		})
	}
	require.Panics(t, func() { New[Point[int], int](nil) })
	require.NotPanics(t, func() { NewWithParams(Params{MinChildren: 1, MaxChildren: 2}, PointEnvelope[int]) })
}

func TestEmptyTree(t *testing.T) {
	tr := NewPoints[float64]()
	require.Equal(t, 0, tr.Len())
	require.Equal(t, 1, tr.Height())
	require.True(t, tr.Envelope().IsEmpty())
	require.False(t, tr.Contains(Pt(0.0, 0.0)))
	_, ok := tr.Nearest(Pt(0.0, 0.0))
	require.False(t, ok)
	require.Empty(t, allItems(tr))
	checkInvariants(t, tr)
}

func TestInsert(t *testing.T) {
	points := randomPoints(1000, seed1)
	tr := NewWithParams(testParams(), PointEnvelope[float64])
	for i, p := range points {
		tr.Insert(p)
		if i%97 == 0 {
			checkInvariants(t, tr)
		}
	}
	checkInvariants(t, tr)
	require.Equal(t, len(points), tr.Len())
	require.Greater(t, tr.Height(), 1)
	for _, p := range points {
		require.True(t, tr.Contains(p), "missing %v", p)
	}
	for _, p := range randomPoints(100, seed2) {
		require.False(t, tr.Contains(p))
	}
}

func TestInsertRespectsMaxChildren(t *testing.T) {
	tr := NewWithParams(Params{MinChildren: 2, MaxChildren: 4}, rectEnvelope)
	for _, r := range randomRects(500, seed1) {
		tr.Insert(r)
	}
	checkInvariants(t, tr)
	var check func(n *node[Rect[float64], float64])
	check = func(n *node[Rect[float64], float64]) {
		require.LessOrEqual(t, len(n.children), 4)
		for _, c := range n.children {
			if !c.isLeaf() {
				require.GreaterOrEqual(t, len(c.interior.children), 2)
				check(c.interior)
			}
		}
	}
	check(tr.root)
}

func TestBulkLoad(t *testing.T) {
	for _, size := range []int{0, 1, 5, 6, 7, 36, 37, 250, 1000} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			points := randomPoints(size, seed1)
			tr := bulkLoadPoints(points)
			checkInvariants(t, tr)
			require.Equal(t, size, tr.Len())
			require.ElementsMatch(t, points, allItems(tr))
			for _, p := range points {
				require.True(t, tr.Contains(p))
			}
		})
	}
}

func TestBulkLoadThenInsert(t *testing.T) {
	tr := bulkLoadPoints(randomPoints(300, seed1))
	for _, p := range randomPoints(300, seed2) {
		tr.Insert(p)
	}
	checkInvariants(t, tr)
	require.Equal(t, 600, tr.Len())
}

func TestClear(t *testing.T) {
	points := randomPoints(200, seed1)
	for _, addNodesToFreelist := range []bool{false, true} {
		tr := bulkLoadPoints(points)
		tr.Clear(addNodesToFreelist)
		checkInvariants(t, tr)
		require.Equal(t, 0, tr.Len())
		for _, p := range points[:10] {
			tr.Insert(p)
		}
		checkInvariants(t, tr)
		require.Equal(t, 10, tr.Len())
	}
}

func TestSharedFreeList(t *testing.T) {
	f := NewFreeList[Point[float64], float64](DefaultFreeListSize)
	a := NewWithFreeList(testParams(), PointEnvelope[float64], f)
	b := NewWithFreeList(testParams(), PointEnvelope[float64], f)
	for _, p := range randomPoints(200, seed1) {
		a.Insert(p)
	}
	a.Clear(true)
	require.NotEmpty(t, f.freelist)
	for _, p := range randomPoints(200, seed2) {
		b.Insert(p)
	}
	checkInvariants(t, a)
	checkInvariants(t, b)
	require.Equal(t, 200, b.Len())
}

func TestIntegerCoordinates(t *testing.T) {
	tr := NewWithParams(Params{MinChildren: 2, MaxChildren: 4}, PointEnvelope[int32])
	for x := int32(0); x < 20; x++ {
		for y := int32(0); y < 20; y++ {
			tr.Insert(Pt(x, y))
		}
	}
	checkInvariants(t, tr)
	require.Equal(t, RectFromCorners(Pt[int32](0, 0), Pt[int32](19, 19)), tr.Envelope())
	got := tr.RemoveInEnvelope(RectFromCorners(Pt[int32](5, 5), Pt[int32](9, 9)))
	require.Len(t, got, 25)
	checkInvariants(t, tr)
	require.Equal(t, 375, tr.Len())
}

func ExampleRTree() {
	tr := NewPoints[int]()
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			tr.Insert(Pt(x, y))
		}
	}
	fmt.Println("len:      ", tr.Len())
	fmt.Println("envelope: ", tr.Envelope())
	fmt.Println("has(1 2): ", tr.Contains(Pt(1, 2)))
	v, ok := tr.Remove(Pt(1, 2))
	fmt.Println("del(1 2): ", v, ok)
	_, ok = tr.Remove(Pt(1, 2))
	fmt.Println("del(1 2): ", ok)
	removed := tr.RemoveInEnvelope(RectFromCorners(Pt(0, 0), Pt(1, 1)))
	fmt.Println("removed:  ", len(removed))
	d := tr.DrainInEnvelopeIntersecting(RectFromCorners(Pt(3, 0), Pt(3, 3)))
	v, _ = d.Next()
	fmt.Println("drained:  ", tr.Len(), v.X)
	d.Close()
	fmt.Println("len:      ", tr.Len())
	// Output:
	// len:       16
	// envelope:  [(0 0) (3 3)]
	// has(1 2):  true
	// del(1 2):  (1 2) true
	// del(1 2):  false
	// removed:   4
	// drained:   0 3
	// len:       10
}

func BenchmarkInsert(b *testing.B) {
	b.StopTimer()
	points := randomPoints(b.N, seed1)
	tr := NewWithParams(testParams(), PointEnvelope[float64])
	b.StartTimer()
	for _, p := range points {
		tr.Insert(p)
	}
}

func BenchmarkBulkLoad(b *testing.B) {
	points := randomPoints(10000, seed1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bulkLoadPoints(points)
	}
}
