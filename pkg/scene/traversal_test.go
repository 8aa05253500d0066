package scene

import (
	"math/rand/v2"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

// bruteForceClosest is the traversal's brute-force ground truth: a plain
// linear scan over every primitive, matching what polygons_per_bounding==0
// already does in production, used here only to check the clustered path
// agrees with the unclustered one.
func bruteForceClosest(prims []*Primitive, r Ray) (Hit, bool) {
	bestT := math3dInf
	var bestPrim *Primitive
	found := false
	for _, p := range prims {
		if t, ok := p.MeasureDistance(r); ok && t < bestT {
			bestT, bestPrim, found = t, p, true
		}
	}
	if !found {
		return Hit{}, false
	}
	return bestPrim.ComputeIntersection(r, bestT), true
}

func randomSpherePrimitives(n int, seed uint64) []*Primitive {
	r := rand.New(rand.NewPCG(seed, seed>>1|1))
	prims := make([]*Primitive, n)
	for i := range prims {
		center := math3d.V3(r.Float64()*40-20, r.Float64()*40-20, r.Float64()*40-20)
		radius := 0.2 + r.Float64()*0.8
		prims[i] = &Primitive{Kind: KindSphere, Sphere: SphereData{Center: center, Radius: radius}}
	}
	return prims
}

// TestTraversalMatchesBruteForce is the hierarchy-vs-linear-search equivalence
// property: for a moderately sized random scene, clustered traversal and a
// brute-force scan must agree on every ray's nearest hit (both which
// primitive and where), since the hierarchy only prunes, never changes, the
// candidate set.
func TestTraversalMatchesBruteForce(t *testing.T) {
	const numPrimitives = 2000
	const numRays = 2000

	prims := randomSpherePrimitives(numPrimitives, 42)
	indices := make([]int, numPrimitives)
	for i := range indices {
		indices[i] = i
	}
	root := BuildHierarchy(prims, indices, 8)
	roots := []HierarchyNode{root}

	rng := rand.New(rand.NewPCG(99, 100))
	mismatches := 0
	for i := 0; i < numRays; i++ {
		origin := math3d.V3(rng.Float64()*60-30, rng.Float64()*60-30, rng.Float64()*60-30)
		dir := math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		if dir.LenSq() < 1e-12 {
			continue
		}
		ray := NewRay(origin, dir)

		want, wantOK := bruteForceClosest(prims, ray)
		got, gotOK := FindClosestObject(prims, roots, ray)

		if wantOK != gotOK {
			t.Fatalf("ray %d: brute force hit=%v, hierarchy hit=%v", i, wantOK, gotOK)
		}
		if !wantOK {
			continue
		}
		if got.Primitive != want.Primitive || got.Point.Distance(want.Point) > 1e-6 {
			mismatches++
		}
	}
	if mismatches > 0 {
		t.Fatalf("%d/%d rays disagreed between brute-force and hierarchy traversal", mismatches, numRays)
	}
}

func TestTraversalHandlesEmptyScene(t *testing.T) {
	ray := NewRay(math3d.Zero3(), math3d.V3(0, 0, 1))
	if _, ok := FindClosestObject(nil, nil, ray); ok {
		t.Fatal("expected no hit against an empty forest")
	}
}
