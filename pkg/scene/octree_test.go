package scene

import (
	"math/rand/v2"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

// bruteForceNearestPoint is the octree's ground truth: a plain O(n) scan.
func bruteForceNearestPoint(query math3d.Vec3, points []math3d.Vec3) int {
	best := -1
	bestDistSq := math3dInf
	for i, p := range points {
		d := query.Sub(p).LenSq()
		if d < bestDistSq {
			bestDistSq, best = d, i
		}
	}
	return best
}

// TestOctreeAgreesWithLinearScan resolves the octree-vs-linear k-means
// assignment Open Question by direct construction: on random point clouds,
// the octree-accelerated nearest-centroid query must return a point no
// farther from the query than the one a brute-force scan finds, for every
// query point.
func TestOctreeAgreesWithLinearScan(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 22))

	for trial := 0; trial < 20; trial++ {
		n := 5 + r.IntN(500)
		points := make([]math3d.Vec3, n)
		for i := range points {
			points[i] = math3d.V3(r.Float64()*100-50, r.Float64()*100-50, r.Float64()*100-50)
		}
		tree := buildOctree(points)

		for q := 0; q < 200; q++ {
			query := math3d.V3(r.Float64()*120-60, r.Float64()*120-60, r.Float64()*120-60)
			want := bruteForceNearestPoint(query, points)
			got := tree.nearest(query, points)

			wantDist := query.Sub(points[want]).LenSq()
			gotDist := query.Sub(points[got]).LenSq()
			if gotDist > wantDist+1e-9 {
				t.Fatalf("trial %d query %d: octree returned a farther point (dist²=%v) than linear scan (dist²=%v)", trial, q, gotDist, wantDist)
			}
		}
	}
}

func TestOctreeHandlesCoincidentPoints(t *testing.T) {
	points := make([]math3d.Vec3, 20)
	for i := range points {
		points[i] = math3d.V3(1, 2, 3)
	}
	tree := buildOctree(points)
	got := tree.nearest(math3d.V3(1, 2, 3), points)
	if got < 0 || got >= len(points) {
		t.Fatalf("expected a valid index into points, got %d", got)
	}
}
