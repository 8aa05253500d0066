package scene

import (
	"sync"

	"github.com/taigrr/lumen/pkg/math3d"
)

// maxKMeansIterations bounds Lloyd's-algorithm refinement passes, matching
// MAX_NUMBER_OF_ITERATIONS in the original clustering.cpp.
const maxKMeansIterations = 10

// kMeansCluster clusters the primitives named by indices (by world centroid)
// into k groups, returning each group as a list of original primitive
// indices. Grounded on k_means in clustering.cpp.
func kMeansCluster(prims []*Primitive, indices []int, k int) [][]int {
	centroids := make([]math3d.Vec3, len(indices))
	for i, idx := range indices {
		centroids[i] = prims[idx].Centroid()
	}
	groups := kMeansClusterPoints(centroids, k)
	out := make([][]int, len(groups))
	for gi, g := range groups {
		out[gi] = make([]int, len(g))
		for i, localIdx := range g {
			out[gi][i] = indices[localIdx]
		}
	}
	return out
}

// kMeansClusterPoints clusters points into k groups, returning each group as
// a list of indices into points. Once k reaches minForTreeSearch, cluster
// assignment is accelerated by an octree over the current means instead of
// a linear scan, matching the original's threshold for switching search
// strategies.
func kMeansClusterPoints(points []math3d.Vec3, k int) [][]int {
	n := len(points)
	if n == 0 {
		return nil
	}
	if k <= 1 {
		return [][]int{makeRange(n)}
	}
	if n <= k {
		groups := make([][]int, n)
		for i := range points {
			groups[i] = []int{i}
		}
		return groups
	}

	means := make([]math3d.Vec3, k)
	stride := n / k
	for i := 0; i < k; i++ {
		means[i] = points[(i*stride)%n]
	}

	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}

	var groups [][]int
	for iter := 0; iter < maxKMeansIterations; iter++ {
		var tree *octree
		if k >= minForTreeSearch {
			tree = buildOctree(means)
		}

		changed := assignAll(points, means, assignment, tree)
		groups = groupsFromAssignment(assignment, k)
		fillEmptyClusters(assignment, groups)
		means = recomputeMeans(points, groups, means)

		if !changed && iter > 0 {
			break
		}
	}
	return groups
}

func makeRange(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}

// assignAll assigns every point to its nearest mean, writing into
// assignment, and reports whether any assignment changed from the prior
// pass. Work is split across a fixed worker pool; all writes to the shared
// assignment slice and changed flag go through a single mutex, matching the
// original's parallel-for-plus-mutex-guarded-append shape (assign_to_closest).
func assignAll(points, means []math3d.Vec3, assignment []int, tree *octree) bool {
	const workers = 8
	n := len(points)
	w := workers
	if w > n {
		w = n
	}
	if w == 0 {
		return false
	}
	chunk := (n + w - 1) / w

	var mu sync.Mutex
	var wg sync.WaitGroup
	changed := false

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				var nearest int
				if tree != nil {
					nearest = tree.nearest(points[i], means)
				} else {
					nearest = linearNearest(points[i], means)
				}
				mu.Lock()
				if assignment[i] != nearest {
					assignment[i] = nearest
					changed = true
				}
				mu.Unlock()
			}
		}(start, end)
	}
	wg.Wait()
	return changed
}

func linearNearest(p math3d.Vec3, means []math3d.Vec3) int {
	best := 0
	bestDist := p.Distance(means[0])
	for i := 1; i < len(means); i++ {
		if d := p.Distance(means[i]); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func groupsFromAssignment(assignment []int, k int) [][]int {
	groups := make([][]int, k)
	for i, g := range assignment {
		groups[g] = append(groups[g], i)
	}
	return groups
}

// fillEmptyClusters pulls one element at a time from the largest non-empty
// group into each empty group: a mean with nothing assigned to it has no
// centroid to recompute from, matching fill_empty_clusters in the original.
func fillEmptyClusters(assignment []int, groups [][]int) {
	for gi, g := range groups {
		if len(g) > 0 {
			continue
		}
		largest := -1
		for gj, other := range groups {
			if gj == gi || len(other) < 2 {
				continue
			}
			if largest < 0 || len(other) > len(groups[largest]) {
				largest = gj
			}
		}
		if largest < 0 {
			continue
		}
		stolen := groups[largest][len(groups[largest])-1]
		groups[largest] = groups[largest][:len(groups[largest])-1]
		groups[gi] = append(groups[gi], stolen)
		assignment[stolen] = gi
	}
}

func recomputeMeans(points []math3d.Vec3, groups [][]int, prev []math3d.Vec3) []math3d.Vec3 {
	means := make([]math3d.Vec3, len(groups))
	for gi, g := range groups {
		if len(g) == 0 {
			means[gi] = prev[gi]
			continue
		}
		sum := math3d.Zero3()
		for _, idx := range g {
			sum = sum.Add(points[idx])
		}
		means[gi] = sum.Scale(1 / float64(len(g)))
	}
	return means
}
