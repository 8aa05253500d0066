package scene

import "github.com/taigrr/lumen/pkg/math3d"

// octree is a nearest-centroid index over a fixed set of points, used to
// accelerate k-means cluster assignment once k grows past minForTreeSearch
// (linear scan against every mean becomes the bottleneck otherwise).
//
// The original (octree.cpp) builds an iterative, level-by-level flattened
// array with an explicit descend-then-climb-with-revisit-stack query. This
// port instead builds the same 8-way spatial split recursively and queries
// it with an equivalent bounding-box-pruned recursive search: same pruning
// guarantee (a sibling subtree is only visited if its nearest possible point
// could beat the current best), simpler to express idiomatically in Go.
type octree struct {
	root *octreeNode
}

type octreeNode struct {
	min, max math3d.Vec3
	indices  []int // leaf: point indices; empty on interior nodes
	children [8]*octreeNode
	leaf     bool
}

// octreeLeafSize bounds how many points a leaf holds before splitting.
const octreeLeafSize = 4

// buildOctree indexes points for repeated nearest-neighbor queries.
func buildOctree(points []math3d.Vec3) *octree {
	if len(points) == 0 {
		return &octree{root: &octreeNode{leaf: true}}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	return &octree{root: buildOctreeNode(points, indices, min, max, 0)}
}

func buildOctreeNode(points []math3d.Vec3, indices []int, min, max math3d.Vec3, depth int) *octreeNode {
	if len(indices) <= octreeLeafSize || depth > 16 {
		return &octreeNode{min: min, max: max, indices: indices, leaf: true}
	}

	center := min.Add(max).Scale(0.5)
	var buckets [8][]int
	for _, idx := range indices {
		buckets[octreeRegion(points[idx], center)] = append(buckets[octreeRegion(points[idx], center)], idx)
	}

	node := &octreeNode{min: min, max: max}
	allSame := false
	for r := 0; r < 8; r++ {
		if len(buckets[r]) == len(indices) {
			allSame = true
		}
	}
	if allSame {
		// All points fell in the same octant (coincident or degenerate):
		// stop subdividing to avoid infinite recursion.
		node.leaf = true
		node.indices = indices
		return node
	}

	for r := 0; r < 8; r++ {
		if len(buckets[r]) == 0 {
			continue
		}
		childMin, childMax := octreeRegionBounds(min, max, center, r)
		node.children[r] = buildOctreeNode(points, buckets[r], childMin, childMax, depth+1)
	}
	return node
}

// octreeRegion packs which side of center each axis falls on into a 3-bit
// index, the same region-numbering scheme as the original's bit-packed
// (bx<<2)+(by<<1)+bz.
func octreeRegion(p, center math3d.Vec3) int {
	r := 0
	if p.X >= center.X {
		r |= 4
	}
	if p.Y >= center.Y {
		r |= 2
	}
	if p.Z >= center.Z {
		r |= 1
	}
	return r
}

func octreeRegionBounds(min, max, center math3d.Vec3, region int) (math3d.Vec3, math3d.Vec3) {
	lo, hi := min, max
	if region&4 != 0 {
		lo.X = center.X
	} else {
		hi.X = center.X
	}
	if region&2 != 0 {
		lo.Y = center.Y
	} else {
		hi.Y = center.Y
	}
	if region&1 != 0 {
		lo.Z = center.Z
	} else {
		hi.Z = center.Z
	}
	return lo, hi
}

// nearest returns the index (into the points slice used at build time) of
// the point closest to query, using box-distance pruning to skip subtrees
// that cannot improve on the current best.
func (t *octree) nearest(query math3d.Vec3, points []math3d.Vec3) int {
	best := -1
	bestDistSq := math3dInf
	t.root.search(query, points, &best, &bestDistSq)
	return best
}

func (n *octreeNode) search(query math3d.Vec3, points []math3d.Vec3, best *int, bestDistSq *float64) {
	if n == nil {
		return
	}
	if boxDistSq(query, n.min, n.max) >= *bestDistSq {
		return
	}
	if n.leaf {
		for _, idx := range n.indices {
			d := query.Sub(points[idx]).LenSq()
			if d < *bestDistSq {
				*bestDistSq = d
				*best = idx
			}
		}
		return
	}
	for _, child := range n.children {
		child.search(query, points, best, bestDistSq)
	}
}

// boxDistSq returns the squared distance from p to its nearest point on the
// box [min,max], 0 if p is inside, computed per-axis as the squared gap on
// whichever side p falls outside of — the same "only axes where the sign
// differs contribute" logic as distance_sq_to_region in the original.
func boxDistSq(p, min, max math3d.Vec3) float64 {
	d := 0.0
	if p.X < min.X {
		d += (min.X - p.X) * (min.X - p.X)
	} else if p.X > max.X {
		d += (p.X - max.X) * (p.X - max.X)
	}
	if p.Y < min.Y {
		d += (min.Y - p.Y) * (min.Y - p.Y)
	} else if p.Y > max.Y {
		d += (p.Y - max.Y) * (p.Y - max.Y)
	}
	if p.Z < min.Z {
		d += (min.Z - p.Z) * (min.Z - p.Z)
	} else if p.Z > max.Z {
		d += (p.Z - max.Z) * (p.Z - max.Z)
	}
	return d
}
