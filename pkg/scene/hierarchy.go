package scene

import "github.com/taigrr/lumen/pkg/math3d"

// HierarchyKind tags which variant of HierarchyNode is populated.
type HierarchyKind int

const (
	// Container holds primitives directly with no bounding box test, used
	// for small leaf groups where the box-test overhead isn't worth it.
	Container HierarchyKind = iota
	// Terminal is a bounded leaf: a box guarding a flat list of primitives.
	Terminal
	// Internal is a bounded interior node: a box guarding child nodes.
	Internal
)

// HierarchyNode is the tagged variant backing the clustering tree built by
// BuildHierarchy. Mirrors the "bounding" union in the original port: rather
// than an interface per node kind, a single struct switches on Kind so
// traversal avoids vtable dispatch in the hot loop (spec design note §9).
type HierarchyNode struct {
	Kind HierarchyKind
	Box  BoundingBox // valid for Terminal and Internal

	Primitives []int // indices into Scene.Primitives; valid for Container and Terminal
	Children   []HierarchyNode
}

// Check reports whether the ray can possibly hit this node's contents: a
// Container always can (no box to test); Terminal/Internal first test the
// guarding box.
func (n *HierarchyNode) Check(r Ray) bool {
	if n.Kind == Container {
		return true
	}
	return n.Box.IsHitBy(r)
}

// minForTreeSearch is the cluster-count threshold above which k-means
// assignment uses the octree-accelerated nearest-centroid search instead of
// linear scan (MIN_FOR_TREE_SEARCH in the original clustering.cpp).
const minForTreeSearch = 50

// minPolygonsForBox is the primitive-count floor below which a group is left
// as an unboxed Container instead of being wrapped in a Terminal with its own
// bounding box — matching the original's MIN_NUMBER_OF_POLYGONS_FOR_BOX.
const minPolygonsForBox = 5

// cardinalOfBoxGroup bounds how many Terminal/Internal nodes get folded
// together per re-clustering pass while building the hierarchy's upper
// levels, matching the original's CARDINAL_OF_BOX_GROUP.
const cardinalOfBoxGroup = 3

// BuildHierarchy clusters primitives (by centroid) into a tree of
// HierarchyNode via top-down k-means, following create_bounding_hierarchy in
// the original clustering.cpp: if there are too few primitives to be worth
// boxing, return a single Container; otherwise split into
// k = 1 + n/polygonsPerBounding clusters, build a Terminal per non-empty
// cluster, then repeatedly re-cluster the resulting Terminals (grouping by
// cardinalOfBoxGroup) until at most 3 remain, finally wrapping the result in
// one top-level bounding node. polygonsPerBounding == 0 disables clustering
// entirely and returns a flat Container (the documented linear-scan
// fallback).
func BuildHierarchy(prims []*Primitive, indices []int, polygonsPerBounding int) HierarchyNode {
	if polygonsPerBounding <= 0 || len(indices) < minPolygonsForBox {
		return HierarchyNode{Kind: Container, Primitives: indices}
	}

	k := 1 + len(indices)/polygonsPerBounding
	groups := kMeansCluster(prims, indices, k)

	var terminals []HierarchyNode
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		terminals = append(terminals, terminalFor(prims, g))
	}
	if len(terminals) == 0 {
		return HierarchyNode{Kind: Container, Primitives: indices}
	}
	return foldTerminals(prims, terminals)
}

func terminalFor(prims []*Primitive, indices []int) HierarchyNode {
	box := boundingBoxOf(prims, indices)
	return HierarchyNode{Kind: Terminal, Box: box, Primitives: indices}
}

// foldTerminals repeatedly re-clusters a set of already-boxed nodes
// (k = 1 + n/cardinalOfBoxGroup) into Internal parents until at most 3 remain,
// then wraps the survivors in one final bounding node, mirroring
// create_hierarchy_from_boundings.
func foldTerminals(prims []*Primitive, nodes []HierarchyNode) HierarchyNode {
	for len(nodes) > cardinalOfBoxGroup {
		centroids := make([]math3d.Vec3, len(nodes))
		for i, n := range nodes {
			centroids[i] = n.Box.Center
		}
		k := 1 + len(nodes)/cardinalOfBoxGroup
		groups := kMeansClusterPoints(centroids, k)

		var next []HierarchyNode
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			if len(g) == 1 {
				next = append(next, nodes[g[0]])
				continue
			}
			children := make([]HierarchyNode, len(g))
			box := nodes[g[0]].Box
			for i, idx := range g {
				children[i] = nodes[idx]
				if i > 0 {
					box = unionBox(box, nodes[idx].Box)
				}
			}
			next = append(next, HierarchyNode{Kind: Internal, Box: box, Children: children})
		}
		if len(next) == len(nodes) {
			break // no progress; avoid an infinite loop on pathological inputs
		}
		nodes = next
	}

	box := nodes[0].Box
	for _, n := range nodes[1:] {
		box = unionBox(box, n.Box)
	}
	return HierarchyNode{Kind: Internal, Box: box, Children: nodes}
}

func boundingBoxOf(prims []*Primitive, indices []int) BoundingBox {
	min, max := prims[indices[0]].AxisAlignedBounds()
	for _, idx := range indices[1:] {
		pmin, pmax := prims[idx].AxisAlignedBounds()
		min = min.Min(pmin)
		max = max.Max(pmax)
	}
	return WorldAABB(min, max)
}

func unionBox(a, b BoundingBox) BoundingBox {
	aMin := math3d.V3(a.Center.X-a.L1, a.Center.Y-a.L2, a.Center.Z-a.L3)
	aMax := math3d.V3(a.Center.X+a.L1, a.Center.Y+a.L2, a.Center.Z+a.L3)
	bMin := math3d.V3(b.Center.X-b.L1, b.Center.Y-b.L2, b.Center.Z-b.L3)
	bMax := math3d.V3(b.Center.X+b.L1, b.Center.Y+b.L2, b.Center.Z+b.L3)
	return WorldAABB(aMin.Min(bMin), aMax.Max(bMax))
}
