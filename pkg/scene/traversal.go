package scene

// FindClosestObject walks the hierarchy forest depth-first, at every node
// pruning subtrees whose bounding box the ray cannot hit (HierarchyNode.Check),
// and at Container/Terminal nodes testing every primitive directly. Returns
// the nearest Hit and true, or (Hit{}, false) on a miss. Grounded on
// check_box/check_box_next in the original bounding.cpp, simplified to plain
// recursion since Go's call stack makes the original's explicit continuation
// trick unnecessary.
func FindClosestObject(prims []*Primitive, roots []HierarchyNode, r Ray) (Hit, bool) {
	bestT := math3dInf
	var bestPrim *Primitive
	found := false

	var walk func(n *HierarchyNode)
	walk = func(n *HierarchyNode) {
		if !n.Check(r) {
			return
		}
		for _, idx := range n.Primitives {
			p := prims[idx]
			if t, ok := p.MeasureDistance(r); ok && t < bestT {
				bestT = t
				bestPrim = p
				found = true
			}
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}

	for i := range roots {
		walk(&roots[i])
	}

	if !found {
		return Hit{}, false
	}
	return bestPrim.ComputeIntersection(r, bestT), true
}
