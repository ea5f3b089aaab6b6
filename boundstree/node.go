// Package boundstree implements a dynamic bounding volume hierarchy used as the broad-phase index of a
// rigid-body simulation. Leaves reference externally owned objects; internal nodes own their children.
// Leaves that move together are kept in groups, and every root-to-leaf path crosses exactly one group head.
package boundstree

import (
	"cmp"
	"math"
	"slices"

	"go.viam.com/broadphase/spatialmath"
)

const (
	// MaxBranches is the maximum number of children of an internal node.
	MaxBranches = 4
	// MaxHeight is the maximum number of nodes on a root-to-leaf path.
	MaxHeight = 64
)

// NodeType represents the possible types of nodes in a bounds tree.
type NodeType uint8

// Enumerated NodeTypes.
const (
	InternalNode = NodeType(iota)
	LeafNode
)

func (t NodeType) String() string {
	switch t {
	case InternalNode:
		return "InternalNode"
	case LeafNode:
		return "LeafNode"
	}
	return "UnknownNode"
}

// Boundable is an object that can be indexed by a bounds tree. Identity is equality of the values.
type Boundable interface {
	comparable
	StrictBounds() spatialmath.Bounds
}

// Node is a node of a bounds tree. A leaf references one object, an internal node owns between zero and
// MaxBranches children. Only an empty tree's root has zero children.
type Node[T Boundable] struct {
	nodeType  NodeType
	bounds    spatialmath.Bounds
	children  []*Node[T]
	object    T
	groupHead bool
	count     int
}

// NewLeafNode creates a leaf referencing obj.
func NewLeafNode[T Boundable](obj T, bounds spatialmath.Bounds, groupHead bool) *Node[T] {
	return &Node[T]{
		nodeType:  LeafNode,
		bounds:    bounds,
		object:    obj,
		groupHead: groupHead,
		count:     1,
	}
}

func newInternalNode[T Boundable](groupHead bool, children ...*Node[T]) *Node[T] {
	n := &Node[T]{
		nodeType:  InternalNode,
		children:  make([]*Node[T], 0, MaxBranches),
		groupHead: groupHead,
	}
	n.children = append(n.children, children...)
	n.RecalculateBoundsFromSubBounds()
	return n
}

func newEmptyNode[T Boundable]() *Node[T] {
	return newInternalNode[T](false)
}

// IsLeafNode returns whether the node references an object.
func (n *Node[T]) IsLeafNode() bool {
	return n.nodeType == LeafNode
}

// Type returns the node type.
func (n *Node[T]) Type() NodeType {
	return n.nodeType
}

// IsGroupHead returns whether the node is the head of a group.
func (n *Node[T]) IsGroupHead() bool {
	return n.groupHead
}

// SetGroupHead marks or unmarks the node as a group head.
func (n *Node[T]) SetGroupHead(groupHead bool) {
	n.groupHead = groupHead
}

// Bounds returns the cached bounds of the node.
func (n *Node[T]) Bounds() spatialmath.Bounds {
	return n.bounds
}

// Object returns the object of a leaf, or the zero value for an internal node.
func (n *Node[T]) Object() T {
	return n.object
}

// Children returns the children of an internal node. The slice must not be modified.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// NumChildren returns the number of direct children.
func (n *Node[T]) NumChildren() int {
	return len(n.children)
}

// NumberOfObjects returns the number of leaves below and including n.
func (n *Node[T]) NumberOfObjects() int {
	return n.count
}

// LongestBranch returns the number of nodes on the longest path from n to a leaf.
func (n *Node[T]) LongestBranch() int {
	longest := 0
	for _, child := range n.children {
		longest = max(longest, child.LongestBranch())
	}
	return longest + 1
}

// AddOutside inserts newNode as a new sibling subtree at this level or below it, without entering any group.
// A leaf or group head is pushed down into a fresh internal node together with newNode. Otherwise newNode is
// appended when there is room, or inserted into the child whose cost grows the least.
func (n *Node[T]) AddOutside(newNode *Node[T]) {
	cur := n
	for depth := 0; ; depth++ {
		if depth >= MaxHeight {
			panic(errTooDeep())
		}
		if cur.nodeType == LeafNode || cur.groupHead {
			cur.pushDown(newNode)
			return
		}
		cur.bounds = cur.bounds.Union(newNode.bounds)
		cur.count += newNode.count
		if len(cur.children) < MaxBranches {
			cur.children = append(cur.children, newNode)
			return
		}
		cur = cur.bestChildFor(newNode.bounds)
	}
}

// AddInside inserts newNode as a member of the group n belongs to. A leaf turns into an internal node that
// keeps its group head flag, and its object moves into a plain child.
func (n *Node[T]) AddInside(newNode *Node[T]) {
	cur := n
	for depth := 0; ; depth++ {
		if depth >= MaxHeight {
			panic(errTooDeep())
		}
		if cur.nodeType == LeafNode {
			moved := NewLeafNode(cur.object, cur.bounds, false)
			groupHead := cur.groupHead
			*cur = *newInternalNode(groupHead, moved, newNode)
			return
		}
		cur.bounds = cur.bounds.Union(newNode.bounds)
		cur.count += newNode.count
		if len(cur.children) < MaxBranches {
			cur.children = append(cur.children, newNode)
			return
		}
		cur = cur.bestChildFor(newNode.bounds)
	}
}

// pushDown moves the contents of n into a new child and makes n a plain internal node over it and newNode.
func (n *Node[T]) pushDown(newNode *Node[T]) {
	moved := &Node[T]{}
	*moved = *n
	*n = *newInternalNode(false, moved, newNode)
}

// bestChildFor returns the child whose cost increases the least when grown to include b. Ties go to the
// child holding fewer objects so that identical boxes still build a balanced tree.
func (n *Node[T]) bestChildFor(b spatialmath.Bounds) *Node[T] {
	var best *Node[T]
	bestCost := math.Inf(1)
	for _, child := range n.children {
		cost := spatialmath.ComputeCost(child.bounds.Union(b)) - spatialmath.ComputeCost(child.bounds)
		if best == nil || cost < bestCost || (cost == bestCost && child.count < best.count) {
			best = child
			bestCost = cost
		}
	}
	return best
}

// Remove detaches and returns the child at index. The bounds of n are left stale.
func (n *Node[T]) Remove(index int) *Node[T] {
	child := n.children[index]
	n.children = slices.Delete(n.children, index, index+1)
	n.count -= child.count
	return child
}

// collapse replaces an internal node holding a single child by that child. The merged node is a group
// head when either of them was.
func (n *Node[T]) collapse() {
	only := n.children[0]
	groupHead := n.groupHead || only.groupHead
	*n = *only
	n.groupHead = groupHead
}

// RecalculateBounds refreshes a leaf from its object, or an internal node from its direct children.
func (n *Node[T]) RecalculateBounds() {
	if n.nodeType == LeafNode {
		n.bounds = n.object.StrictBounds()
		return
	}
	n.RecalculateBoundsFromSubBounds()
}

// RecalculateBoundsFromSubBounds recomputes the bounds and object count of an internal node from the cached
// values of its children.
func (n *Node[T]) RecalculateBoundsFromSubBounds() {
	bounds := spatialmath.EmptyBounds()
	count := 0
	for _, child := range n.children {
		bounds = bounds.Union(child.bounds)
		count += child.count
	}
	n.bounds = bounds
	n.count = count
}

// RecalculateBoundsRecursive recomputes the whole subtree bottom-up.
func (n *Node[T]) RecalculateBoundsRecursive() {
	if n.nodeType == LeafNode {
		n.bounds = n.object.StrictBounds()
		return
	}
	for _, child := range n.children {
		child.RecalculateBoundsRecursive()
	}
	n.RecalculateBoundsFromSubBounds()
}

// ImproveStructure re-partitions the children and grandchildren of every node of the subtree when that
// lowers the summed cost of the children. Group heads are never opened from outside their group.
func (n *Node[T]) ImproveStructure() {
	if n.nodeType == LeafNode {
		return
	}
	n.improveLevel()
	for _, child := range n.children {
		child.ImproveStructure()
	}
}

func (n *Node[T]) improveLevel() {
	atoms := make([]*Node[T], 0, MaxBranches*MaxBranches)
	dug := false
	for _, child := range n.children {
		if child.nodeType == InternalNode && !child.groupHead {
			atoms = append(atoms, child.children...)
			dug = true
		} else {
			atoms = append(atoms, child)
		}
	}
	if !dug {
		return
	}
	if len(atoms) <= MaxBranches {
		n.children = append(make([]*Node[T], 0, MaxBranches), atoms...)
		return
	}

	axis := longestAxis(n.bounds)
	slices.SortStableFunc(atoms, func(a, b *Node[T]) int {
		return cmp.Compare(axisOf(a.bounds.Center(), axis), axisOf(b.bounds.Center(), axis))
	})

	newChildren := make([]*Node[T], 0, MaxBranches)
	for i := 0; i < MaxBranches; i++ {
		chunk := atoms[i*len(atoms)/MaxBranches : (i+1)*len(atoms)/MaxBranches]
		if len(chunk) == 1 {
			newChildren = append(newChildren, chunk[0])
			continue
		}
		newChildren = append(newChildren, newInternalNode(false, chunk...))
	}
	if childrenCost(newChildren) < childrenCost(n.children) {
		n.children = newChildren
	}
}

func childrenCost[T Boundable](children []*Node[T]) float64 {
	cost := 0.0
	for _, child := range children {
		cost += spatialmath.ComputeCost(child.bounds)
	}
	return cost
}

func longestAxis(b spatialmath.Bounds) int {
	d := b.Diagonal()
	switch {
	case d.X >= d.Y && d.X >= d.Z:
		return 0
	case d.Y >= d.Z:
		return 1
	default:
		return 2
	}
}

func axisOf(p spatialmath.Position, axis int) spatialmath.Fix {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
