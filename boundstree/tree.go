package boundstree

import (
	"iter"

	"github.com/pkg/errors"

	"go.viam.com/broadphase/spatialmath"
)

// BoundsTree is a dynamic bounding volume hierarchy over objects of type T. It does not own its objects
// and it is not safe for concurrent use.
type BoundsTree[T Boundable] struct {
	root *Node[T]
}

// NewBoundsTree creates an empty tree.
func NewBoundsTree[T Boundable]() *BoundsTree[T] {
	return &BoundsTree[T]{root: newEmptyNode[T]()}
}

// IsEmpty returns whether the tree holds no objects.
func (t *BoundsTree[T]) IsEmpty() bool {
	return t.root.nodeType == InternalNode && len(t.root.children) == 0
}

// Root returns the root node. It is meant for read-only traversal.
func (t *BoundsTree[T]) Root() *Node[T] {
	return t.root
}

// Bounds returns the bounds of everything in the tree.
func (t *BoundsTree[T]) Bounds() spatialmath.Bounds {
	return t.root.bounds
}

// NumberOfObjects returns the number of leaves in the tree.
func (t *BoundsTree[T]) NumberOfObjects() int {
	return t.root.count
}

// LongestBranch returns the number of nodes on the longest root-to-leaf path.
func (t *BoundsTree[T]) LongestBranch() int {
	if t.IsEmpty() {
		return 0
	}
	return t.root.LongestBranch()
}

// AddNode inserts a subtree next to the existing groups. Every path of the subtree must already cross a
// group head.
func (t *BoundsTree[T]) AddNode(n *Node[T]) {
	if t.IsEmpty() {
		t.root = n
		return
	}
	t.root.AddOutside(n)
}

// Add inserts obj as a new group of its own.
func (t *BoundsTree[T]) Add(obj T, bounds spatialmath.Bounds) {
	t.AddNode(NewLeafNode(obj, bounds, true))
}

// AddToExistingGroup inserts obj into the group that member belongs to.
func (t *BoundsTree[T]) AddToExistingGroup(obj T, bounds spatialmath.Bounds, member T, memberBounds spatialmath.Bounds) error {
	return t.AddNodeToExistingGroup(NewLeafNode(obj, bounds, false), member, memberBounds)
}

// AddNodeToExistingGroup inserts a subtree without group heads into the group that member belongs to.
func (t *BoundsTree[T]) AddNodeToExistingGroup(n *Node[T], member T, memberBounds spatialmath.Bounds) error {
	s, err := t.FindGroupFor(member, memberBounds)
	if err != nil {
		return err
	}
	s.Top().AddInside(n)
	s.ExpandBoundsAllTheWayToTop()
	return nil
}

// Find returns the path to the leaf holding obj. bounds is a hint used to prune the search; a stale hint
// only makes the search slower. Passing spatialmath.EmptyBounds() scans the whole tree without pruning,
// which is the way to look up, remove, or grab an object whose last bounds are unknown.
func (t *BoundsTree[T]) Find(obj T, bounds spatialmath.Bounds) (*NodeStack[T], error) {
	if t.IsEmpty() {
		return nil, errors.Wrap(ErrObjectNotFound, "tree is empty")
	}
	s, ok := findNodeStack(t.root, obj, bounds)
	if !ok {
		return nil, errors.WithStack(ErrObjectNotFound)
	}
	return s, nil
}

// FindGroupFor returns the path to the group head of the group obj belongs to.
func (t *BoundsTree[T]) FindGroupFor(obj T, bounds spatialmath.Bounds) (*NodeStack[T], error) {
	s, err := t.Find(obj, bounds)
	if err != nil {
		return nil, err
	}
	if err := s.RiseUntilGroupHead(); err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}

// Contains returns whether obj is in the tree.
func (t *BoundsTree[T]) Contains(obj T, bounds spatialmath.Bounds) bool {
	_, err := t.Find(obj, bounds)
	return err == nil
}

func (t *BoundsTree[T]) detach(s *NodeStack[T]) (*Node[T], error) {
	if s.Depth() == 1 {
		n := t.root
		t.root = newEmptyNode[T]()
		return n, nil
	}
	return s.Remove()
}

// Remove removes obj from the tree. bounds is a search hint as in Find.
func (t *BoundsTree[T]) Remove(obj T, bounds spatialmath.Bounds) error {
	_, err := t.Grab(obj, bounds)
	return err
}

// Grab removes the leaf holding obj and returns it.
func (t *BoundsTree[T]) Grab(obj T, bounds spatialmath.Bounds) (*Node[T], error) {
	if t.IsEmpty() {
		return nil, errors.WithStack(ErrEmptyTree)
	}
	s, err := t.Find(obj, bounds)
	if err != nil {
		return nil, err
	}
	return t.detach(s)
}

// GrabGroupFor removes the whole group obj belongs to and returns its group head, with the internal
// structure of the group intact.
func (t *BoundsTree[T]) GrabGroupFor(obj T, bounds spatialmath.Bounds) (*Node[T], error) {
	if t.IsEmpty() {
		return nil, errors.WithStack(ErrEmptyTree)
	}
	s, err := t.FindGroupFor(obj, bounds)
	if err != nil {
		return nil, err
	}
	return t.detach(s)
}

// UpdateObjectBounds refreshes the leaf of obj from its strict bounds and repairs its ancestors. oldBounds
// is the bounds the tree last saw for obj.
func (t *BoundsTree[T]) UpdateObjectBounds(obj T, oldBounds spatialmath.Bounds) error {
	if t.IsEmpty() {
		return errors.WithStack(ErrEmptyTree)
	}
	s, err := t.Find(obj, oldBounds)
	if err != nil {
		return err
	}
	s.UpdateBoundsAllTheWayToTop()
	return nil
}

// UpdateObjectGroupBounds refreshes every member of the group obj belongs to, then repairs the ancestors
// of the group once.
func (t *BoundsTree[T]) UpdateObjectGroupBounds(obj T, oldBounds spatialmath.Bounds) error {
	if t.IsEmpty() {
		return errors.WithStack(ErrEmptyTree)
	}
	s, err := t.FindGroupFor(obj, oldBounds)
	if err != nil {
		return err
	}
	s.Top().RecalculateBoundsRecursive()
	s.UpdateBoundsAllTheWayToTop()
	return nil
}

// RecalculateBounds refreshes every leaf and internal node of the tree.
func (t *BoundsTree[T]) RecalculateBounds() {
	t.root.RecalculateBoundsRecursive()
}

// ImproveStructure runs one structural improvement pass over the whole tree.
func (t *BoundsTree[T]) ImproveStructure() {
	t.root.ImproveStructure()
}

// Iterator returns an iterator over every object.
func (t *BoundsTree[T]) Iterator() *TreeIterator[T] {
	it := newTreeIterator(t.root, nil)
	it.tree = t
	return it
}

// FilteredIterator returns an iterator over the objects whose bounds and ancestor bounds pass filter.
func (t *BoundsTree[T]) FilteredIterator(filter Filter) *TreeIterator[T] {
	it := newTreeIterator(t.root, filter)
	it.tree = t
	return it
}

// All returns a sequence over every object.
func (t *BoundsTree[T]) All() iter.Seq[T] {
	return seq(t.Iterator())
}

// Filtered returns a sequence over the objects accepted by filter. The result may hold objects whose exact
// shape does not pass, never the opposite.
func (t *BoundsTree[T]) Filtered(filter Filter) iter.Seq[T] {
	return seq(t.FilteredIterator(filter))
}

// Walk calls fn for every node in depth-first pre-order with the depth of the node, the root being at
// depth 0. Children are skipped when fn returns false.
func (t *BoundsTree[T]) Walk(fn func(n *Node[T], depth int) bool) {
	if t.IsEmpty() {
		return
	}
	walk(t.root, 0, fn)
}

func walk[T Boundable](n *Node[T], depth int, fn func(n *Node[T], depth int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.children {
		walk(child, depth+1, fn)
	}
}
