package boundstree

import (
	"go.viam.com/broadphase/spatialmath"
)

type frame[T Boundable] struct {
	node  *Node[T]
	index int
}

// NodeStack is a path from a root to a node. Every frame but the top one records the index of the child
// that the next frame descended into. A stack with no frames is past-the-end.
type NodeStack[T Boundable] struct {
	frames []frame[T]
}

func newNodeStack[T Boundable](root *Node[T]) *NodeStack[T] {
	s := &NodeStack[T]{frames: make([]frame[T], 0, 16)}
	s.push(root)
	return s
}

// findNodeStack returns the path from root to the leaf holding obj. hint is only used to prune the search
// to subtrees whose bounds contain it; when the pruned search fails the whole tree is scanned.
func findNodeStack[T Boundable](root *Node[T], obj T, hint spatialmath.Bounds) (*NodeStack[T], bool) {
	s := newNodeStack(root)
	if s.find(obj, ContainsBounds(hint)) {
		return s, true
	}
	s.frames[0].index = 0
	if s.find(obj, All) {
		return s, true
	}
	return nil, false
}

func (s *NodeStack[T]) find(obj T, accept Filter) bool {
	top := s.Top()
	if top.nodeType == LeafNode {
		return top.object == obj
	}
	for i, child := range top.children {
		if !accept(child.bounds) {
			continue
		}
		s.frames[len(s.frames)-1].index = i
		s.push(child)
		if s.find(obj, accept) {
			return true
		}
		s.pop()
	}
	return false
}

func (s *NodeStack[T]) push(n *Node[T]) {
	if len(s.frames) >= MaxHeight {
		panic(errTooDeep())
	}
	s.frames = append(s.frames, frame[T]{node: n})
}

func (s *NodeStack[T]) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *NodeStack[T]) top() *frame[T] {
	return &s.frames[len(s.frames)-1]
}

// advance leaves the top node and moves the parent on to its next child.
func (s *NodeStack[T]) advance() {
	s.pop()
	if len(s.frames) > 0 {
		s.top().index++
	}
}

// Depth returns the number of frames on the stack.
func (s *NodeStack[T]) Depth() int {
	return len(s.frames)
}

// Done returns whether the stack is past-the-end.
func (s *NodeStack[T]) Done() bool {
	return len(s.frames) == 0
}

// Top returns the node at the top of the stack, or nil when the stack is past-the-end.
func (s *NodeStack[T]) Top() *Node[T] {
	if s.Done() {
		return nil
	}
	return s.top().node
}

// Path returns the nodes from the root to the top.
func (s *NodeStack[T]) Path() []*Node[T] {
	path := make([]*Node[T], len(s.frames))
	for i, f := range s.frames {
		path[i] = f.node
	}
	return path
}

// RiseUntilAvailable pops frames until the top is an internal node with a child left to visit, or the stack
// is past-the-end.
func (s *NodeStack[T]) RiseUntilAvailable() {
	for !s.Done() {
		f := s.top()
		if f.node.nodeType == InternalNode && f.index < len(f.node.children) {
			return
		}
		s.advance()
	}
}

// RiseUntilGroupHead pops frames until the top is a group head. The stack is left untouched when there is
// no group head on the path.
func (s *NodeStack[T]) RiseUntilGroupHead() error {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].node.groupHead {
			s.frames = s.frames[:i+1]
			return nil
		}
	}
	return ErrNoGroupHead
}

// UpdateBoundsAllTheWayToTop refreshes the top node, then recomputes every ancestor from its children.
func (s *NodeStack[T]) UpdateBoundsAllTheWayToTop() {
	if s.Done() {
		return
	}
	s.top().node.RecalculateBounds()
	s.updateAncestors(len(s.frames) - 2)
}

func (s *NodeStack[T]) updateAncestors(from int) {
	for i := from; i >= 0; i-- {
		s.frames[i].node.RecalculateBoundsFromSubBounds()
	}
}

// ExpandBoundsAllTheWayToTop grows every ancestor to include the bounds of the top node. It is only valid
// when nodes were added below the top, never removed.
func (s *NodeStack[T]) ExpandBoundsAllTheWayToTop() {
	if s.Done() {
		return
	}
	b := s.top().node.bounds
	for i := len(s.frames) - 2; i >= 0; i-- {
		n := s.frames[i].node
		n.bounds = n.bounds.Union(b)
		n.count = 0
		for _, child := range n.children {
			n.count += child.count
		}
	}
}

// Remove detaches the top node and returns it. A parent left with a single child is collapsed into that
// child, ancestor bounds are repaired, and the stack is left on the next unvisited position, which is
// the parent when it has children left to visit, or past-the-end.
func (s *NodeStack[T]) Remove() (*Node[T], error) {
	if len(s.frames) < 2 {
		return nil, ErrRemoveRoot
	}
	s.pop()
	parentFrame := s.top()
	parent := parentFrame.node
	index := parentFrame.index
	removed := parent.Remove(index)

	collapsed := false
	if len(parent.children) == 1 {
		// The survivor keeps its own bounds.
		parent.collapse()
		collapsed = true
		s.updateAncestors(len(s.frames) - 2)
	} else {
		s.updateAncestors(len(s.frames) - 1)
	}

	switch {
	case collapsed && index == 1:
		// The survivor was already visited.
		s.advance()
		s.RiseUntilAvailable()
	case collapsed:
		// The survivor took the parent's place and has not been visited yet.
		parentFrame.index = 0
	default:
		s.RiseUntilAvailable()
	}
	return removed, nil
}
