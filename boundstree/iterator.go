package boundstree

import (
	"iter"
)

// TreeIterator visits the leaves of a tree depth-first. When a filter is set, subtrees whose bounds it
// rejects are skipped, so only leaves whose own bounds and ancestors pass are visited.
type TreeIterator[T Boundable] struct {
	stack  *NodeStack[T]
	filter Filter
	// tree is set when iterating a whole tree, which lets Remove take out a leaf root.
	tree *BoundsTree[T]
}

func newTreeIterator[T Boundable](root *Node[T], filter Filter) *TreeIterator[T] {
	it := &TreeIterator[T]{stack: &NodeStack[T]{}, filter: filter}
	if root.nodeType == InternalNode && len(root.children) == 0 {
		return it
	}
	if filter != nil && !filter(root.bounds) {
		return it
	}
	it.stack.push(root)
	it.delve()
	return it
}

// delve descends from the current position to the next accepted leaf, rising when a subtree is exhausted.
func (it *TreeIterator[T]) delve() {
	s := it.stack
	for !s.Done() {
		f := s.top()
		if f.node.nodeType == LeafNode {
			return
		}
		if f.index >= len(f.node.children) {
			s.advance()
			continue
		}
		child := f.node.children[f.index]
		if it.filter != nil && !it.filter(child.bounds) {
			f.index++
			continue
		}
		s.push(child)
	}
}

// Valid returns whether the iterator is positioned on a leaf.
func (it *TreeIterator[T]) Valid() bool {
	return !it.stack.Done()
}

// Node returns the current leaf.
func (it *TreeIterator[T]) Node() *Node[T] {
	return it.stack.Top()
}

// Object returns the object of the current leaf.
func (it *TreeIterator[T]) Object() T {
	return it.stack.Top().object
}

// Stack returns the path to the current leaf.
func (it *TreeIterator[T]) Stack() *NodeStack[T] {
	return it.stack
}

// Next moves to the next accepted leaf.
func (it *TreeIterator[T]) Next() {
	if it.stack.Done() {
		return
	}
	it.stack.advance()
	it.delve()
}

// Remove detaches the current leaf and moves to the next accepted leaf. The detached node is returned.
// When the leaf is the root of a tree the tree is left empty. A leaf that is the root of a subtree
// iterator cannot be removed and ErrRemoveRoot is returned.
func (it *TreeIterator[T]) Remove() (*Node[T], error) {
	if it.tree != nil && it.stack.Depth() == 1 {
		removed, err := it.tree.detach(it.stack)
		if err != nil {
			return nil, err
		}
		it.stack.frames = it.stack.frames[:0]
		return removed, nil
	}
	removed, err := it.stack.Remove()
	if err != nil {
		return nil, err
	}
	if !it.stack.Done() && it.filter != nil && !it.filter(it.stack.Top().bounds) {
		it.stack.advance()
	}
	it.delve()
	return removed, nil
}

func seq[T Boundable](it *TreeIterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for ; it.Valid(); it.Next() {
			if !yield(it.Object()) {
				return
			}
		}
	}
}

// Iterator returns an iterator over the leaves of the subtree rooted at n.
func (n *Node[T]) Iterator() *TreeIterator[T] {
	return newTreeIterator(n, nil)
}
