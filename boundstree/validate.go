package boundstree

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/broadphase/spatialmath"
)

// Validate walks the whole tree and reports every node whose cached bounds or object count disagrees with
// its children, every path that does not cross exactly one group head, and every internal node with an
// invalid number of children.
func (t *BoundsTree[T]) Validate() error {
	if t.IsEmpty() {
		if t.root.count != 0 {
			return errors.Errorf("empty tree has an object count of %d", t.root.count)
		}
		return nil
	}
	return t.root.validate(0, false)
}

func (n *Node[T]) validate(depth int, headAbove bool) error {
	if depth >= MaxHeight {
		return errTooDeep()
	}

	var errs error
	if n.groupHead && headAbove {
		errs = multierr.Append(errs, errors.Errorf("group head at depth %d is inside another group", depth))
	}
	inGroup := headAbove || n.groupHead

	if n.nodeType == LeafNode {
		if !inGroup {
			errs = multierr.Append(errs, errors.Errorf("leaf at depth %d %v is not in a group", depth, n.bounds))
		}
		if n.count != 1 {
			errs = multierr.Append(errs, errors.Errorf("leaf at depth %d has an object count of %d", depth, n.count))
		}
		return errs
	}

	if len(n.children) == 0 || len(n.children) > MaxBranches {
		errs = multierr.Append(errs, errors.Errorf("internal node at depth %d has %d children", depth, len(n.children)))
	}
	bounds := spatialmath.EmptyBounds()
	count := 0
	for _, child := range n.children {
		errs = multierr.Append(errs, child.validate(depth+1, inGroup))
		bounds = bounds.Union(child.bounds)
		count += child.count
	}
	if bounds != n.bounds {
		errs = multierr.Append(errs, errors.Errorf("internal node at depth %d has bounds %v, children span %v", depth, n.bounds, bounds))
	}
	if count != n.count {
		errs = multierr.Append(errs, errors.Errorf("internal node at depth %d counts %d objects, children hold %d", depth, n.count, count))
	}
	return errs
}
