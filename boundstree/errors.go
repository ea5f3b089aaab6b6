package boundstree

import "github.com/pkg/errors"

var (
	// ErrObjectNotFound is returned when an object is not indexed by the tree.
	ErrObjectNotFound = errors.New("object not found in bounds tree")
	// ErrEmptyTree is returned when removing or updating through a tree that holds no objects.
	ErrEmptyTree = errors.New("bounds tree is empty")
	// ErrNoGroupHead is returned when no group head lies on the path to a node.
	ErrNoGroupHead = errors.New("no group head above node")
	// ErrRemoveRoot is returned when a node stack is asked to detach the root it started from.
	ErrRemoveRoot = errors.New("cannot detach the root node from a node stack")
)

func errTooDeep() error {
	return errors.Errorf("bounds tree exceeds the maximum height of %d", MaxHeight)
}
