package physics

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/broadphase/boundstree"
)

// IsValid checks the world against its invariants: both trees are consistent, every main physical points
// back at the world, every part points back at its physical, and the object count matches the trees. It
// walks everything and is meant for tests and debugging.
func (w *World) IsValid() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isValid()
}

func (w *World) isValid() error {
	var errs error
	for _, id := range w.physicals {
		phys := w.arena.Physical(id)
		if phys == nil {
			errs = multierr.Append(errs, errors.Errorf("physical %d is in the world but was removed", id))
			continue
		}
		if phys.world != w {
			errs = multierr.Append(errs, errors.Errorf("physical %d does not point back at the world", id))
		}
		if phys.parent != NoPhysical {
			errs = multierr.Append(errs, errors.Errorf("physical %d is in the world but is connected to %d", id, phys.parent))
		}
		errs = multierr.Append(errs, w.physicalValid(id))
	}

	errs = multierr.Append(errs, errors.Wrap(w.objectTree.Validate(), "object tree"))
	errs = multierr.Append(errs, errors.Wrap(w.terrainTree.Validate(), "terrain tree"))

	if count := w.objectTree.NumberOfObjects() + w.terrainTree.NumberOfObjects(); count != w.objectCount {
		errs = multierr.Append(errs, errors.Errorf("world counts %d parts, trees hold %d", w.objectCount, count))
	}
	errs = multierr.Append(errs, w.leavesValid(w.objectTree, false))
	errs = multierr.Append(errs, w.leavesValid(w.terrainTree, true))
	return errs
}

func (w *World) physicalValid(id PhysicalID) error {
	var errs error
	phys := w.arena.physicals[id]
	for _, partID := range w.arena.partsOf(id) {
		if got := w.arena.parts[partID].physical; got != id {
			errs = multierr.Append(errs, errors.Errorf("part %d of physical %d points at physical %d", partID, id, got))
		}
	}
	for _, child := range phys.children {
		if got := w.arena.physicals[child].parent; got != id {
			errs = multierr.Append(errs, errors.Errorf("physical %d connected to %d points at %d", child, id, got))
		}
		errs = multierr.Append(errs, w.physicalValid(child))
	}
	return errs
}

func (w *World) leavesValid(tree *boundstree.BoundsTree[PartRef], terrain bool) error {
	var errs error
	for ref := range tree.All() {
		part := w.arena.parts[ref.ID()]
		if part.isTerrain != terrain {
			errs = multierr.Append(errs, errors.Errorf("part %d is indexed in the wrong tree", ref.ID()))
			continue
		}
		if terrain {
			continue
		}
		if part.physical == NoPhysical {
			errs = multierr.Append(errs, errors.Errorf("part %d is indexed without a physical", ref.ID()))
			continue
		}
		if !w.inWorld(part.physical) {
			errs = multierr.Append(errs, errors.Errorf("part %d is indexed but its body is not in the world", ref.ID()))
		}
	}
	return errs
}
