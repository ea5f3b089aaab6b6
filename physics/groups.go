package physics

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/broadphase/boundstree"
)

// SplitPhysical gives newlySplit, a main physical that was just severed from the hierarchy of main, a group
// of its own. The leaves of its parts are moved out of the group of main with their layout kept where
// possible.
func (w *World) SplitPhysical(main, newlySplit PhysicalID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.splitPhysical(main, newlySplit); err != nil {
		return errors.Wrapf(err, "cannot split physical %d from %d", newlySplit, main)
	}
	w.assertValid()
	return nil
}

func (w *World) splitPhysical(main, newlySplit PhysicalID) error {
	mainPhys, err := w.physical(main)
	if err != nil {
		return err
	}
	splitPhys, err := w.physical(newlySplit)
	if err != nil {
		return err
	}
	if mainPhys.world != w {
		return errors.WithStack(ErrNotInWorld)
	}
	if splitPhys.parent != NoPhysical || splitPhys.world != nil {
		return errors.Errorf("physical %d is still connected or already in a world", newlySplit)
	}

	mainPart := splitPhys.mainPart
	stack, err := w.objectTree.FindGroupFor(w.ref(mainPart), w.boundsOf(mainPart))
	if err != nil {
		return err
	}
	group := stack.Top()

	newNode, err := w.objectTree.Grab(w.ref(mainPart), w.boundsOf(mainPart))
	if err != nil {
		return err
	}
	if !newNode.IsGroupHead() {
		newNode.SetGroupHead(true)
		// group is still valid: grabbing a member never detaches its group head.
		for it := group.Iterator(); it.Valid(); {
			if w.arena.mainPhysicalOfPart(it.Object().ID()) != newlySplit {
				it.Next()
				continue
			}
			moved, err := it.Remove()
			if err != nil {
				return err
			}
			newNode.AddInside(moved)
		}
		stack.UpdateBoundsAllTheWayToTop()
	}
	w.objectTree.AddNode(newNode)

	w.physicals = append(w.physicals, newlySplit)
	splitPhys.world = w
	w.logger.Debugw("split physical", "main", main, "split", newlySplit, "parts", newNode.NumberOfObjects())
	return nil
}

// MergePhysicals moves the group of second into the group of first. second stops being a group head. When
// second is not in the world yet its group is built from its hierarchy.
func (w *World) MergePhysicals(first, second PhysicalID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mergePhysicals(first, second); err != nil {
		return errors.Wrapf(err, "cannot merge physical %d into %d", second, first)
	}
	w.assertValid()
	return nil
}

func (w *World) mergePhysicals(first, second PhysicalID) error {
	firstPhys, err := w.physical(first)
	if err != nil {
		return err
	}
	secondPhys, err := w.physical(second)
	if err != nil {
		return err
	}
	if firstPhys.world != w {
		return errors.WithStack(ErrNotInWorld)
	}

	if secondPhys.world != nil {
		if secondPhys.world != w {
			return errors.Errorf("physical %d belongs to another world", second)
		}
		if !lo.Contains(w.physicals, second) {
			return errors.Errorf("physical %d is not a main physical of the world", second)
		}
		groupNode, err := w.objectTree.GrabGroupFor(w.ref(secondPhys.mainPart), w.boundsOf(secondPhys.mainPart))
		if err != nil {
			return err
		}
		groupNode.SetGroupHead(false)
		if err := w.addNodeToGroupOf(first, groupNode); err != nil {
			return err
		}
		w.physicals = lo.Without(w.physicals, second)
		secondPhys.world = nil
	} else {
		groupNode := w.createNodeFor(second)
		groupNode.SetGroupHead(false)
		if err := w.addNodeToGroupOf(first, groupNode); err != nil {
			return err
		}
		w.objectCount += groupNode.NumberOfObjects()
	}
	w.logger.Debugw("merged physicals", "first", first, "second", second)
	return nil
}

func (w *World) addNodeToGroupOf(phys PhysicalID, node *boundstree.Node[PartRef]) error {
	main := w.arena.physicals[phys].mainPart
	return w.objectTree.AddNodeToExistingGroup(node, w.ref(main), w.boundsOf(main))
}

// AttachPart rigidly attaches a free part to the body of to. When that body is in the world the part joins
// its group.
func (w *World) AttachPart(to, id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.attachPart(to, id); err != nil {
		return errors.Wrapf(err, "cannot attach part %d to part %d", id, to)
	}
	w.assertValid()
	return nil
}

func (w *World) attachPart(to, id PartID) error {
	toPart, err := w.part(to)
	if err != nil {
		return err
	}
	if toPart.isTerrain {
		return errors.Errorf("part %q is terrain", toPart.name)
	}
	part, err := w.part(id)
	if err != nil {
		return err
	}
	if part.isTerrain || part.physical != NoPhysical {
		return errors.Errorf("part %q is not free", part.name)
	}

	phys := w.arena.ensureHasParent(to)
	w.arena.attachPart(phys, id)
	if !w.inWorld(phys) {
		return nil
	}
	main := w.arena.physicals[w.arena.mainPhysicalOf(phys)].mainPart
	if err := w.objectTree.AddToExistingGroup(w.ref(id), part.StrictBounds(), w.ref(main), w.boundsOf(main)); err != nil {
		return err
	}
	w.objectCount++
	return nil
}

// DetachPart takes an attached part off its rigid body. When the body is in the world the part stays in
// the world as a body of its own.
func (w *World) DetachPart(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.detachPart(id); err != nil {
		return errors.Wrapf(err, "cannot detach part %d", id)
	}
	w.assertValid()
	return nil
}

func (w *World) detachPart(id PartID) error {
	part, err := w.part(id)
	if err != nil {
		return err
	}
	if part.physical == NoPhysical || w.arena.physicals[part.physical].mainPart == id {
		return errors.Errorf("part %q is not an attached part", part.name)
	}
	wasInWorld := w.inWorld(part.physical)
	if wasInWorld {
		if err := w.notifyPartRemovedFromGroup(id); err != nil {
			return err
		}
	}
	w.arena.detachPart(id)
	if !wasInWorld {
		return nil
	}
	return w.addPart(id)
}

// AttachPhysical connects the body of child below the physical of parent, so the hierarchy of child joins
// the group of parent.
func (w *World) AttachPhysical(parent, child PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.attachPhysical(parent, child); err != nil {
		return errors.Wrapf(err, "cannot connect the body of part %d to part %d", child, parent)
	}
	w.assertValid()
	return nil
}

func (w *World) attachPhysical(parent, child PartID) error {
	parentPart, err := w.part(parent)
	if err != nil {
		return err
	}
	childPart, err := w.part(child)
	if err != nil {
		return err
	}
	for _, p := range []*Part{parentPart, childPart} {
		if p.isTerrain {
			return errors.Errorf("part %q is terrain", p.name)
		}
	}
	parentPhys := w.arena.ensureHasParent(parent)
	childMain := w.arena.mainPhysicalOf(w.arena.ensureHasParent(child))
	if w.arena.mainPhysicalOf(parentPhys) == childMain {
		return errors.New("parts already belong to the same body")
	}

	parentInWorld := w.inWorld(parentPhys)
	childInWorld := w.arena.physicals[childMain].world == w
	if childInWorld && !parentInWorld {
		return errors.Wrap(ErrNotInWorld, "parent body")
	}

	if parentInWorld {
		if err := w.mergePhysicals(w.arena.mainPhysicalOf(parentPhys), childMain); err != nil {
			return err
		}
	}
	w.arena.connect(parentPhys, childMain)
	return nil
}

// DetachPhysical disconnects the physical of a part from its parent physical. The detached hierarchy
// becomes a body of its own and, when it was in the world, gets its own group.
func (w *World) DetachPhysical(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.detachPhysical(id); err != nil {
		return errors.Wrapf(err, "cannot disconnect the body of part %d", id)
	}
	w.assertValid()
	return nil
}

func (w *World) detachPhysical(id PartID) error {
	part, err := w.part(id)
	if err != nil {
		return err
	}
	phys := part.physical
	if phys == NoPhysical || w.arena.physicals[phys].parent == NoPhysical {
		return errors.Errorf("part %q is not on a connected physical", part.name)
	}
	main := w.arena.mainPhysicalOf(phys)
	w.arena.disconnect(phys)
	if w.arena.physicals[main].world != w {
		return nil
	}
	return w.splitPhysical(main, phys)
}
