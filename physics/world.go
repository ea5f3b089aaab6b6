package physics

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"

	"go.viam.com/broadphase/boundstree"
	"go.viam.com/broadphase/config"
	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/spatialmath"
)

// World indexes the parts of a simulation in two bounds trees: one for parts of rigid bodies and one for
// static terrain. Every main physical in the world owns one group of the object tree holding the parts of
// its whole hierarchy.
//
// Mutations take the write lock. Readers go through View.
type World struct {
	mu     sync.RWMutex
	logger logging.Logger
	cfg    config.WorldConfig

	arena       *Arena
	objectTree  *boundstree.BoundsTree[PartRef]
	terrainTree *boundstree.BoundsTree[PartRef]
	layers      LayerMatrix

	physicals   []PhysicalID
	objectCount int
	ticks       atomic.Int64
}

// NewWorld creates an empty world.
func NewWorld(cfg config.WorldConfig, logger logging.Logger) (*World, error) {
	if err := cfg.Validate("world"); err != nil {
		return nil, err
	}
	return &World{
		logger:      logger,
		cfg:         cfg,
		arena:       newArena(),
		objectTree:  boundstree.NewBoundsTree[PartRef](),
		terrainTree: boundstree.NewBoundsTree[PartRef](),
		layers:      DefaultLayerMatrix(),
	}, nil
}

// Config returns the config the world was created with, defaults applied.
func (w *World) Config() config.WorldConfig {
	return w.cfg
}

// Ticks returns the number of ticks run so far.
func (w *World) Ticks() int64 {
	return w.ticks.Load()
}

func (w *World) ref(id PartID) PartRef {
	return w.arena.ref(id)
}

func (w *World) boundsOf(id PartID) spatialmath.Bounds {
	return w.arena.parts[id].StrictBounds()
}

func (w *World) treeFor(id PartID) *boundstree.BoundsTree[PartRef] {
	if w.arena.parts[id].isTerrain {
		return w.terrainTree
	}
	return w.objectTree
}

func (w *World) part(id PartID) (*Part, error) {
	p := w.arena.Part(id)
	if p == nil {
		return nil, newUnknownPartError(id)
	}
	return p, nil
}

func (w *World) physical(id PhysicalID) (*Physical, error) {
	p := w.arena.Physical(id)
	if p == nil {
		return nil, newUnknownPhysicalError(id)
	}
	return p, nil
}

func (w *World) inWorld(phys PhysicalID) bool {
	return w.arena.physicals[w.arena.mainPhysicalOf(phys)].world == w
}

func (w *World) assertValid() {
	if !w.cfg.DebugValidate {
		return
	}
	if err := w.isValid(); err != nil {
		w.logger.Errorw("world is not valid", "error", err)
		panic(err)
	}
}

// NewPart creates a part in the arena. It is not in the world until added.
func (w *World) NewPart(name string, cframe spatialmath.CFrame, halfSize r3.Vector) PartID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.arena.newPart(name, cframe, halfSize)
}

func leafFor(w *World, id PartID, groupHead bool) *boundstree.Node[PartRef] {
	return boundstree.NewLeafNode(w.ref(id), w.boundsOf(id), groupHead)
}

func (w *World) addToNode(node *boundstree.Node[PartRef], phys PhysicalID) {
	for _, id := range w.arena.partsOf(phys) {
		node.AddInside(leafFor(w, id, false))
	}
	for _, child := range w.arena.physicals[phys].children {
		w.addToNode(node, child)
	}
}

// createNodeFor builds the group of a physical hierarchy. The main part is the group head.
func (w *World) createNodeFor(phys PhysicalID) *boundstree.Node[PartRef] {
	p := w.arena.physicals[phys]
	node := leafFor(w, p.mainPart, true)
	for _, id := range p.parts {
		node.AddInside(leafFor(w, id, false))
	}
	for _, child := range p.children {
		w.addToNode(node, child)
	}
	return node
}

// AddPart adds the whole hierarchy of the part to the world as one group. A part without a physical gets
// one of its own. Adding a part that is already in the world logs a warning and does nothing.
func (w *World) AddPart(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.addPart(id); err != nil {
		return err
	}
	w.assertValid()
	return nil
}

func (w *World) addPart(id PartID) error {
	part, err := w.part(id)
	if err != nil {
		return err
	}
	if part.isTerrain {
		w.logger.Warnw("attempting to re-add terrain part to world", "part", part.name)
		return nil
	}
	main := w.arena.mainPhysicalOf(w.arena.ensureHasParent(id))
	if w.arena.physicals[main].world == w {
		w.logger.Warnw("attempting to re-add part to world", "part", part.name)
		return nil
	}

	w.objectTree.AddNode(w.createNodeFor(main))
	w.physicals = append(w.physicals, main)
	numParts := len(w.arena.hierarchyParts(main))
	w.objectCount += numParts
	w.arena.physicals[main].world = w
	w.logger.Debugw("added body", "part", part.name, "physical", main, "parts", numParts)
	return nil
}

// AddTerrainPart adds a static part to the terrain tree. Terrain parts do not belong to physicals.
func (w *World) AddTerrainPart(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	part, err := w.part(id)
	if err != nil {
		return err
	}
	if part.isTerrain {
		w.logger.Warnw("attempting to re-add terrain part to world", "part", part.name)
		return nil
	}
	if part.physical != NoPhysical {
		return errors.Errorf("part %q belongs to physical %d and cannot become terrain", part.name, part.physical)
	}

	w.objectCount++
	w.terrainTree.Add(w.ref(id), part.StrictBounds())
	part.isTerrain = true
	w.assertValid()
	return nil
}

// RemovePart removes a part from the world and from its rigid body. When the main part of a physical is
// removed, the first attached part takes its place. When a physical loses its last part, the physicals
// connected below it are reconnected to its parent, or split off into bodies of their own if it had none.
func (w *World) RemovePart(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.removePart(id); err != nil {
		return errors.Wrapf(err, "cannot remove part %d", id)
	}
	w.assertValid()
	return nil
}

func (w *World) removePart(id PartID) error {
	part, err := w.part(id)
	if err != nil {
		return err
	}
	if part.isTerrain {
		if err := w.terrainTree.Remove(w.ref(id), part.StrictBounds()); err != nil {
			return err
		}
		part.isTerrain = false
		w.objectCount--
		return nil
	}
	if part.physical == NoPhysical || !w.inWorld(part.physical) {
		return errors.WithStack(ErrNotInWorld)
	}

	physID := part.physical
	phys := w.arena.physicals[physID]
	if phys.mainPart != id {
		if err := w.notifyPartRemovedFromGroup(id); err != nil {
			return err
		}
		w.arena.detachPart(id)
		return nil
	}
	if len(phys.parts) > 0 {
		if err := w.notifyPartRemovedFromGroup(id); err != nil {
			return err
		}
		phys.mainPart = phys.parts[0]
		phys.parts = phys.parts[1:]
		part.physical = NoPhysical
		return nil
	}

	// The physical loses its last part.
	for _, child := range append([]PhysicalID(nil), phys.children...) {
		w.arena.disconnect(child)
		if phys.parent != NoPhysical {
			w.arena.connect(phys.parent, child)
			continue
		}
		if err := w.splitPhysical(physID, child); err != nil {
			return err
		}
	}
	if err := w.notifyPartRemovedFromGroup(id); err != nil {
		return err
	}
	if phys.parent != NoPhysical {
		w.arena.disconnect(physID)
	} else {
		w.physicals = lo.Without(w.physicals, physID)
		phys.world = nil
	}
	phys.removed = true
	part.physical = NoPhysical
	return nil
}

// NotifyPartRemovedFromGroup removes the leaf of a part that left its rigid body.
func (w *World) NotifyPartRemovedFromGroup(id PartID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.part(id); err != nil {
		return err
	}
	if err := w.notifyPartRemovedFromGroup(id); err != nil {
		return err
	}
	w.assertValid()
	return nil
}

func (w *World) notifyPartRemovedFromGroup(id PartID) error {
	if err := w.objectTree.Remove(w.ref(id), w.boundsOf(id)); err != nil {
		return err
	}
	w.objectCount--
	return nil
}

// SetPartCFrame moves a part to cframe and carries its whole hierarchy along, then refreshes the group.
func (w *World) SetPartCFrame(id PartID, cframe spatialmath.CFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	part, err := w.part(id)
	if err != nil {
		return err
	}
	oldBounds := part.StrictBounds()

	if part.isTerrain {
		part.cframe = cframe
		err = w.terrainTree.UpdateObjectBounds(w.ref(id), oldBounds)
	} else {
		w.arena.moveHierarchy(id, cframe)
		if part.physical != NoPhysical && w.inWorld(part.physical) {
			err = w.objectTree.UpdateObjectGroupBounds(w.ref(id), oldBounds)
		}
	}
	if err != nil {
		return errors.Wrapf(err, "cannot move part %q", part.name)
	}
	w.assertValid()
	return nil
}

// MovePart moves a single part without moving the rest of its body, as an articulated joint does, and
// refreshes its leaf.
func (w *World) MovePart(id PartID, cframe spatialmath.CFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	part, err := w.part(id)
	if err != nil {
		return err
	}
	oldBounds := part.StrictBounds()
	part.cframe = cframe
	if !part.isTerrain && (part.physical == NoPhysical || !w.inWorld(part.physical)) {
		return nil
	}
	if err := w.treeFor(id).UpdateObjectBounds(w.ref(id), oldBounds); err != nil {
		return errors.Wrapf(err, "cannot move part %q", part.name)
	}
	w.assertValid()
	return nil
}

// UpdatePartBounds refreshes the leaf of a part whose bounds were oldBounds when last indexed.
func (w *World) UpdatePartBounds(id PartID, oldBounds spatialmath.Bounds) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.part(id); err != nil {
		return err
	}
	if err := w.treeFor(id).UpdateObjectBounds(w.ref(id), oldBounds); err != nil {
		return err
	}
	w.assertValid()
	return nil
}

// UpdatePartGroupBounds refreshes every leaf of the group of a main part whose bounds were
// oldMainPartBounds when last indexed.
func (w *World) UpdatePartGroupBounds(mainPart PartID, oldMainPartBounds spatialmath.Bounds) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.part(mainPart); err != nil {
		return err
	}
	if err := w.objectTree.UpdateObjectGroupBounds(w.ref(mainPart), oldMainPartBounds); err != nil {
		return err
	}
	w.assertValid()
	return nil
}

// SetLayersCollide declares whether layers a and b are tested against each other.
func (w *World) SetLayersCollide(a, b Layer, collide bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layers.Set(a, b, collide)
}

// OptimizeTerrain runs the configured number of structural improvement passes over the terrain tree.
func (w *World) OptimizeTerrain() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.optimizeTerrain()
	w.assertValid()
}

func (w *World) optimizeTerrain() {
	before := w.terrainTree.LongestBranch()
	for i := 0; i < w.cfg.TerrainOptimizePasses; i++ {
		w.terrainTree.ImproveStructure()
	}
	w.logger.Debugw("optimized terrain",
		"passes", w.cfg.TerrainOptimizePasses,
		"parts", w.terrainTree.NumberOfObjects(),
		"longest_branch_before", before,
		"longest_branch_after", w.terrainTree.LongestBranch())
}

// Tick advances the world by one step and returns the new tick count. Terrain is optimized every
// TerrainOptimizeInterval ticks.
func (w *World) Tick() int64 {
	tick := w.ticks.Inc()
	if interval := int64(w.cfg.TerrainOptimizeInterval); interval > 0 && tick%interval == 0 {
		w.OptimizeTerrain()
	}
	return tick
}
