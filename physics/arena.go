// Package physics contains the spatial layer of a rigid-body world. Parts and physicals live in an arena
// owned by the world and are addressed by index, and the broad-phase trees reference parts through
// handles into that arena.
package physics

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/broadphase/spatialmath"
)

// PartID addresses a part in the arena of a world.
type PartID int

// PhysicalID addresses a physical in the arena of a world.
type PhysicalID int

// NoPhysical marks the absence of a physical.
const NoPhysical PhysicalID = -1

// Part is a box-shaped piece of a rigid body, or a piece of static terrain.
type Part struct {
	id        PartID
	name      string
	cframe    spatialmath.CFrame
	halfSize  r3.Vector
	physical  PhysicalID
	isTerrain bool
}

// ID returns the handle of the part.
func (p *Part) ID() PartID {
	return p.id
}

// Name returns the name of the part.
func (p *Part) Name() string {
	return p.name
}

// CFrame returns the global pose of the part.
func (p *Part) CFrame() spatialmath.CFrame {
	return p.cframe
}

// HalfSize returns half the extent of the box along each of its local axes.
func (p *Part) HalfSize() r3.Vector {
	return p.halfSize
}

// Physical returns the physical the part belongs to, or NoPhysical.
func (p *Part) Physical() PhysicalID {
	return p.physical
}

// IsTerrain returns whether the part is static terrain.
func (p *Part) IsTerrain() bool {
	return p.isTerrain
}

// StrictBounds returns the tight axis-aligned bounds of the part at its current pose.
func (p *Part) StrictBounds() spatialmath.Bounds {
	return spatialmath.BoxBounds(p.cframe, p.halfSize)
}

func (p *Part) String() string {
	return fmt.Sprintf("Part(%d %q)", p.id, p.name)
}

// Physical is a rigid body made of a main part and parts attached to it. Connected physicals hang below
// their parent; a physical without a parent is a main physical and owns the group of its whole hierarchy
// in the world.
type Physical struct {
	id       PhysicalID
	mainPart PartID
	parts    []PartID
	children []PhysicalID
	parent   PhysicalID
	world    *World
	removed  bool
}

// ID returns the handle of the physical.
func (p *Physical) ID() PhysicalID {
	return p.id
}

// MainPart returns the main part of the rigid body.
func (p *Physical) MainPart() PartID {
	return p.mainPart
}

// AttachedParts returns the parts attached to the main part.
func (p *Physical) AttachedParts() []PartID {
	return p.parts
}

// Children returns the physicals connected below this one.
func (p *Physical) Children() []PhysicalID {
	return p.children
}

// Parent returns the physical this one is connected to, or NoPhysical for a main physical.
func (p *Physical) Parent() PhysicalID {
	return p.parent
}

// PartRef is a handle to a part used as the object of the broad-phase trees.
type PartRef struct {
	arena *Arena
	id    PartID
}

// ID returns the part the handle refers to.
func (r PartRef) ID() PartID {
	return r.id
}

// StrictBounds returns the current bounds of the part.
func (r PartRef) StrictBounds() spatialmath.Bounds {
	return r.arena.parts[r.id].StrictBounds()
}

// Arena stores every part and physical of a world. Handles are never reused.
type Arena struct {
	parts     []*Part
	physicals []*Physical
}

func newArena() *Arena {
	return &Arena{}
}

func (a *Arena) ref(id PartID) PartRef {
	return PartRef{arena: a, id: id}
}

func (a *Arena) newPart(name string, cframe spatialmath.CFrame, halfSize r3.Vector) PartID {
	id := PartID(len(a.parts))
	a.parts = append(a.parts, &Part{id: id, name: name, cframe: cframe, halfSize: halfSize, physical: NoPhysical})
	return id
}

// Part returns the part with the given handle, or nil.
func (a *Arena) Part(id PartID) *Part {
	if id < 0 || int(id) >= len(a.parts) {
		return nil
	}
	return a.parts[id]
}

// Physical returns the physical with the given handle, or nil. Physicals that lost all of their parts
// are gone.
func (a *Arena) Physical(id PhysicalID) *Physical {
	if id < 0 || int(id) >= len(a.physicals) || a.physicals[id].removed {
		return nil
	}
	return a.physicals[id]
}

func (a *Arena) newPhysical(mainPart PartID) PhysicalID {
	id := PhysicalID(len(a.physicals))
	a.physicals = append(a.physicals, &Physical{id: id, mainPart: mainPart, parent: NoPhysical})
	a.parts[mainPart].physical = id
	return id
}

func (a *Arena) ensureHasParent(part PartID) PhysicalID {
	if phys := a.parts[part].physical; phys != NoPhysical {
		return phys
	}
	return a.newPhysical(part)
}

func (a *Arena) mainPhysicalOf(phys PhysicalID) PhysicalID {
	for a.physicals[phys].parent != NoPhysical {
		phys = a.physicals[phys].parent
	}
	return phys
}

func (a *Arena) mainPhysicalOfPart(part PartID) PhysicalID {
	phys := a.parts[part].physical
	if phys == NoPhysical {
		return NoPhysical
	}
	return a.mainPhysicalOf(phys)
}

// partsOf returns the main part followed by the attached parts of phys.
func (a *Arena) partsOf(phys PhysicalID) []PartID {
	p := a.physicals[phys]
	return append([]PartID{p.mainPart}, p.parts...)
}

// hierarchyParts returns every part of phys and of the physicals connected below it.
func (a *Arena) hierarchyParts(phys PhysicalID) []PartID {
	parts := a.partsOf(phys)
	for _, child := range a.physicals[phys].children {
		parts = append(parts, a.hierarchyParts(child)...)
	}
	return parts
}

func (a *Arena) attachPart(phys PhysicalID, part PartID) {
	a.physicals[phys].parts = append(a.physicals[phys].parts, part)
	a.parts[part].physical = phys
}

func (a *Arena) detachPart(part PartID) {
	phys := a.physicals[a.parts[part].physical]
	phys.parts = lo.Without(phys.parts, part)
	a.parts[part].physical = NoPhysical
}

func (a *Arena) connect(parent, child PhysicalID) {
	a.physicals[parent].children = append(a.physicals[parent].children, child)
	a.physicals[child].parent = parent
}

func (a *Arena) disconnect(child PhysicalID) {
	parent := a.physicals[a.physicals[child].parent]
	parent.children = lo.Without(parent.children, child)
	a.physicals[child].parent = NoPhysical
}

// moveHierarchy moves part to cframe and carries every other part of its hierarchy along rigidly.
func (a *Arena) moveHierarchy(part PartID, cframe spatialmath.CFrame) {
	from := a.parts[part].cframe
	main := a.mainPhysicalOfPart(part)
	if main == NoPhysical {
		a.parts[part].cframe = cframe
		return
	}
	for _, id := range a.hierarchyParts(main) {
		a.parts[id].cframe = spatialmath.Relocate(a.parts[id].cframe, from, cframe)
	}
	// No rounding drift on the part that was placed explicitly.
	a.parts[part].cframe = cframe
}
