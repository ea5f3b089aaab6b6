package physics

import (
	"cmp"
	"iter"
	"slices"

	"github.com/pkg/errors"

	"go.viam.com/broadphase/boundstree"
	"go.viam.com/broadphase/spatialmath"
)

// View is read-only access to a world. It is only valid inside the function passed to World.View.
type View struct {
	w *World
}

// View runs fn while holding the world's read lock. Sequences and nodes obtained through the view must
// not be used after fn returns.
func (w *World) View(fn func(v *View) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return fn(&View{w: w})
}

// Part returns a copy of a part.
func (v *View) Part(id PartID) (Part, error) {
	p, err := v.w.part(id)
	if err != nil {
		return Part{}, err
	}
	return *p, nil
}

// Physical returns a copy of a physical.
func (v *View) Physical(id PhysicalID) (Physical, error) {
	p, err := v.w.physical(id)
	if err != nil {
		return Physical{}, err
	}
	return *p, nil
}

// MainPhysicalOf returns the main physical of the hierarchy a part belongs to, or NoPhysical.
func (v *View) MainPhysicalOf(id PartID) (PhysicalID, error) {
	if _, err := v.w.part(id); err != nil {
		return NoPhysical, err
	}
	return v.w.arena.mainPhysicalOfPart(id), nil
}

// Physicals returns the main physicals in the world.
func (v *View) Physicals() []PhysicalID {
	return slices.Clone(v.w.physicals)
}

// NumberOfObjects returns the number of parts in the world, terrain included.
func (v *View) NumberOfObjects() int {
	return v.w.objectCount
}

// Tree returns the tree backing a layer.
func (v *View) Tree(l Layer) *boundstree.BoundsTree[PartRef] {
	if l == TerrainLayer {
		return v.w.terrainTree
	}
	return v.w.objectTree
}

// LayersCollide returns whether layers a and b are tested against each other.
func (v *View) LayersCollide(a, b Layer) bool {
	return v.w.layers.Collide(a, b)
}

// LayerMatrix returns the collision layer matrix.
func (v *View) LayerMatrix() LayerMatrix {
	return v.w.layers
}

// LayerOf returns the layer a part is indexed in.
func (v *View) LayerOf(id PartID) Layer {
	if v.w.arena.parts[id].isTerrain {
		return TerrainLayer
	}
	return FreeLayer
}

// Query returns the parts of the selected layers whose bounds pass filter.
func (v *View) Query(filter boundstree.Filter, mask PartMask) iter.Seq[PartID] {
	return func(yield func(PartID) bool) {
		for l := Layer(0); l < NumLayers; l++ {
			if !mask.Includes(l) {
				continue
			}
			for ref := range v.Tree(l).Filtered(filter) {
				if !yield(ref.ID()) {
					return
				}
			}
		}
	}
}

// IterParts returns every part of the selected layers.
func (v *View) IterParts(mask PartMask) iter.Seq[PartID] {
	return v.Query(boundstree.All, mask)
}

// PartsContaining returns the parts whose bounds contain p.
func (v *View) PartsContaining(p spatialmath.Position, mask PartMask) []PartID {
	return slices.Collect(v.Query(boundstree.ContainsPoint(p), mask))
}

// PartsIntersecting returns the parts whose bounds overlap b.
func (v *View) PartsIntersecting(b spatialmath.Bounds, mask PartMask) []PartID {
	return slices.Collect(v.Query(boundstree.IntersectsBounds(b), mask))
}

// RayHit is a part whose bounds are hit by a ray, with the distance along the ray to its bounds.
type RayHit struct {
	Part     PartID
	Distance float64
}

// PartsIntersectingRay returns the parts whose bounds are hit by ray, nearest first.
func (v *View) PartsIntersectingRay(ray spatialmath.Ray, mask PartMask) []RayHit {
	var hits []RayHit
	for id := range v.Query(boundstree.RayIntersects(ray), mask) {
		if hit, dist := spatialmath.RayIntersectsBounds(v.w.boundsOf(id), ray); hit {
			hits = append(hits, RayHit{Part: id, Distance: dist})
		}
	}
	slices.SortStableFunc(hits, func(a, b RayHit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits
}

// GroupOf returns the parts sharing a group with a part in the object tree.
func (v *View) GroupOf(id PartID) ([]PartID, error) {
	if _, err := v.w.part(id); err != nil {
		return nil, err
	}
	stack, err := v.w.objectTree.FindGroupFor(v.w.ref(id), v.w.boundsOf(id))
	if err != nil {
		return nil, errors.Wrapf(err, "part %d", id)
	}
	var members []PartID
	for it := stack.Top().Iterator(); it.Valid(); it.Next() {
		members = append(members, it.Object().ID())
	}
	return members, nil
}

// Walk calls fn for every node of the tree of a layer, see boundstree.BoundsTree.Walk.
func (v *View) Walk(l Layer, fn func(n *boundstree.Node[PartRef], depth int) bool) {
	v.Tree(l).Walk(fn)
}
