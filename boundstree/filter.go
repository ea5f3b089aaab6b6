package boundstree

import (
	"go.viam.com/broadphase/spatialmath"
)

// Filter is a predicate on bounds used to prune traversals. It must be monotonic: when it rejects a box it
// must also reject every box contained in it.
type Filter func(spatialmath.Bounds) bool

// All accepts every box.
func All(spatialmath.Bounds) bool {
	return true
}

// RayIntersects accepts the boxes hit by ray.
func RayIntersects(ray spatialmath.Ray) Filter {
	return func(b spatialmath.Bounds) bool {
		hit, _ := spatialmath.RayIntersectsBounds(b, ray)
		return hit
	}
}

// ContainsPoint accepts the boxes containing p.
func ContainsPoint(p spatialmath.Position) Filter {
	return func(b spatialmath.Bounds) bool {
		return b.ContainsPoint(p)
	}
}

// IntersectsBounds accepts the boxes overlapping other, touching faces included.
func IntersectsBounds(other spatialmath.Bounds) Filter {
	return func(b spatialmath.Bounds) bool {
		return b.Intersects(other)
	}
}

// ContainsBounds accepts the boxes that fully contain other. This is the filter used to look up an object
// by its last known bounds.
func ContainsBounds(other spatialmath.Bounds) Filter {
	return func(b spatialmath.Bounds) bool {
		return b.Contains(other)
	}
}
